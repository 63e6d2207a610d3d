package domain

import (
	"reflect"
)

// Section names used in DraftDiff.
const (
	SectionProfile  = "profile"
	SectionChannels = "channels"
	SectionContent  = "content"
	SectionImage    = "image"
	SectionBudget   = "budget"
)

// DraftDiff represents the changes between two drafts.
// It is designed to be serialized to JSON for partial updates on the client.
type DraftDiff struct {
	DraftID string `json:"draft_id,omitempty"`

	// Sections lists the data sections whose content changed.
	Sections []string `json:"sections,omitempty"`

	CurrentStep       *int  `json:"current_step,omitempty"`
	ProfileSubStep    *int  `json:"profile_sub_step,omitempty"`
	IsProfileComplete *bool `json:"is_profile_complete,omitempty"`
}

// Diff calculates the difference between oldDraft and newDraft.
// If oldDraft is nil, it returns a diff representing the entire newDraft (initial load).
// LastSaved is ignored: a timestamp refresh alone is not a change.
func Diff(oldDraft, newDraft *CampaignDraft) *DraftDiff {
	if newDraft == nil {
		return nil
	}

	diff := &DraftDiff{DraftID: newDraft.ID}
	if oldDraft == nil {
		oldDraft = &CampaignDraft{}
		diff.CurrentStep = &newDraft.CurrentStep
		diff.ProfileSubStep = &newDraft.ProfileSubStep
		diff.IsProfileComplete = &newDraft.IsProfileComplete
	}

	// 1. Data sections
	if !reflect.DeepEqual(oldDraft.Profile, newDraft.Profile) {
		diff.Sections = append(diff.Sections, SectionProfile)
	}
	if oldDraft.Channels != newDraft.Channels {
		diff.Sections = append(diff.Sections, SectionChannels)
	}
	if !reflect.DeepEqual(oldDraft.Content, newDraft.Content) {
		diff.Sections = append(diff.Sections, SectionContent)
	}
	if !reflect.DeepEqual(oldDraft.Image, newDraft.Image) {
		diff.Sections = append(diff.Sections, SectionImage)
	}
	if !reflect.DeepEqual(oldDraft.Budget, newDraft.Budget) {
		diff.Sections = append(diff.Sections, SectionBudget)
	}

	// 2. Cursors and flags
	if oldDraft.CurrentStep != newDraft.CurrentStep {
		diff.CurrentStep = &newDraft.CurrentStep
	}
	if oldDraft.ProfileSubStep != newDraft.ProfileSubStep {
		diff.ProfileSubStep = &newDraft.ProfileSubStep
	}
	if oldDraft.IsProfileComplete != newDraft.IsProfileComplete {
		diff.IsProfileComplete = &newDraft.IsProfileComplete
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *DraftDiff) IsEmpty() bool {
	return len(d.Sections) == 0 &&
		d.CurrentStep == nil &&
		d.ProfileSubStep == nil &&
		d.IsProfileComplete == nil
}

// Touches reports whether the diff includes the named section.
func (d *DraftDiff) Touches(section string) bool {
	if d == nil {
		return false
	}
	for _, s := range d.Sections {
		if s == section {
			return true
		}
	}
	return false
}
