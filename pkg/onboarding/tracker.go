// Package onboarding derives the dashboard onboarding overview from a draft.
//
// The overview is presentational. It never feeds back into the draft: Sync
// rebuilds it from scratch, so calling it again with the same draft yields the
// same state.
package onboarding

import (
	"math"
	"sync"

	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/validation"
)

// Profile field weights. They sum to 100.
const (
	WeightIdentity    = 15 // company name and org number
	WeightIndustry    = 10
	WeightAreas       = 15
	WeightWebsite     = 5
	WeightGoals       = 15
	WeightAge         = 10
	WeightGender      = 5
	WeightInterests   = 15
	WeightDescription = 10
)

// campaignGates are the campaign steps whose gates make up campaign progress.
var campaignGates = []int{2, 3, 4, 5}

// Tracker holds an OnboardingState and applies the step transitions to it.
type Tracker struct {
	mu    sync.Mutex
	state domain.OnboardingState
}

// NewTracker returns a tracker at the initial state.
func NewTracker() *Tracker {
	return &Tracker{state: domain.NewOnboardingState()}
}

// State returns a copy of the current state.
func (t *Tracker) State() domain.OnboardingState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clone(t.state)
}

// CompleteStep marks id completed and unlocks the following step. Unless id
// is the last step, the current step moves to the newly unlocked one.
// Unknown ids are ignored.
func (t *Tracker) CompleteStep(id domain.OnboardingStepID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	completeStep(&t.state, id)
}

// UpdateStepProgress stores a progress percentage, clamped to 0..100,
// without affecting completion.
func (t *Tracker) UpdateStepProgress(id domain.OnboardingStepID, progress int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	setProgress(&t.state, id, progress)
}

// NextStep returns the first step that is neither completed nor locked.
func (t *Tracker) NextStep() (domain.OnboardingStepID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.state.Steps {
		if !s.Completed && !s.Locked {
			return s.ID, true
		}
	}
	return "", false
}

// OverallProgress returns round(100 * completed / total).
func (t *Tracker) OverallProgress() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return overall(t.state)
}

// Sync replaces the state with the one derived from d and returns it.
func (t *Tracker) Sync(d *domain.CampaignDraft) domain.OnboardingState {
	derived := Derive(d)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = derived
	return clone(derived)
}

// Derive computes the onboarding state of a draft. Steps complete in order:
// a step whose predecessor is incomplete stays locked even if its own
// condition holds. The launch step is completed outside the draft wizard and
// is never derived.
func Derive(d *domain.CampaignDraft) domain.OnboardingState {
	st := domain.NewOnboardingState()
	if d == nil {
		return st
	}

	campaign := CampaignProgress(d)
	done := map[domain.OnboardingStepID]bool{
		domain.OnboardingProfile:  d.IsProfileComplete,
		domain.OnboardingChannels: d.Channels.AnyConnected(),
		domain.OnboardingCampaign: campaign == 100,
	}

	setProgress(&st, domain.OnboardingProfile, ProfileProgress(d.Profile))
	setProgress(&st, domain.OnboardingChannels, ChannelsProgress(d.Channels))
	setProgress(&st, domain.OnboardingCampaign, campaign)

	for _, id := range domain.OnboardingStepIDs {
		if !done[id] {
			break
		}
		completeStep(&st, id)
	}
	return st
}

// ProfileProgress is the weighted share of filled profile fields.
func ProfileProgress(p domain.CompanyProfile) int {
	score := 0
	if validation.IsProfileSubStepValid(p, 1) {
		score += WeightIdentity
	}
	if validation.IsProfileSubStepValid(p, 2) {
		score += WeightIndustry
	}
	if validation.IsProfileSubStepValid(p, 3) {
		score += WeightAreas
	}
	if p.Website != "" {
		score += WeightWebsite
	}
	if validation.IsProfileSubStepValid(p, 5) {
		score += WeightGoals
	}
	if validation.IsProfileSubStepValid(p, 6) {
		score += WeightAge
	}
	if p.TargetGender != "" {
		score += WeightGender
	}
	if validation.IsProfileSubStepValid(p, 7) {
		score += WeightInterests
	}
	if p.Description != "" {
		score += WeightDescription
	}
	return score
}

// ChannelsProgress is 100 once any slot is connected.
func ChannelsProgress(c domain.Channels) int {
	if c.AnyConnected() {
		return 100
	}
	return 0
}

// CampaignProgress is the share of open campaign gates, steps 2 to 5.
func CampaignProgress(d *domain.CampaignDraft) int {
	open := 0
	for _, step := range campaignGates {
		if validation.IsStepValid(d, step) {
			open++
		}
	}
	return percent(open, len(campaignGates))
}

func completeStep(st *domain.OnboardingState, id domain.OnboardingStepID) {
	i := index(st, id)
	if i < 0 {
		return
	}
	st.Steps[i].Completed = true
	st.Steps[i].Locked = false
	if i+1 < len(st.Steps) {
		st.Steps[i+1].Locked = false
		st.CurrentStep = st.Steps[i+1].ID
	}
	st.IsComplete = allCompleted(st)
}

func setProgress(st *domain.OnboardingState, id domain.OnboardingStepID, progress int) {
	i := index(st, id)
	if i < 0 {
		return
	}
	st.Steps[i].Progress = min(max(progress, 0), 100)
}

func index(st *domain.OnboardingState, id domain.OnboardingStepID) int {
	for i, s := range st.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func allCompleted(st *domain.OnboardingState) bool {
	for _, s := range st.Steps {
		if !s.Completed {
			return false
		}
	}
	return true
}

func overall(st domain.OnboardingState) int {
	completed := 0
	for _, s := range st.Steps {
		if s.Completed {
			completed++
		}
	}
	return percent(completed, len(st.Steps))
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(total)))
}

func clone(st domain.OnboardingState) domain.OnboardingState {
	st.Steps = append([]domain.OnboardingStep(nil), st.Steps...)
	return st
}
