package domain

import (
	"slices"
	"time"
)

// Patches are shallow and additive: a nil field means "not provided" and never
// overwrites what the draft already holds.

// ProfilePatch is a partial update of CompanyProfile.
type ProfilePatch struct {
	CompanyName      *string   `json:"companyName,omitempty" mapstructure:"companyName"`
	OrgNumber        *string   `json:"orgNumber,omitempty" mapstructure:"orgNumber"`
	Industry         *string   `json:"industry,omitempty" mapstructure:"industry"`
	IndustryOther    *string   `json:"industryOther,omitempty" mapstructure:"industryOther"`
	TargetingAreas   *[]string `json:"targetingAreas,omitempty" mapstructure:"targetingAreas"`
	CoverageRadiusKm *int      `json:"coverageRadiusKm,omitempty" mapstructure:"coverageRadiusKm"`
	Website          *string   `json:"website,omitempty" mapstructure:"website"`
	Goals            *[]string `json:"goals,omitempty" mapstructure:"goals"`
	AgeRangeMin      *int      `json:"ageRangeMin,omitempty" mapstructure:"ageRangeMin"`
	AgeRangeMax      *int      `json:"ageRangeMax,omitempty" mapstructure:"ageRangeMax"`
	TargetGender     *string   `json:"targetGender,omitempty" mapstructure:"targetGender"`
	Interests        *[]string `json:"interests,omitempty" mapstructure:"interests"`
	Description      *string   `json:"description,omitempty" mapstructure:"description"`

	// ClearCoverageRadius removes the optional radius. It wins over CoverageRadiusKm.
	ClearCoverageRadius bool `json:"clearCoverageRadius,omitempty" mapstructure:"clearCoverageRadius"`
}

// ChannelPatch is a partial update of one channel slot.
type ChannelPatch struct {
	Connected         *bool   `json:"connected,omitempty" mapstructure:"connected"`
	AccountID         *string `json:"accountId,omitempty" mapstructure:"accountId"`
	AccountName       *string `json:"accountName,omitempty" mapstructure:"accountName"`
	ActiveForCampaign *bool   `json:"activeForCampaign,omitempty" mapstructure:"activeForCampaign"`
}

// ChannelsPatch updates any subset of the slots.
type ChannelsPatch map[ChannelName]ChannelPatch

// ContentPatch is a partial update of AdContent.
type ContentPatch struct {
	Headline     *string              `json:"headline,omitempty" mapstructure:"headline"`
	Description  *string              `json:"description,omitempty" mapstructure:"description"`
	CallToAction *string              `json:"callToAction,omitempty" mapstructure:"callToAction"`
	Suggestions  *[]ContentSuggestion `json:"suggestions,omitempty" mapstructure:"suggestions"`
}

// TargetingPatch is a partial update of Targeting.
type TargetingPatch struct {
	Locations *[]string `json:"locations,omitempty" mapstructure:"locations"`
	Interests *[]string `json:"interests,omitempty" mapstructure:"interests"`
	AgeMin    *int      `json:"ageMin,omitempty" mapstructure:"ageMin"`
	AgeMax    *int      `json:"ageMax,omitempty" mapstructure:"ageMax"`
}

// BudgetPatch is a partial update of Budget.
type BudgetPatch struct {
	DailyBudget *float64        `json:"dailyBudget,omitempty" mapstructure:"dailyBudget"`
	StartDate   *string         `json:"startDate,omitempty" mapstructure:"startDate"`
	EndDate     *string         `json:"endDate,omitempty" mapstructure:"endDate"`
	Targeting   *TargetingPatch `json:"targeting,omitempty" mapstructure:"targeting"`
}

// ApplyProfile merges p into the draft profile. Targeting areas are normalized
// so that the whole-country sentinel never coexists with a named area.
func (d *CampaignDraft) ApplyProfile(p ProfilePatch) {
	pr := &d.Profile
	setString(&pr.CompanyName, p.CompanyName)
	setString(&pr.OrgNumber, p.OrgNumber)
	setString(&pr.Industry, p.Industry)
	setString(&pr.IndustryOther, p.IndustryOther)
	if p.TargetingAreas != nil {
		pr.TargetingAreas = NormalizeAreas(pr.TargetingAreas, *p.TargetingAreas)
	}
	switch {
	case p.ClearCoverageRadius:
		pr.CoverageRadiusKm = nil
	case p.CoverageRadiusKm != nil:
		r := *p.CoverageRadiusKm
		pr.CoverageRadiusKm = &r
	}
	setString(&pr.Website, p.Website)
	setStrings(&pr.Goals, p.Goals)
	setInt(&pr.AgeRangeMin, p.AgeRangeMin)
	setInt(&pr.AgeRangeMax, p.AgeRangeMax)
	setString(&pr.TargetGender, p.TargetGender)
	setStrings(&pr.Interests, p.Interests)
	setString(&pr.Description, p.Description)
}

// ApplyChannels merges p into the channel slots. Unknown slot names are ignored.
// A slot that ends up disconnected is never left active for the campaign.
func (d *CampaignDraft) ApplyChannels(p ChannelsPatch) {
	for name, cp := range p {
		slot := d.Channels.Slot(name)
		if slot == nil {
			continue
		}
		setBool(&slot.Connected, cp.Connected)
		setString(&slot.AccountID, cp.AccountID)
		setString(&slot.AccountName, cp.AccountName)
		setBool(&slot.ActiveForCampaign, cp.ActiveForCampaign)
		if !slot.Connected {
			slot.ActiveForCampaign = false
		}
	}
}

// ApplyContent merges p into the ad content.
func (d *CampaignDraft) ApplyContent(p ContentPatch) {
	setString(&d.Content.Headline, p.Headline)
	setString(&d.Content.Description, p.Description)
	setString(&d.Content.CallToAction, p.CallToAction)
	if p.Suggestions != nil {
		d.Content.Suggestions = append([]ContentSuggestion(nil), (*p.Suggestions)...)
	}
}

// SetImage replaces the image reference; nil clears it.
func (d *CampaignDraft) SetImage(img *ImageRef) {
	if img == nil {
		d.Image = nil
		return
	}
	c := *img
	d.Image = &c
}

// ApplyBudget merges p into the budget.
func (d *CampaignDraft) ApplyBudget(p BudgetPatch) {
	if p.DailyBudget != nil {
		d.Budget.DailyBudget = *p.DailyBudget
	}
	setString(&d.Budget.StartDate, p.StartDate)
	setString(&d.Budget.EndDate, p.EndDate)
	if t := p.Targeting; t != nil {
		setStrings(&d.Budget.Targeting.Locations, t.Locations)
		setStrings(&d.Budget.Targeting.Interests, t.Interests)
		setInt(&d.Budget.Targeting.AgeMin, t.AgeMin)
		setInt(&d.Budget.Targeting.AgeMax, t.AgeMax)
	}
}

// Touch stamps LastSaved.
func (d *CampaignDraft) Touch(now time.Time) {
	d.LastSaved = Timestamp(now)
}

// Timestamp normalizes t to the form a persisted record round-trips to:
// UTC, without a monotonic clock reading.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Round(0)
}

// NormalizeAreas resolves the whole-country exclusivity between the previous
// and the next selection. Newly selecting the sentinel clears named areas;
// newly selecting a named area clears the sentinel.
func NormalizeAreas(prev, next []string) []string {
	out := dedupe(next)
	if !slices.Contains(out, WholeCountry) || len(out) == 1 {
		return out
	}
	if !slices.Contains(prev, WholeCountry) {
		return []string{WholeCountry}
	}
	return slices.DeleteFunc(out, func(a string) bool { return a == WholeCountry })
}

// ToggleArea adds or removes a single area, applying the same exclusivity.
func ToggleArea(areas []string, area string) []string {
	if slices.Contains(areas, area) {
		return slices.DeleteFunc(cloneStrings(areas), func(a string) bool { return a == area })
	}
	return NormalizeAreas(areas, append(cloneStrings(areas), area))
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setStrings(dst *[]string, v *[]string) {
	if v != nil {
		*dst = cloneStrings(*v)
		if *dst == nil {
			*dst = []string{}
		}
	}
}
