package domain

import "time"

// SchemaVersion is the version tag written into every persisted draft.
const SchemaVersion = 1

// Wizard dimensions.
const (
	CampaignSteps   = 6
	OnboardingSteps = 2
	ProfileSubSteps = 9

	// ProfileCompleteEntryStep is where the outer cursor lands once the profile
	// mini-wizard has been confirmed.
	ProfileCompleteEntryStep = 2
)

// Step titles, index 0 being step 1.
var (
	CampaignStepTitles   = []string{"Setup", "Channels", "Content", "Image", "Budget", "Review"}
	OnboardingStepTitles = []string{"Profile", "Channels"}
	ProfileSubStepTitles = []string{
		"Company", "Industry", "Areas", "Website", "Goals",
		"Age range", "Interests", "Description", "Channels",
	}
)

// WholeCountry is the targeting-area sentinel. It is mutually exclusive with
// every named area.
const WholeCountry = "Hela Sverige"

// IndustryOther is the industry code that enables the free-text override.
const IndustryOther = "other"

// CampaignDraft is the in-progress, not-yet-launched campaign aggregate.
type CampaignDraft struct {
	// ID is empty until the draft has been saved once.
	ID string `json:"id,omitempty"`

	Profile  CompanyProfile `json:"profile"`
	Channels Channels       `json:"channels"`
	Content  AdContent      `json:"content"`
	Image    *ImageRef      `json:"image,omitempty"`
	Budget   Budget         `json:"budget"`

	// CurrentStep is the cursor into the outer wizard (1-indexed).
	CurrentStep int `json:"currentStep"`
	// ProfileSubStep is the cursor into the profile mini-wizard (1..9).
	ProfileSubStep int `json:"profileSubStep"`

	// IsProfileComplete is monotonic; only a full reset clears it.
	IsProfileComplete bool `json:"isProfileComplete"`

	LastSaved time.Time `json:"lastSaved"`
	Version   int       `json:"version"`
}

// CompanyProfile is the data collected by the profile mini-wizard.
type CompanyProfile struct {
	CompanyName      string   `json:"companyName"`
	OrgNumber        string   `json:"orgNumber"`
	Industry         string   `json:"industry"`
	IndustryOther    string   `json:"industryOther,omitempty"`
	TargetingAreas   []string `json:"targetingAreas"`
	CoverageRadiusKm *int     `json:"coverageRadiusKm,omitempty"`
	Website          string   `json:"website,omitempty"`
	Goals            []string `json:"goals"`
	AgeRangeMin      int      `json:"ageRangeMin"`
	AgeRangeMax      int      `json:"ageRangeMax"`
	TargetGender     string   `json:"targetGender,omitempty"`
	Interests        []string `json:"interests"`
	Description      string   `json:"description,omitempty"`
}

// ChannelName identifies one of the fixed advertising-platform slots.
type ChannelName string

const (
	ChannelMeta     ChannelName = "meta"
	ChannelGoogle   ChannelName = "google"
	ChannelLinkedIn ChannelName = "linkedin"
)

// ChannelNames lists the slots in display order.
var ChannelNames = []ChannelName{ChannelMeta, ChannelGoogle, ChannelLinkedIn}

// ChannelConnection is the state of a single channel slot.
type ChannelConnection struct {
	Connected         bool   `json:"connected"`
	AccountID         string `json:"accountId,omitempty"`
	AccountName       string `json:"accountName,omitempty"`
	ActiveForCampaign bool   `json:"activeForCampaign,omitempty"`
}

// Channels holds the fixed set of channel slots.
type Channels struct {
	Meta     ChannelConnection `json:"meta"`
	Google   ChannelConnection `json:"google"`
	LinkedIn ChannelConnection `json:"linkedin"`
}

// Slot returns a pointer to the named slot, or nil for an unknown name.
func (c *Channels) Slot(name ChannelName) *ChannelConnection {
	switch name {
	case ChannelMeta:
		return &c.Meta
	case ChannelGoogle:
		return &c.Google
	case ChannelLinkedIn:
		return &c.LinkedIn
	}
	return nil
}

// AnyConnected reports whether at least one slot is connected.
func (c Channels) AnyConnected() bool {
	return c.Meta.Connected || c.Google.Connected || c.LinkedIn.Connected
}

// AnyActive reports whether at least one slot is active for the campaign.
func (c Channels) AnyActive() bool {
	return c.Meta.ActiveForCampaign || c.Google.ActiveForCampaign || c.LinkedIn.ActiveForCampaign
}

// AdContent is the copy shown in the ad.
type AdContent struct {
	Headline     string `json:"headline"`
	Description  string `json:"description"`
	CallToAction string `json:"callToAction"`

	// Suggestions caches variants returned by the copywriting collaborator.
	Suggestions []ContentSuggestion `json:"suggestions,omitempty"`
}

// ContentSuggestion is one AI-suggested variant.
type ContentSuggestion struct {
	Headline     string `json:"headline"`
	Description  string `json:"description"`
	CallToAction string `json:"callToAction"`
}

// ImageRef points at the selected creative.
type ImageRef struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	AltText     string `json:"altText"`
	Attribution string `json:"attribution,omitempty"`
	IsCustom    bool   `json:"isCustom"`
}

// Budget holds spend and scheduling. Dates are ISO calendar dates (YYYY-MM-DD).
type Budget struct {
	DailyBudget float64   `json:"dailyBudget"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Targeting   Targeting `json:"targeting"`
}

// Targeting describes who should see the campaign.
type Targeting struct {
	Locations []string `json:"locations"`
	Interests []string `json:"interests"`
	AgeMin    int      `json:"ageMin"`
	AgeMax    int      `json:"ageMax"`
}

// NewDraft creates an empty draft positioned at the first step and sub-step.
func NewDraft() *CampaignDraft {
	return &CampaignDraft{
		Profile: CompanyProfile{
			TargetingAreas: []string{},
			Goals:          []string{},
			Interests:      []string{},
		},
		Budget: Budget{
			Targeting: Targeting{
				Locations: []string{},
				Interests: []string{},
			},
		},
		CurrentStep:    1,
		ProfileSubStep: 1,
		Version:        SchemaVersion,
	}
}

// Clone returns a deep copy of the draft.
func (d *CampaignDraft) Clone() *CampaignDraft {
	if d == nil {
		return nil
	}
	c := *d
	c.Profile.TargetingAreas = cloneStrings(d.Profile.TargetingAreas)
	c.Profile.Goals = cloneStrings(d.Profile.Goals)
	c.Profile.Interests = cloneStrings(d.Profile.Interests)
	if d.Profile.CoverageRadiusKm != nil {
		r := *d.Profile.CoverageRadiusKm
		c.Profile.CoverageRadiusKm = &r
	}
	if d.Content.Suggestions != nil {
		c.Content.Suggestions = append([]ContentSuggestion(nil), d.Content.Suggestions...)
	}
	if d.Image != nil {
		img := *d.Image
		c.Image = &img
	}
	c.Budget.Targeting.Locations = cloneStrings(d.Budget.Targeting.Locations)
	c.Budget.Targeting.Interests = cloneStrings(d.Budget.Targeting.Interests)
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
