package domain

// OnboardingStepID names a step of the dashboard onboarding overview.
type OnboardingStepID string

const (
	OnboardingProfile  OnboardingStepID = "profile"
	OnboardingChannels OnboardingStepID = "channels"
	OnboardingCampaign OnboardingStepID = "campaign"
	OnboardingLaunch   OnboardingStepID = "launch"
)

// OnboardingStepIDs is the fixed step order.
var OnboardingStepIDs = []OnboardingStepID{
	OnboardingProfile,
	OnboardingChannels,
	OnboardingCampaign,
	OnboardingLaunch,
}

// OnboardingStep is one unlockable, completable step.
type OnboardingStep struct {
	ID        OnboardingStepID `json:"id"`
	Completed bool             `json:"completed"`
	Locked    bool             `json:"locked"`
	Progress  int              `json:"progress"`
}

// OnboardingState is derived, presentational progress. It is never
// authoritative: it is recomputed from a CampaignDraft.
type OnboardingState struct {
	CurrentStep OnboardingStepID `json:"currentStep"`
	Steps       []OnboardingStep `json:"steps"`
	IsComplete  bool             `json:"isComplete"`
}

// NewOnboardingState returns the initial state: first step unlocked, the rest locked.
func NewOnboardingState() OnboardingState {
	steps := make([]OnboardingStep, len(OnboardingStepIDs))
	for i, id := range OnboardingStepIDs {
		steps[i] = OnboardingStep{ID: id, Locked: i > 0}
	}
	return OnboardingState{
		CurrentStep: OnboardingStepIDs[0],
		Steps:       steps,
	}
}
