package runtime

import (
	"fmt"

	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/validation"
)

// Op names a cursor operation.
type Op string

const (
	OpAdvance Op = "advance"
	OpRetreat Op = "retreat"
	OpJump    Op = "jump"
	OpSet     Op = "set"
)

// Flow describes one wizard: how many steps it has, which draft field holds
// its cursor, and the gate that must hold before leaving a step forwards.
type Flow struct {
	Name   string
	Steps  int
	Titles []string
	Gate   func(d *domain.CampaignDraft, step int) bool
	Cursor func(d *domain.CampaignDraft) *int
}

// CampaignFlow is the six-step campaign creation wizard.
var CampaignFlow = Flow{
	Name:   "campaign",
	Steps:  domain.CampaignSteps,
	Titles: domain.CampaignStepTitles,
	Gate:   validation.IsStepValid,
	Cursor: func(d *domain.CampaignDraft) *int { return &d.CurrentStep },
}

// OnboardingFlow is the two-step setup wizard (profile, channels). It shares
// the outer cursor with the campaign wizard.
var OnboardingFlow = Flow{
	Name:   "onboarding",
	Steps:  domain.OnboardingSteps,
	Titles: domain.OnboardingStepTitles,
	Gate:   validation.IsOnboardingStepValid,
	Cursor: func(d *domain.CampaignDraft) *int { return &d.CurrentStep },
}

// ProfileFlow is the nine-page profile mini-wizard.
var ProfileFlow = Flow{
	Name:   "profile",
	Steps:  domain.ProfileSubSteps,
	Titles: domain.ProfileSubStepTitles,
	Gate: func(d *domain.CampaignDraft, sub int) bool {
		return validation.IsProfileSubStepValid(d.Profile, sub)
	},
	Cursor: func(d *domain.CampaignDraft) *int { return &d.ProfileSubStep },
}

// Transition is the outcome of a cursor operation.
type Transition struct {
	Flow  string
	Op    Op
	From  int
	To    int
	Moved bool
}

// Advance moves to current+1 only if the current step's gate holds and a next
// step exists.
func (f Flow) Advance(d *domain.CampaignDraft) Transition {
	cur := *f.Cursor(d)
	return f.move(d, OpAdvance, cur+1, cur < f.Steps && f.Gate(d, cur))
}

// Retreat moves to current-1 unconditionally, unless already at the first step.
func (f Flow) Retreat(d *domain.CampaignDraft) Transition {
	cur := *f.Cursor(d)
	return f.move(d, OpRetreat, cur-1, cur > 1)
}

// JumpTo permits revisiting any step up to the current one, or moving exactly
// one step ahead when the current step's gate holds. Revisits never re-run
// gates. Everything else is refused.
func (f Flow) JumpTo(d *domain.CampaignDraft, n int) Transition {
	cur := *f.Cursor(d)
	allowed := n >= 1 && n <= f.Steps &&
		(n <= cur || (n == cur+1 && f.Gate(d, cur)))
	return f.move(d, OpJump, n, allowed)
}

// Set writes the cursor directly, bypassing gates. It is meant for completion
// actions whose validation has already passed. Out-of-range targets are refused.
func (f Flow) Set(d *domain.CampaignDraft, n int) Transition {
	return f.move(d, OpSet, n, n >= 1 && n <= f.Steps)
}

// Title names step n, falling back to its number.
func (f Flow) Title(n int) string {
	if n >= 1 && n <= len(f.Titles) {
		return f.Titles[n-1]
	}
	return fmt.Sprintf("Step %d", n)
}

// Clamp forces the cursor into [1, Steps]. It repairs drafts loaded from an
// older or hand-edited record.
func (f Flow) Clamp(d *domain.CampaignDraft) {
	c := f.Cursor(d)
	switch {
	case *c < 1:
		*c = 1
	case *c > f.Steps:
		*c = f.Steps
	}
}

func (f Flow) move(d *domain.CampaignDraft, op Op, to int, allowed bool) Transition {
	c := f.Cursor(d)
	t := Transition{Flow: f.Name, Op: op, From: *c, To: to}
	if !allowed {
		return t
	}
	*c = to
	t.Moved = true
	return t
}
