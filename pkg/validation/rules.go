// Package validation holds the pure gate predicates of the wizard. Every
// predicate is re-derived from the draft on each call; nothing is cached.
package validation

import (
	"strings"
	"time"

	"github.com/aretw0/draftwizard/pkg/domain"
)

// MinDailyBudget is the lowest daily budget the budget gate accepts.
const MinDailyBudget = 50

// DateLayout is the ISO calendar date format used by the budget dates.
const DateLayout = "2006-01-02"

// IsStepValid reports whether the campaign wizard step's completion contract
// holds for the current draft. Out-of-range steps are invalid.
func IsStepValid(d *domain.CampaignDraft, step int) bool {
	if d == nil || step < 1 || step > domain.CampaignSteps {
		return false
	}
	return len(MissingFields(d, step)) == 0
}

// IsProfileSubStepValid reports whether the profile mini-wizard sub-step's
// contract holds. Out-of-range sub-steps are invalid.
func IsProfileSubStepValid(p domain.CompanyProfile, sub int) bool {
	if sub < 1 || sub > domain.ProfileSubSteps {
		return false
	}
	return len(MissingProfileFields(p, sub)) == 0
}

// IsOnboardingStepValid gates the two-step onboarding wizard: the profile
// must be confirmed, then at least one channel connected.
func IsOnboardingStepValid(d *domain.CampaignDraft, step int) bool {
	if d == nil {
		return false
	}
	switch step {
	case 1:
		return d.IsProfileComplete
	case 2:
		return d.Channels.AnyConnected()
	}
	return false
}

// IsProfileValid reports whether every profile sub-step gate holds.
func IsProfileValid(p domain.CompanyProfile) bool {
	for sub := 1; sub <= domain.ProfileSubSteps; sub++ {
		if !IsProfileSubStepValid(p, sub) {
			return false
		}
	}
	return true
}

// MissingFields lists the json names of the draft fields that keep the given
// campaign step closed. An empty result means the gate is open.
func MissingFields(d *domain.CampaignDraft, step int) []string {
	var missing []string
	switch step {
	case 1:
		if !d.IsProfileComplete {
			missing = append(missing, "isProfileComplete")
		}
		if !d.Channels.AnyConnected() {
			missing = append(missing, "channels.connected")
		}
	case 2:
		if !d.Channels.AnyActive() {
			missing = append(missing, "channels.activeForCampaign")
		}
	case 3:
		missing = appendBlank(missing, "content.headline", d.Content.Headline)
		missing = appendBlank(missing, "content.description", d.Content.Description)
		missing = appendBlank(missing, "content.callToAction", d.Content.CallToAction)
	case 4:
		if d.Image == nil {
			missing = append(missing, "image")
		}
	case 5:
		missing = append(missing, missingBudget(d.Budget)...)
	case 6:
	default:
		missing = append(missing, "step")
	}
	return missing
}

// MissingProfileFields lists the profile fields that keep the sub-step closed.
func MissingProfileFields(p domain.CompanyProfile, sub int) []string {
	var missing []string
	switch sub {
	case 1:
		missing = appendBlank(missing, "companyName", p.CompanyName)
		missing = appendBlank(missing, "orgNumber", p.OrgNumber)
	case 2:
		missing = appendBlank(missing, "industry", p.Industry)
	case 3:
		if len(p.TargetingAreas) == 0 {
			missing = append(missing, "targetingAreas")
		}
	case 5:
		if len(p.Goals) == 0 {
			missing = append(missing, "goals")
		}
	case 6:
		if p.AgeRangeMin <= 0 {
			missing = append(missing, "ageRangeMin")
		}
		if p.AgeRangeMax <= p.AgeRangeMin {
			missing = append(missing, "ageRangeMax")
		}
	case 7:
		if len(p.Interests) == 0 {
			missing = append(missing, "interests")
		}
	case 4, 8, 9:
	default:
		missing = append(missing, "subStep")
	}
	return missing
}

func missingBudget(b domain.Budget) []string {
	var missing []string
	if b.DailyBudget < MinDailyBudget {
		missing = append(missing, "budget.dailyBudget")
	}
	start, startErr := time.Parse(DateLayout, b.StartDate)
	end, endErr := time.Parse(DateLayout, b.EndDate)
	if startErr != nil {
		missing = append(missing, "budget.startDate")
	}
	if endErr != nil || (startErr == nil && !end.After(start)) {
		missing = append(missing, "budget.endDate")
	}
	return missing
}

func appendBlank(missing []string, name, value string) []string {
	if strings.TrimSpace(value) == "" {
		return append(missing, name)
	}
	return missing
}
