package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/draftwizard/internal/runtime"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func completeProfile(d *domain.CampaignDraft) {
	d.ApplyProfile(domain.ProfilePatch{
		CompanyName:    ptr("Acme AB"),
		OrgNumber:      ptr("556677-8899"),
		Industry:       ptr("retail"),
		TargetingAreas: &[]string{domain.WholeCountry},
		Goals:          &[]string{"leads"},
		AgeRangeMin:    ptr(20),
		AgeRangeMax:    ptr(60),
		Interests:      &[]string{"mat"},
	})
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var changed, refused []*domain.TransitionEvent
	engine := runtime.NewEngine(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnStepChange: func(ctx context.Context, e *domain.TransitionEvent) {
			changed = append(changed, e)
		},
		OnTransitionRefused: func(ctx context.Context, e *domain.TransitionEvent) {
			refused = append(refused, e)
		},
	}))
	ctx := context.Background()
	d := domain.NewDraft()

	assert.False(t, engine.Advance(ctx, d, engine.Outer()))
	assert.True(t, engine.Set(ctx, d, engine.Outer(), 3))
	assert.True(t, engine.Retreat(ctx, d, engine.Outer()))

	if assert.Len(t, refused, 1) {
		assert.Equal(t, domain.EventTransitionRefused, refused[0].Type)
		assert.Equal(t, "advance", refused[0].Op)
		assert.Equal(t, 1, refused[0].From)
	}
	if assert.Len(t, changed, 2) {
		assert.Equal(t, 3, changed[0].To)
		assert.Equal(t, 2, changed[1].To)
		assert.Equal(t, "campaign", changed[1].Wizard)
	}
}

func TestEngine_MarkProfileComplete(t *testing.T) {
	engine := runtime.NewEngine()
	ctx := context.Background()
	d := domain.NewDraft()

	assert.False(t, engine.MarkProfileComplete(ctx, d), "empty profile")

	completeProfile(d)
	assert.False(t, engine.MarkProfileComplete(ctx, d), "not on the last sub-step")

	d.ProfileSubStep = domain.ProfileSubSteps
	assert.True(t, engine.MarkProfileComplete(ctx, d))
	assert.True(t, d.IsProfileComplete)
	assert.Equal(t, domain.ProfileCompleteEntryStep, d.CurrentStep)
	assert.Equal(t, domain.ProfileSubSteps, d.ProfileSubStep)

	d.CurrentStep = 4
	assert.False(t, engine.MarkProfileComplete(ctx, d), "idempotent")
	assert.True(t, d.IsProfileComplete)
	assert.Equal(t, 4, d.CurrentStep, "second call moves nothing")
	assert.Equal(t, domain.ProfileSubSteps, d.ProfileSubStep)
}

func TestEngine_OnboardingOuterFlow(t *testing.T) {
	engine := runtime.NewEngine(runtime.WithOuterFlow(runtime.OnboardingFlow))
	ctx := context.Background()
	d := domain.NewDraft()
	completeProfile(d)
	d.ProfileSubStep = domain.ProfileSubSteps

	assert.True(t, engine.MarkProfileComplete(ctx, d))
	assert.Equal(t, 2, d.CurrentStep)

	d.CurrentStep = 5
	engine.Normalize(d)
	assert.Equal(t, domain.OnboardingSteps, d.CurrentStep)
}
