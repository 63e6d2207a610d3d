package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStepChange(ctx, &domain.TransitionEvent{Wizard: "campaign", Op: "advance"})
	hooks.OnStepChange(ctx, &domain.TransitionEvent{Wizard: "campaign", Op: "advance"})
	hooks.OnTransitionRefused(ctx, &domain.TransitionEvent{Wizard: "profile", Op: "jump"})
	hooks.OnSave(ctx, &domain.SaveEvent{Trigger: "debounce", Elapsed: 3 * time.Millisecond})
	hooks.OnSaveError(ctx, &domain.SaveEvent{Trigger: "backstop", Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepChanges.WithLabelValues("campaign", "advance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefusedTransitions.WithLabelValues("profile", "jump")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves.WithLabelValues("debounce")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SaveFailures.WithLabelValues("backstop")))

	n, err := testutil.GatherAndCount(reg, "draftwizard_save_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCombine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := observability.NewMetrics(nil)

	var seen int
	hooks := observability.Combine(
		observability.LoggingHooks(logger),
		m.Hooks(),
		domain.LifecycleHooks{OnSave: func(context.Context, *domain.SaveEvent) { seen++ }},
	)

	hooks.OnSave(context.Background(), &domain.SaveEvent{EventBase: domain.EventBase{DraftID: "d1"}, Trigger: "flush"})
	hooks.OnTransitionRefused(context.Background(), &domain.TransitionEvent{Wizard: "campaign", Op: "advance"})

	assert.Equal(t, 1, seen)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves.WithLabelValues("flush")))
	assert.Contains(t, buf.String(), "draft_saved")
	assert.Contains(t, buf.String(), "draft_id=d1")
	assert.Contains(t, buf.String(), "transition_refused")
}
