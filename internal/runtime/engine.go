package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/validation"
)

// Engine is the navigation state machine runner. It evaluates transitions on a
// draft the caller already holds exclusively and reports them through hooks.
// It never returns errors: a refused transition is an inert no-op.
type Engine struct {
	outer  Flow
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithOuterFlow selects the flow driving the outer cursor (default: CampaignFlow).
func WithOuterFlow(f Flow) EngineOption {
	return func(e *Engine) {
		e.outer = f
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		outer:  CampaignFlow,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outer returns the flow driving the outer cursor.
func (e *Engine) Outer() Flow {
	return e.outer
}

// Normalize repairs out-of-range cursors on a freshly loaded draft.
func (e *Engine) Normalize(d *domain.CampaignDraft) {
	e.outer.Clamp(d)
	ProfileFlow.Clamp(d)
}

// Advance applies Flow.Advance and reports the outcome.
func (e *Engine) Advance(ctx context.Context, d *domain.CampaignDraft, f Flow) bool {
	return e.report(ctx, d, f.Advance(d))
}

// Retreat applies Flow.Retreat and reports the outcome.
func (e *Engine) Retreat(ctx context.Context, d *domain.CampaignDraft, f Flow) bool {
	return e.report(ctx, d, f.Retreat(d))
}

// JumpTo applies Flow.JumpTo and reports the outcome.
func (e *Engine) JumpTo(ctx context.Context, d *domain.CampaignDraft, f Flow, n int) bool {
	return e.report(ctx, d, f.JumpTo(d, n))
}

// Set applies Flow.Set and reports the outcome.
func (e *Engine) Set(ctx context.Context, d *domain.CampaignDraft, f Flow, n int) bool {
	return e.report(ctx, d, f.Set(d, n))
}

// MarkProfileComplete is the terminal transition of the profile mini-wizard.
// It requires the sub-cursor on the last page and every sub-step gate to hold.
// The first success sets IsProfileComplete and moves the outer cursor to its
// post-onboarding entry point; later calls change nothing.
func (e *Engine) MarkProfileComplete(ctx context.Context, d *domain.CampaignDraft) bool {
	if d.IsProfileComplete {
		return false
	}
	t := Transition{Flow: ProfileFlow.Name, Op: "complete", From: d.ProfileSubStep, To: d.ProfileSubStep}
	if d.ProfileSubStep != domain.ProfileSubSteps || !validation.IsProfileValid(d.Profile) {
		e.report(ctx, d, t)
		return false
	}

	d.IsProfileComplete = true
	e.logger.Info("profile completed", "draft_id", d.ID)
	e.Set(ctx, d, e.outer, domain.ProfileCompleteEntryStep)
	return true
}

func (e *Engine) report(ctx context.Context, d *domain.CampaignDraft, t Transition) bool {
	ev := &domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), DraftID: d.ID},
		Wizard:    t.Flow,
		Op:        string(t.Op),
		From:      t.From,
		To:        t.To,
	}

	if !t.Moved {
		ev.Type = domain.EventTransitionRefused
		e.logger.Debug("transition refused",
			"draft_id", d.ID, "wizard", t.Flow, "op", t.Op, "from", t.From, "to", t.To)
		if e.hooks.OnTransitionRefused != nil {
			e.hooks.OnTransitionRefused(ctx, ev)
		}
		return false
	}

	ev.Type = domain.EventStepChange
	e.logger.Debug("step changed",
		"draft_id", d.ID, "wizard", t.Flow, "op", t.Op, "from", t.From, "to", t.To)
	if e.hooks.OnStepChange != nil {
		e.hooks.OnStepChange(ctx, ev)
	}
	return true
}
