package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/draftwizard/pkg/domain"
)

// LoggingHooks logs every lifecycle event. Cursor moves log at debug, save
// failures at warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepChange: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "step_change",
				"draft_id", e.DraftID, "wizard", e.Wizard, "op", e.Op, "from", e.From, "to", e.To)
		},
		OnTransitionRefused: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition_refused",
				"draft_id", e.DraftID, "wizard", e.Wizard, "op", e.Op, "from", e.From, "to", e.To)
		},
		OnSave: func(ctx context.Context, e *domain.SaveEvent) {
			logger.InfoContext(ctx, "draft_saved",
				"draft_id", e.DraftID, "trigger", e.Trigger, "elapsed", e.Elapsed)
		},
		OnSaveError: func(ctx context.Context, e *domain.SaveEvent) {
			logger.WarnContext(ctx, "draft_save_failed",
				"draft_id", e.DraftID, "trigger", e.Trigger, "err", e.Err)
		},
	}
}

// Combine returns hooks that call each of hs in order.
func Combine(hs ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepChange: func(ctx context.Context, e *domain.TransitionEvent) {
			for _, h := range hs {
				if h.OnStepChange != nil {
					h.OnStepChange(ctx, e)
				}
			}
		},
		OnTransitionRefused: func(ctx context.Context, e *domain.TransitionEvent) {
			for _, h := range hs {
				if h.OnTransitionRefused != nil {
					h.OnTransitionRefused(ctx, e)
				}
			}
		},
		OnSave: func(ctx context.Context, e *domain.SaveEvent) {
			for _, h := range hs {
				if h.OnSave != nil {
					h.OnSave(ctx, e)
				}
			}
		},
		OnSaveError: func(ctx context.Context, e *domain.SaveEvent) {
			for _, h := range hs {
				if h.OnSaveError != nil {
					h.OnSaveError(ctx, e)
				}
			}
		},
	}
}
