package observability

import (
	"context"

	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "draftwizard"

// Metrics holds the draft lifecycle collectors.
type Metrics struct {
	StepChanges        *prometheus.CounterVec
	RefusedTransitions *prometheus.CounterVec
	Saves              *prometheus.CounterVec
	SaveFailures       *prometheus.CounterVec
	SaveDuration       *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_changes_total",
				Help:      "Cursor moves, by wizard and operation.",
			},
			[]string{"wizard", "op"},
		),
		RefusedTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refused_transitions_total",
				Help:      "Navigation requests refused by a gate, by wizard and operation.",
			},
			[]string{"wizard", "op"},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saves_total",
				Help:      "Successful draft writes, by trigger.",
			},
			[]string{"trigger"},
		),
		SaveFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "save_failures_total",
				Help:      "Failed draft writes, by trigger.",
			},
			[]string{"trigger"},
		),
		SaveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "save_duration_seconds",
				Help:      "Duration of draft writes.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"trigger"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.StepChanges, m.RefusedTransitions, m.Saves, m.SaveFailures, m.SaveDuration)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepChange: func(_ context.Context, e *domain.TransitionEvent) {
			m.StepChanges.WithLabelValues(e.Wizard, e.Op).Inc()
		},
		OnTransitionRefused: func(_ context.Context, e *domain.TransitionEvent) {
			m.RefusedTransitions.WithLabelValues(e.Wizard, e.Op).Inc()
		},
		OnSave: func(_ context.Context, e *domain.SaveEvent) {
			m.Saves.WithLabelValues(e.Trigger).Inc()
			m.SaveDuration.WithLabelValues(e.Trigger).Observe(e.Elapsed.Seconds())
		},
		OnSaveError: func(_ context.Context, e *domain.SaveEvent) {
			m.SaveFailures.WithLabelValues(e.Trigger).Inc()
		},
	}
}
