package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepChange        EventType = "step_change"
	EventTransitionRefused EventType = "transition_refused"
	EventSave              EventType = "save"
	EventSaveError         EventType = "save_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	DraftID   string    `json:"draft_id,omitempty"`
}

// TransitionEvent describes a cursor move or a refused move.
type TransitionEvent struct {
	EventBase
	Wizard string `json:"wizard"`
	Op     string `json:"op"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

// SaveEvent describes a persistence attempt.
type SaveEvent struct {
	EventBase
	Trigger string        `json:"trigger"`
	Elapsed time.Duration `json:"elapsed"`
	Err     error         `json:"-"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnStepChange        func(context.Context, *TransitionEvent)
	OnTransitionRefused func(context.Context, *TransitionEvent)
	OnSave              func(context.Context, *SaveEvent)
	OnSaveError         func(context.Context, *SaveEvent)
}
