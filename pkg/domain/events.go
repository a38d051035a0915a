package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventAttemptStart EventType = "attempt_start"
	EventAttemptEnd   EventType = "attempt_end"
	EventModelCall    EventType = "model_call"
	EventModelReturn  EventType = "model_return"
	EventTerminal     EventType = "terminal"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id"`
}

// AttemptEvent marks the start or end of a loop iteration.
type AttemptEvent struct {
	EventBase
	Iteration int               `json:"iteration"`
	Mode      Mode              `json:"mode"`
	Model     string            `json:"model,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
	Elapsed   time.Duration     `json:"elapsed,omitempty"`
}

// ModelEvent represents one request to a model of the cascade.
type ModelEvent struct {
	EventBase
	Model   string        `json:"model"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
	IsError bool          `json:"is_error,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// TerminalEvent is emitted once per run.
type TerminalEvent struct {
	EventBase
	Outcome    Outcome `json:"outcome"`
	Iterations int     `json:"iterations"`
	Model      string  `json:"model,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnAttemptStart func(context.Context, *AttemptEvent)
	OnAttemptEnd   func(context.Context, *AttemptEvent)
	OnModelCall    func(context.Context, *ModelEvent)
	OnModelReturn  func(context.Context, *ModelEvent)
	OnTerminal     func(context.Context, *TerminalEvent)
}

// ComposeHooks returns hooks that invoke each non-nil callback of every set in order.
func ComposeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range sets {
		out.OnAttemptStart = chain(out.OnAttemptStart, h.OnAttemptStart)
		out.OnAttemptEnd = chain(out.OnAttemptEnd, h.OnAttemptEnd)
		out.OnModelCall = chain(out.OnModelCall, h.OnModelCall)
		out.OnModelReturn = chain(out.OnModelReturn, h.OnModelReturn)
		out.OnTerminal = chain(out.OnTerminal, h.OnTerminal)
	}
	return out
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
