package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/architect/pkg/domain"
)

// LogHooks returns lifecycle hooks that emit debug records for every event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAttemptStart: func(ctx context.Context, e *domain.AttemptEvent) {
			logger.DebugContext(ctx, "attempt start", "request_id", e.RequestID, "iteration", e.Iteration, "mode", e.Mode)
		},
		OnAttemptEnd: func(ctx context.Context, e *domain.AttemptEvent) {
			logger.DebugContext(ctx, "attempt end",
				"request_id", e.RequestID,
				"iteration", e.Iteration,
				"model", e.Model,
				"errors", len(e.Errors),
				"elapsed", e.Elapsed,
			)
		},
		OnModelCall: func(ctx context.Context, e *domain.ModelEvent) {
			logger.DebugContext(ctx, "model call", "request_id", e.RequestID, "model", e.Model)
		},
		OnModelReturn: func(ctx context.Context, e *domain.ModelEvent) {
			if e.IsError {
				logger.DebugContext(ctx, "model return", "request_id", e.RequestID, "model", e.Model, "elapsed", e.Elapsed, "err", e.Error)
				return
			}
			logger.DebugContext(ctx, "model return", "request_id", e.RequestID, "model", e.Model, "elapsed", e.Elapsed)
		},
		OnTerminal: func(ctx context.Context, e *domain.TerminalEvent) {
			logger.DebugContext(ctx, "generation finished",
				"request_id", e.RequestID,
				"outcome", e.Outcome,
				"iterations", e.Iterations,
				"model", e.Model,
			)
		},
	}
}
