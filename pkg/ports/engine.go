package ports

import (
	"context"

	"github.com/aretw0/architect/pkg/domain"
)

// Generator is the driving port used by transports for single-shot work.
type Generator interface {
	// Generate runs the generate → lint → repair loop. It never returns nil.
	Generate(ctx context.Context, req domain.GenerateRequest) *domain.GenerationResult

	// Validate lints code against the loaded design system.
	Validate(code string) domain.ValidationResult

	// DesignSystem returns the shared, read-only design system.
	DesignSystem() *domain.DesignSystem
}

// SessionService is the driving port for multi-turn refinement.
type SessionService interface {
	Generator

	// Refine runs one turn of the session, creating it on first use.
	Refine(ctx context.Context, sessionID, prompt string) (*domain.GenerationResult, error)

	// History returns the stored conversation of a session.
	History(ctx context.Context, sessionID string) (*domain.Conversation, error)

	// Reset clears the history of a session.
	Reset(ctx context.Context, sessionID string) error

	// Sessions lists known session IDs.
	Sessions(ctx context.Context) ([]string, error)
}
