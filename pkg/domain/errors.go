package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

var (
	// ErrInjectionDetected is returned when the request matches a known manipulation phrase.
	ErrInjectionDetected = errors.New("prompt injection detected")

	// ErrInputRejected is the parent of every input policy violation (size, encoding, emptiness).
	ErrInputRejected = errors.New("input rejected")

	// ErrNetworkUnreachable is returned when the model service cannot be reached at all.
	ErrNetworkUnreachable = errors.New("model service unreachable")

	// ErrAllModelsFailed is returned when every model of the cascade failed for a non-network reason.
	ErrAllModelsFailed = errors.New("all models in cascade failed")

	// ErrCredentialMissing is returned when no credential for the model service is configured.
	ErrCredentialMissing = errors.New("model service credential missing")

	// ErrEmptyCascade is returned when a cascade is constructed without models.
	ErrEmptyCascade = errors.New("model cascade is empty")

	// ErrInvalidDesignSystem is returned when a token document fails validation.
	ErrInvalidDesignSystem = errors.New("invalid design system")
)

// ProviderError is a non-transport failure reported by the model service.
type ProviderError struct {
	Model      string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("model %q: status %d: %s", e.Model, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("model %q: %s", e.Model, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err ends a generation run without consuming retry budget.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range []error{
		ErrInjectionDetected,
		ErrInputRejected,
		ErrNetworkUnreachable,
		ErrAllModelsFailed,
		ErrCredentialMissing,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
