package runtime

import (
	"context"
	"errors"

	"github.com/aretw0/architect/pkg/domain"
)

// Diagnostic renders a fatal error as the message returned in place of code.
func Diagnostic(err error) string {
	switch {
	case errors.Is(err, domain.ErrInjectionDetected), errors.Is(err, domain.ErrInputRejected):
		return "Request rejected: " + err.Error()
	case errors.Is(err, domain.ErrCredentialMissing):
		return "Generation unavailable: " + err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Generation timed out: " + err.Error()
	case errors.Is(err, context.Canceled):
		return "Generation cancelled: " + err.Error()
	}
	return "Generation failed: " + err.Error()
}
