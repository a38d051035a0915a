package cascade

import (
	"fmt"
	"strings"

	"github.com/aretw0/architect/pkg/domain"
)

// NetworkError aborts a cascade: the model service itself is unreachable, so
// trying another model cannot help.
type NetworkError struct {
	Model string
	Err   error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%v (model %q): %v", domain.ErrNetworkUnreachable, e.Model, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{domain.ErrNetworkUnreachable, e.Err}
}

// ModelFailure is the reason one model of the cascade was skipped.
type ModelFailure struct {
	Model   string
	Failure Failure
	Err     error
}

// ExhaustedError is returned when every model failed for a non-network reason.
type ExhaustedError struct {
	Failures []ModelFailure
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.Model, f.Err)
	}
	return fmt.Sprintf("%v: %s", domain.ErrAllModelsFailed, strings.Join(parts, "; "))
}

// Last returns the error of the final candidate.
func (e *ExhaustedError) Last() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[len(e.Failures)-1].Err
}

func (e *ExhaustedError) Unwrap() []error {
	if last := e.Last(); last != nil {
		return []error{domain.ErrAllModelsFailed, last}
	}
	return []error{domain.ErrAllModelsFailed}
}
