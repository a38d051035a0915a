package cascade

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/aretw0/architect/pkg/domain"
)

// Failure is the class of a failed model call.
type Failure int

const (
	// FailureOther moves on to the next model.
	FailureOther Failure = iota
	// FailureUnavailable means the model id is unknown or refused; the next model is tried.
	FailureUnavailable
	// FailureConnectivity aborts the cascade.
	FailureConnectivity
	// FailureCanceled means the caller gave up; the cascade aborts.
	FailureCanceled
)

func (f Failure) String() string {
	switch f {
	case FailureUnavailable:
		return "unavailable"
	case FailureConnectivity:
		return "connectivity"
	case FailureCanceled:
		return "canceled"
	default:
		return "other"
	}
}

// DefaultUnavailableStatuses are the provider statuses treated as "model not available".
var DefaultUnavailableStatuses = []int{http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity}

type classifier struct {
	unavailable map[int]struct{}
}

func newClassifier(statuses []int) classifier {
	set := make(map[int]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return classifier{unavailable: set}
}

// classify decides what a failed call means for the cascade. parent is the
// caller's context, not the per-call one, so a per-call timeout is told apart
// from caller cancellation.
func (c classifier) classify(parent context.Context, err error) Failure {
	if parent.Err() != nil {
		return FailureCanceled
	}
	if errors.Is(err, domain.ErrNetworkUnreachable) || errors.Is(err, context.DeadlineExceeded) {
		return FailureConnectivity
	}

	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		if _, ok := c.unavailable[pe.StatusCode]; ok {
			return FailureUnavailable
		}
		return FailureOther
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureConnectivity
	}
	return FailureOther
}
