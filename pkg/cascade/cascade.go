// Package cascade calls an ordered list of models until one answers.
//
// Models are tried in the configured order, one request each. A model that is
// unavailable or fails for a model-specific reason is skipped; an unreachable
// service or a cancelled caller aborts the whole cascade.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/pkg/cleaner"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 30 * time.Second

// ErrEmptyResponse is recorded when a model answers with no usable code.
var ErrEmptyResponse = errors.New("model returned an empty response")

var tracer = otel.Tracer("architect/cascade")

// Client is an immutable model cascade. It is safe for concurrent use.
type Client struct {
	completer  ports.Completer
	models     []string
	params     ports.GenerationParams
	timeout    time.Duration
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	classifier classifier
}

// Option configures a Client.
type Option func(*Client)

// WithParams sets the parameters passed to every model.
func WithParams(p ports.GenerationParams) Option {
	return func(c *Client) {
		c.params = p
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithHooks registers model call observers.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = h
	}
}

// WithUnavailableStatuses replaces the provider statuses treated as "model not available".
func WithUnavailableStatuses(statuses ...int) Option {
	return func(c *Client) {
		c.classifier = newClassifier(statuses)
	}
}

// New creates a cascade over models. The slice is copied; its order is the call order.
func New(completer ports.Completer, models []string, opts ...Option) (*Client, error) {
	if completer == nil {
		return nil, errors.New("cascade: completer is nil")
	}
	if len(models) == 0 {
		return nil, domain.ErrEmptyCascade
	}

	c := &Client{
		completer:  completer,
		models:     append([]string(nil), models...),
		timeout:    DefaultTimeout,
		logger:     logging.NewNop(),
		classifier: newClassifier(DefaultUnavailableStatuses),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Models returns a copy of the cascade order.
func (c *Client) Models() []string {
	return append([]string(nil), c.models...)
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Call sends the prompt to each model in order and returns the first cleaned,
// non-empty output together with the model that produced it.
func (c *Client) Call(ctx context.Context, system, user string) (string, string, error) {
	var failures []ModelFailure

	for _, model := range c.models {
		if err := ctx.Err(); err != nil {
			return "", "", fmt.Errorf("cascade aborted: %w", err)
		}

		out, err := c.callOne(ctx, model, system, user)
		if err == nil {
			return out, model, nil
		}

		failure := c.classifier.classify(ctx, err)
		switch failure {
		case FailureCanceled:
			return "", "", fmt.Errorf("cascade aborted: %w", ctx.Err())
		case FailureConnectivity:
			c.logger.Error("Model service unreachable", "model", model, "err", err)
			return "", "", &NetworkError{Model: model, Err: err}
		}

		c.logger.Warn("Model failed, trying next candidate", "model", model, "reason", failure.String(), "err", err)
		failures = append(failures, ModelFailure{Model: model, Failure: failure, Err: err})
	}

	return "", "", &ExhaustedError{Failures: failures}
}

func (c *Client) callOne(ctx context.Context, model, system, user string) (string, error) {
	ctx, span := tracer.Start(ctx, "cascade.Call",
		trace.WithAttributes(attribute.String("model", model)),
	)
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqID := domain.RequestID(ctx)
	if c.hooks.OnModelCall != nil {
		c.hooks.OnModelCall(ctx, &domain.ModelEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventModelCall, RequestID: reqID},
			Model:     model,
		})
	}

	start := time.Now()
	c.logger.Debug("Calling model", "model", model, "timeout", c.timeout)
	raw, err := c.completer.Complete(callCtx, ports.CompletionRequest{
		Model:  model,
		System: system,
		User:   user,
		Params: c.params,
	})

	var out string
	if err == nil {
		out = cleaner.Clean(raw)
		if out == "" {
			err = fmt.Errorf("model %q: %w", model, ErrEmptyResponse)
		}
	}
	elapsed := time.Since(start)

	if c.hooks.OnModelReturn != nil {
		evt := &domain.ModelEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventModelReturn, RequestID: reqID},
			Model:     model,
			Elapsed:   elapsed,
			IsError:   err != nil,
		}
		if err != nil {
			evt.Error = err.Error()
		}
		c.hooks.OnModelReturn(ctx, evt)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetStatus(codes.Ok, "")
	return out, nil
}
