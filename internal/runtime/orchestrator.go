package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/prompt"
	"github.com/aretw0/architect/pkg/sanitizer"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxAttempts is the attempt budget of a run.
	DefaultMaxAttempts = 3
	// MaxAttemptsLimit is the largest accepted budget.
	MaxAttemptsLimit = 10
)

// ErrInvalidAttempts is returned for a budget outside 1..MaxAttemptsLimit.
var ErrInvalidAttempts = fmt.Errorf("max attempts must be between 1 and %d", MaxAttemptsLimit)

var tracer = otel.Tracer("architect/runtime")

// Caller produces cleaned code for a rendered prompt. *cascade.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, system, user string) (code, model string, err error)
}

// Checker validates an artifact. *validator.Validator satisfies it.
type Checker interface {
	Validate(artifact string) domain.ValidationResult
}

// Input is one run of the loop.
type Input struct {
	Prompt string

	// PriorCode is an existing component the request refines.
	PriorCode string

	// History is the conversation so far, oldest first.
	History []domain.ConversationTurn
}

// Report is the outcome of a run plus the request as it was sent to the model.
type Report struct {
	Result *domain.GenerationResult

	// Prompt is the sanitized request. Empty when sanitizing failed.
	Prompt string
}

// Orchestrator drives the loop. It holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	sanitizer   *sanitizer.Sanitizer
	builder     *prompt.Builder
	caller      Caller
	checker     Checker
	maxAttempts int
	deadline    time.Duration
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxAttempts sets the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		o.maxAttempts = n
	}
}

// WithDeadline bounds a whole run. Zero disables the bound.
func WithDeadline(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.deadline = d
	}
}

// WithSanitizer replaces the default input sanitizer.
func WithSanitizer(s *sanitizer.Sanitizer) Option {
	return func(o *Orchestrator) {
		o.sanitizer = s
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithHooks registers attempt and terminal observers.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = h
	}
}

// New creates an Orchestrator.
func New(builder *prompt.Builder, caller Caller, checker Checker, opts ...Option) (*Orchestrator, error) {
	if builder == nil || caller == nil || checker == nil {
		return nil, errors.New("runtime: builder, caller and checker are required")
	}
	o := &Orchestrator{
		sanitizer:   sanitizer.New(),
		builder:     builder,
		caller:      caller,
		checker:     checker,
		maxAttempts: DefaultMaxAttempts,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxAttempts < 1 || o.maxAttempts > MaxAttemptsLimit {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAttempts, o.maxAttempts)
	}
	return o, nil
}

// MaxAttempts returns the attempt budget.
func (o *Orchestrator) MaxAttempts() int {
	return o.maxAttempts
}

// run carries the mutable state of one request.
type run struct {
	res     *domain.GenerationResult
	request string
	errs    []domain.ValidationError
	prior   string
}

func (r *run) logf(format string, args ...any) {
	r.res.Logs = append(r.res.Logs, fmt.Sprintf(format, args...))
}

// Run executes the loop for in. It never returns a nil Result.
func (o *Orchestrator) Run(ctx context.Context, in Input) Report {
	reqID := domain.RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = domain.WithRequestID(ctx, reqID)
	}

	ctx, span := tracer.Start(ctx, "runtime.Run",
		trace.WithAttributes(
			attribute.String("request_id", reqID),
			attribute.Int("max_attempts", o.maxAttempts),
		),
	)
	defer span.End()

	if o.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.deadline)
		defer cancel()
	}

	logger := o.logger.With("request_id", reqID)
	r := &run{res: &domain.GenerationResult{Logs: []string{}}}

	clean, err := o.sanitizer.Sanitize(in.Prompt)
	if err != nil {
		logger.Warn("Request rejected", "err", err)
		o.fail(ctx, span, r, err)
		return Report{Result: r.res}
	}
	r.request = clean

	for i := 1; i <= o.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			o.fail(ctx, span, r, err)
			return Report{Result: r.res, Prompt: clean}
		}

		done, err := o.attempt(ctx, logger, r, in, i)
		if err != nil {
			logger.Error("Generation aborted", "iteration", i, "err", err)
			o.fail(ctx, span, r, err)
			return Report{Result: r.res, Prompt: clean}
		}
		if done {
			r.res.Success = true
			r.res.Outcome = domain.OutcomeSuccess
			logger.Info("Generation succeeded", "iterations", r.res.Iterations, "model", r.res.ModelUsed)
			o.terminal(ctx, r)
			span.SetStatus(codes.Ok, "")
			return Report{Result: r.res, Prompt: clean}
		}
	}

	r.res.Outcome = domain.OutcomeExhausted
	r.logf("Validation failed after %d attempts; returning the last generated code.", o.maxAttempts)
	logger.Warn("Attempt budget exhausted", "attempts", o.maxAttempts, "errors", len(r.errs))
	o.terminal(ctx, r)
	span.SetStatus(codes.Error, "attempt budget exhausted")
	return Report{Result: r.res, Prompt: clean}
}

// attempt runs one generate → validate iteration. It reports whether the
// artifact was valid, or a fatal error.
func (o *Orchestrator) attempt(ctx context.Context, logger *slog.Logger, r *run, in Input, i int) (bool, error) {
	p, err := o.builder.Build(prompt.Request{
		Request:   r.request,
		Errors:    r.errs,
		PriorCode: r.prior,
		BaseCode:  in.PriorCode,
		History:   in.History,
	})
	if err != nil {
		return false, fmt.Errorf("failed to build prompt: %w", err)
	}

	reqID := domain.RequestID(ctx)
	if o.hooks.OnAttemptStart != nil {
		o.hooks.OnAttemptStart(ctx, &domain.AttemptEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventAttemptStart, RequestID: reqID},
			Iteration: i,
			Mode:      p.Mode,
		})
	}

	if p.Mode == domain.ModeRepair {
		r.logf("Iteration %d: Repairing code (%d errors)...", i, len(r.errs))
	} else {
		r.logf("Iteration %d: Generating code...", i)
	}

	start := time.Now()
	code, model, err := o.caller.Call(ctx, p.System, p.User)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.logf("Iteration %d: Validating code (model %s)...", i, model)
	vr := o.checker.Validate(code)
	elapsed := time.Since(start)

	r.res.Iterations = i
	r.res.Code = code
	r.res.ModelUsed = model
	r.res.Attempts = append(r.res.Attempts, domain.GenerationAttempt{
		Iteration: i,
		Mode:      p.Mode,
		Model:     model,
		Code:      code,
		Errors:    vr.Errors,
		Elapsed:   elapsed,
	})

	if o.hooks.OnAttemptEnd != nil {
		o.hooks.OnAttemptEnd(ctx, &domain.AttemptEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventAttemptEnd, RequestID: reqID},
			Iteration: i,
			Mode:      p.Mode,
			Model:     model,
			Errors:    vr.Errors,
			Elapsed:   elapsed,
		})
	}

	if vr.Valid {
		r.logf("Iteration %d: Validation successful! (%s)", i, elapsed.Round(time.Millisecond))
		logger.Debug("Attempt valid", "iteration", i, "mode", p.Mode, "model", model, "elapsed", elapsed)
		return true, nil
	}

	details := vr.Details()
	r.logf("Iteration %d: Errors found: %s (%s)", i, strings.Join(details, ", "), elapsed.Round(time.Millisecond))
	logger.Info("Attempt invalid", "iteration", i, "mode", p.Mode, "model", model, "elapsed", elapsed, "errors", details)

	r.errs = vr.Errors
	r.prior = code
	return false, nil
}

func (o *Orchestrator) fail(ctx context.Context, span trace.Span, r *run, err error) {
	diag := Diagnostic(err)
	r.res.Success = false
	r.res.Outcome = domain.OutcomeFailure
	r.res.Code = diag
	r.res.Diagnostic = diag
	r.res.Err = err
	r.logf("%s", diag)

	span.RecordError(err)
	span.SetStatus(codes.Error, diag)
	o.terminal(ctx, r)
}

func (o *Orchestrator) terminal(ctx context.Context, r *run) {
	if o.hooks.OnTerminal == nil {
		return
	}
	o.hooks.OnTerminal(ctx, &domain.TerminalEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventTerminal, RequestID: domain.RequestID(ctx)},
		Outcome:    r.res.Outcome,
		Iterations: r.res.Iterations,
		Model:      r.res.ModelUsed,
	})
}
