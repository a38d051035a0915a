package architect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/internal/runtime"
	"github.com/aretw0/architect/pkg/adapters/memory"
	"github.com/aretw0/architect/pkg/cascade"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/aretw0/architect/pkg/prompt"
	"github.com/aretw0/architect/pkg/sanitizer"
	"github.com/aretw0/architect/pkg/session"
	"github.com/aretw0/architect/pkg/tokens"
	"github.com/aretw0/architect/pkg/validator"
	"github.com/google/uuid"
)

// Version is the library version reported by the CLI and the HTTP health check.
const Version = "0.3.0"

// DefaultModels is the cascade used when none is configured.
var DefaultModels = []string{"gpt-4o-mini", "gpt-4o"}

// DefaultParams are the generation parameters used when none are configured.
var DefaultParams = ports.GenerationParams{Temperature: 0.2, TopP: 0.9, MaxTokens: 4096}

// Engine is the high-level entry point of the library. It wires the
// sanitizer, prompt builder, model cascade and validator into one loop and
// owns the session manager used for multi-turn refinement.
//
// An Engine is safe for concurrent use.
type Engine struct {
	ds        *domain.DesignSystem
	validator *validator.Validator
	cascade   *cascade.Client
	orch      *runtime.Orchestrator
	sessions  *session.Manager
	audit     ports.AuditRecorder
	logger    *slog.Logger

	completer     ports.Completer
	models        []string
	params        ports.GenerationParams
	timeout       time.Duration
	maxAttempts   int
	deadline      time.Duration
	statuses      []int
	hooks         domain.LifecycleHooks
	sanitizer     *sanitizer.Sanitizer
	validatorOpts []validator.Option
	window        int
	store         ports.HistoryStore
	locker        ports.DistributedLocker
	maxTurns      int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDesignSystem sets the design system. Defaults to the embedded one.
func WithDesignSystem(ds *domain.DesignSystem) Option {
	return func(e *Engine) {
		e.ds = ds
	}
}

// WithCompleter sets the model service client.
func WithCompleter(c ports.Completer) Option {
	return func(e *Engine) {
		e.completer = c
	}
}

// WithModels sets the cascade order.
func WithModels(models ...string) Option {
	return func(e *Engine) {
		e.models = models
	}
}

// WithParams sets the generation parameters passed to every model.
func WithParams(p ports.GenerationParams) Option {
	return func(e *Engine) {
		e.params = p
	}
}

// WithTimeout sets the per-call model timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithMaxAttempts sets the attempt budget (1..10).
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		e.maxAttempts = n
	}
}

// WithDeadline bounds a whole run. By default it is attempts × timeout × len(models).
func WithDeadline(d time.Duration) Option {
	return func(e *Engine) {
		e.deadline = d
	}
}

// WithUnavailableStatuses sets the provider statuses that skip to the next model.
func WithUnavailableStatuses(statuses ...int) Option {
	return func(e *Engine) {
		e.statuses = statuses
	}
}

// WithSanitizer replaces the default input sanitizer.
func WithSanitizer(s *sanitizer.Sanitizer) Option {
	return func(e *Engine) {
		e.sanitizer = s
	}
}

// WithValidatorOptions tunes the validator.
func WithValidatorOptions(opts ...validator.Option) Option {
	return func(e *Engine) {
		e.validatorOpts = append(e.validatorOpts, opts...)
	}
}

// WithHistoryWindow sets how many recent turns are rendered into prompts.
func WithHistoryWindow(n int) Option {
	return func(e *Engine) {
		e.window = n
	}
}

// WithHistoryStore sets the session store. Defaults to an in-memory store.
func WithHistoryStore(s ports.HistoryStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker enables distributed per-session locking.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithMaxTurns bounds the stored history of a session.
func WithMaxTurns(n int) Option {
	return func(e *Engine) {
		e.maxTurns = n
	}
}

// WithAuditRecorder records every finished run.
func WithAuditRecorder(a ports.AuditRecorder) Option {
	return func(e *Engine) {
		e.audit = a
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks. Multiple calls compose.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = domain.ComposeHooks(e.hooks, hooks)
	}
}

// New initializes an Engine. A completer is required; without one there is
// no model service to talk to and New fails with domain.ErrCredentialMissing.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		models:      DefaultModels,
		params:      DefaultParams,
		timeout:     cascade.DefaultTimeout,
		maxAttempts: runtime.DefaultMaxAttempts,
		statuses:    cascade.DefaultUnavailableStatuses,
		window:      prompt.DefaultHistoryWindow,
		maxTurns:    session.DefaultMaxTurns,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.completer == nil {
		return nil, fmt.Errorf("no model service configured: %w", domain.ErrCredentialMissing)
	}
	if eng.ds == nil {
		eng.ds = tokens.Default()
	}
	if err := eng.ds.Validate(); err != nil {
		return nil, err
	}
	if eng.deadline == 0 {
		eng.deadline = time.Duration(eng.maxAttempts*len(eng.models)) * eng.timeout
	}

	var err error
	eng.cascade, err = cascade.New(eng.completer, eng.models,
		cascade.WithParams(eng.params),
		cascade.WithTimeout(eng.timeout),
		cascade.WithUnavailableStatuses(eng.statuses...),
		cascade.WithLogger(eng.logger),
		cascade.WithHooks(eng.hooks),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build model cascade: %w", err)
	}

	builder, err := prompt.New(eng.ds, prompt.WithHistoryWindow(eng.window))
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt builder: %w", err)
	}

	eng.validator = validator.New(eng.ds, eng.validatorOpts...)

	runtimeOpts := []runtime.Option{
		runtime.WithMaxAttempts(eng.maxAttempts),
		runtime.WithDeadline(eng.deadline),
		runtime.WithLogger(eng.logger),
		runtime.WithHooks(eng.hooks),
	}
	if eng.sanitizer != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithSanitizer(eng.sanitizer))
	}
	eng.orch, err = runtime.New(builder, eng.cascade, eng.validator, runtimeOpts...)
	if err != nil {
		return nil, err
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	sessionOpts := []session.Option{
		session.WithMaxTurns(eng.maxTurns),
		session.WithLogger(eng.logger),
	}
	if eng.locker != nil {
		// A turn holds the lock for a whole run.
		sessionOpts = append(sessionOpts,
			session.WithLocker(eng.locker),
			session.WithLockTTL(eng.deadline+session.DefaultLockTTL),
		)
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	return eng, nil
}

// Generate runs the generate → lint → repair loop for a single request.
// It never returns nil; failures are reported through the result.
func (e *Engine) Generate(ctx context.Context, req domain.GenerateRequest) *domain.GenerationResult {
	rep := e.orch.Run(ctx, runtime.Input{Prompt: req.Prompt, PriorCode: req.PriorCode})
	e.record(ctx, "", req.Prompt, rep)
	return rep.Result
}

// Validate lints code against the engine's design system.
func (e *Engine) Validate(code string) domain.ValidationResult {
	return e.validator.Validate(code)
}

// DesignSystem returns the shared design system. Callers must not modify it.
func (e *Engine) DesignSystem() *domain.DesignSystem {
	return e.ds
}

// Models returns the cascade order.
func (e *Engine) Models() []string {
	return e.cascade.Models()
}

// MaxAttempts returns the attempt budget.
func (e *Engine) MaxAttempts() int {
	return e.orch.MaxAttempts()
}

// Session returns a handle on a multi-turn session. The session is created
// on its first successful or exhausted turn.
func (e *Engine) Session(id string) *Session {
	return &Session{engine: e, id: id}
}

// NewSession returns a handle on a fresh session with a random ID.
func (e *Engine) NewSession() *Session {
	return e.Session(uuid.NewString())
}

// Refine runs one turn of a session.
func (e *Engine) Refine(ctx context.Context, sessionID, prompt string) (*domain.GenerationResult, error) {
	return e.Session(sessionID).Run(ctx, prompt)
}

// History returns the stored conversation of a session.
func (e *Engine) History(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	return e.Session(sessionID).History(ctx)
}

// Reset clears a session.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.Session(sessionID).Reset(ctx)
}

// Sessions lists the known session IDs.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

func (e *Engine) record(ctx context.Context, sessionID, raw string, rep runtime.Report) {
	if e.audit == nil {
		return
	}
	res := rep.Result
	entry := domain.AuditEntry{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Timestamp:  time.Now().UTC(),
		Prompt:     rep.Prompt,
		Outcome:    res.Outcome,
		Success:    res.Success,
		Model:      res.ModelUsed,
		Iterations: res.Iterations,
	}
	// Rejected input is not stored verbatim.
	if entry.Prompt == "" && raw != "" {
		entry.Prompt = "[rejected]"
	}
	if err := e.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		e.logger.Warn("Failed to record audit entry", "session_id", sessionID, "err", err)
	}
}

var _ ports.SessionService = (*Engine)(nil)

// isFatal reports whether a run ended without an artifact worth keeping.
func isFatal(res *domain.GenerationResult) bool {
	return res.Outcome == domain.OutcomeFailure
}
