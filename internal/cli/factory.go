package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/internal/config"
	"github.com/aretw0/architect/pkg/adapters/file"
	"github.com/aretw0/architect/pkg/adapters/memory"
	"github.com/aretw0/architect/pkg/adapters/openai"
	"github.com/aretw0/architect/pkg/adapters/redis"
	"github.com/aretw0/architect/pkg/observability"
	"github.com/aretw0/architect/pkg/persistence/middleware"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/aretw0/architect/pkg/sanitizer"
	"github.com/aretw0/architect/pkg/tokens"
	"github.com/aretw0/architect/pkg/validator"
	backend "github.com/redis/go-redis/v9"
)

// pingTimeout bounds the Redis reachability check at startup.
const pingTimeout = 3 * time.Second

// BuildOptions are command-line switches that override the config file.
type BuildOptions struct {
	Mock  bool
	Debug bool
}

// Stack is a fully wired engine plus the infrastructure it owns.
type Stack struct {
	Engine  *architect.Engine
	Metrics *observability.Metrics
	Store   ports.HistoryStore
	Audit   ports.AuditRecorder
	Logger  *slog.Logger

	closers []func() error
}

// Close releases every backend opened by Build.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build assembles the engine described by cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts BuildOptions) (*Stack, error) {
	ds, err := tokens.LoadOrDefault(cfg.DesignSystem)
	if err != nil {
		return nil, err
	}

	completer, err := newCompleter(cfg, logger, opts.Mock)
	if err != nil {
		return nil, err
	}

	stack := &Stack{
		Metrics: observability.NewMetrics(),
		Logger:  logger,
	}

	backends, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	stack.Store = backends.store
	stack.Audit = backends.audit
	stack.closers = backends.closers

	engineOpts := []architect.Option{
		architect.WithDesignSystem(ds),
		architect.WithCompleter(completer),
		architect.WithModels(cfg.Model.Cascade...),
		architect.WithParams(ports.GenerationParams{
			Temperature: cfg.Model.Temperature,
			TopP:        cfg.Model.TopP,
			MaxTokens:   cfg.Model.MaxTokens,
		}),
		architect.WithMaxAttempts(cfg.Loop.MaxAttempts),
		architect.WithHistoryWindow(cfg.Loop.HistoryWindow),
		architect.WithSanitizer(sanitizer.New(sanitizer.WithMaxInputSize(cfg.Sanitizer.MaxInputSize))),
		architect.WithValidatorOptions(validatorOptions(cfg.Validator)...),
		architect.WithHistoryStore(stack.Store),
		architect.WithMaxTurns(cfg.Session.MaxTurns),
		architect.WithLogger(logger),
		architect.WithHooks(stack.Metrics.Hooks()),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, architect.WithHooks(observability.LogHooks(logger)))
	}
	if t := cfg.Model.Timeout.Std(); t > 0 {
		engineOpts = append(engineOpts, architect.WithTimeout(t))
	}
	if d := cfg.Loop.Deadline.Std(); d > 0 {
		engineOpts = append(engineOpts, architect.WithDeadline(d))
	}
	if len(cfg.Model.UnavailableStatus) > 0 {
		engineOpts = append(engineOpts, architect.WithUnavailableStatuses(cfg.Model.UnavailableStatus...))
	}
	if backends.locker != nil {
		engineOpts = append(engineOpts, architect.WithLocker(backends.locker))
	}
	if stack.Audit != nil {
		engineOpts = append(engineOpts, architect.WithAuditRecorder(stack.Audit))
	}

	stack.Engine, err = architect.New(engineOpts...)
	if err != nil {
		_ = stack.Close()
		return nil, err
	}
	return stack, nil
}

// OpenStore opens only the conversation store, for commands that inspect
// sessions without generating.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.HistoryStore, func() error, error) {
	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	s := &Stack{closers: b.closers}
	return b.store, s.Close, nil
}

func newCompleter(cfg *config.Config, logger *slog.Logger, mock bool) (ports.Completer, error) {
	if mock || cfg.Model.Mock {
		logger.Info("Using the offline demo model")
		return DemoCompleter(500 * time.Millisecond), nil
	}
	var opts []openai.Option
	if cfg.Model.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.Model.BaseURL))
	}
	opts = append(opts, openai.WithLogger(logger))
	c, err := openai.New(cfg.Model.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w (set %s or use --mock)", err, config.EnvAPIKey)
	}
	return c, nil
}

func validatorOptions(c config.Checks) []validator.Option {
	var opts []validator.Option
	if c.SkipColors {
		opts = append(opts, validator.WithoutColorCheck())
	}
	if c.MaxColorViolations > 0 {
		opts = append(opts, validator.WithMaxColorViolations(c.MaxColorViolations))
	}
	return opts
}

type backends struct {
	store   ports.HistoryStore
	locker  ports.DistributedLocker
	audit   ports.AuditRecorder
	closers []func() error
}

func openBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{}
	var base ports.HistoryStore

	switch cfg.Session.Store {
	case "redis":
		client := backend.NewClient(&backend.Options{Addr: cfg.Session.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Session.RedisAddr, err)
		}
		prefix := cfg.Session.RedisPrefix
		base = redis.NewFromClient(client,
			redis.WithPrefix(prefix+"session:"),
			redis.WithIndexKey(prefix+"index:sessions"),
		)
		b.locker = redis.NewLocker(client, prefix)
		if cfg.Session.Audit {
			b.audit = redis.NewAuditLog(client, prefix, 0)
		}
		b.closers = append(b.closers, client.Close)
		logger.Debug("Session store ready", "backend", "redis", "addr", cfg.Session.RedisAddr)
	case "file":
		base = file.New(cfg.Session.Dir)
		logger.Debug("Session store ready", "backend", "file", "dir", cfg.Session.Dir)
	default:
		base = memory.NewStore()
	}
	if cfg.Session.Audit && b.audit == nil {
		b.audit = memory.NewAuditLog()
	}

	var mws []middleware.Middleware
	if cfg.Session.RedactPII {
		mws = append(mws, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns))
	}
	if cfg.Session.EncryptionKey != "" {
		// Redaction sees plaintext; encryption is applied last on Save.
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: []byte(cfg.Session.EncryptionKey),
		}))
	}
	b.store = middleware.Chain(base, mws...)
	return b, nil
}
