package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

var validate = validator.New()

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Prompt    string `json:"prompt" validate:"required,max=16384"`
	PriorCode string `json:"prior_code,omitempty" validate:"max=262144"`
}

// RefineRequest is the body of POST /sessions/{id}/generate.
type RefineRequest struct {
	Prompt string `json:"prompt" validate:"required,max=16384"`
}

// ValidateRequest is the body of POST /validate.
type ValidateRequest struct {
	Code string `json:"code" validate:"required"`
}

// ErrorResponse is the body of every non-2xx reply that is not a generation result.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server exposes a ports.SessionService over HTTP.
type Server struct {
	Service ports.SessionService
	Streams *StreamManager

	logger  *slog.Logger
	metrics http.Handler
	origins []string
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithCORSOrigins sets the allowed origins. Defaults to "*".
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewHandler creates the HTTP handler for svc.
func NewHandler(svc ports.SessionService, opts ...Option) http.Handler {
	s := &Server{
		Service: svc,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.GetHealth)
	r.Get("/design-system", s.GetDesignSystem)
	r.Post("/generate", s.Generate)
	r.Post("/validate", s.Validate)
	r.Get("/sessions", s.ListSessions)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/generate", s.Refine)
		r.Get("/events", s.SubscribeEvents)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Generate handles POST /generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if !s.decode(w, r, &body) {
		return
	}

	ctx := domain.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
	res := s.Service.Generate(ctx, domain.GenerateRequest{Prompt: body.Prompt, PriorCode: body.PriorCode})
	s.logger.Info("Generate finished",
		"request_id", middleware.GetReqID(r.Context()),
		"outcome", res.Outcome,
		"iterations", res.Iterations,
	)
	writeJSON(w, statusFor(res), res)
}

// Refine handles POST /sessions/{id}/generate.
func (s *Server) Refine(w http.ResponseWriter, r *http.Request) {
	var body RefineRequest
	if !s.decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")

	ctx := domain.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
	res, err := s.Service.Refine(ctx, id, body.Prompt)
	if err != nil {
		s.logger.Error("Refine failed", "session_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("session error: %v", err))
		return
	}

	// Fatal runs commit nothing, so subscribers hear only stored turns.
	if res.Outcome != domain.OutcomeFailure {
		s.broadcastTurn(id, res)
	}
	writeJSON(w, statusFor(res), res)
}

func (s *Server) broadcastTurn(id string, res *domain.GenerationResult) {
	data, err := json.Marshal(TurnEvent{
		SessionID:  id,
		Outcome:    res.Outcome,
		Success:    res.Success,
		Iterations: res.Iterations,
		Model:      res.ModelUsed,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("Turn event encode failed", "session_id", id, "err", err)
		return
	}
	s.Streams.Broadcast(id, string(data))
}

// Validate handles POST /validate.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var body ValidateRequest
	if !s.decode(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, s.Service.Validate(body.Code))
}

// GetDesignSystem handles GET /design-system.
func (s *Server) GetDesignSystem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Service.DesignSystem())
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.Sessions(r.Context())
	if err != nil {
		s.logger.Error("List sessions failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.Service.History(r.Context(), id)
	if err != nil {
		s.sessionError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Service.Reset(r.Context(), id); err != nil {
		s.sessionError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"app":     "architect-http",
		"version": architect.Version,
	})
}

func (s *Server) sessionError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("Session operation failed", "session_id", id, "err", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// decode reads and validates a JSON body, replying 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	return fmt.Sprintf("field %q failed %q", fe.Field(), fe.Tag())
}

// statusFor maps a generation outcome to an HTTP status. Exhaustion is a
// normal outcome and answers 200 with success=false.
func statusFor(res *domain.GenerationResult) int {
	if res.Outcome != domain.OutcomeFailure {
		return http.StatusOK
	}
	switch {
	case errors.Is(res.Err, domain.ErrInjectionDetected), errors.Is(res.Err, domain.ErrInputRejected):
		return http.StatusBadRequest
	case errors.Is(res.Err, domain.ErrNetworkUnreachable), errors.Is(res.Err, domain.ErrAllModelsFailed):
		return http.StatusBadGateway
	case errors.Is(res.Err, domain.ErrCredentialMissing):
		return http.StatusServiceUnavailable
	case errors.Is(res.Err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
