package mcp

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
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DesignSystemURI is the resource exposing the loaded design system.
const DesignSystemURI = "architect://design-system"

// GenerateResponse is the structured output of generate_component.
type GenerateResponse struct {
	Code       string   `json:"code" jsonschema_description:"The generated component, or the diagnostic when the run failed"`
	Success    bool     `json:"success" jsonschema_description:"True when the component passed validation"`
	Outcome    string   `json:"outcome" jsonschema_description:"success, exhausted or failure"`
	Iterations int      `json:"iterations" jsonschema_description:"Number of completed validations"`
	ModelUsed  string   `json:"model_used,omitempty" jsonschema_description:"Model that produced the code"`
	Logs       []string `json:"logs" jsonschema_description:"Human-readable trace of every attempt"`
	SessionID  string   `json:"session_id,omitempty" jsonschema_description:"Session the turn was recorded in"`
}

// ValidateResponse is the structured output of validate_component.
type ValidateResponse struct {
	Valid  bool     `json:"valid" jsonschema_description:"True when the code complies with the design system"`
	Errors []string `json:"errors" jsonschema_description:"Validation findings in a stable order"`
}

// Server exposes a ports.SessionService as an MCP server.
type Server struct {
	service   ports.SessionService
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. MCP over stdio must never log to stdout.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(service ports.SessionService, opts ...Option) *Server {
	s := &Server{
		service:   service,
		mcpServer: server.NewMCPServer("architect-mcp", architect.Version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))
	allow := cors.AllowAll().Handler

	mux := http.NewServeMux()
	mux.Handle("/sse", allow(sseServer.SSEHandler()))
	mux.Handle("/message", allow(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	generateTool := mcp.NewTool("generate_component",
		mcp.WithDescription("Generate a UI component that complies with the loaded design system. Validation errors are repaired automatically."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Natural-language description of the component")),
		mcp.WithString("prior_code", mcp.Description("Existing component to refine (optional, not allowed together with session_id)")),
		mcp.WithString("session_id", mcp.Description("Session to record the turn in; follow-up calls refine its last component, so prior_code must be omitted (optional)")),
		mcp.WithOutputSchema[GenerateResponse](),
	)
	s.mcpServer.AddTool(generateTool, mcp.NewStructuredToolHandler(s.handleGenerate))

	validateTool := mcp.NewTool("validate_component",
		mcp.WithDescription("Lint component code against the design system (bracket balance, required markers, allowed colors)."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Component source code")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("get_design_system",
		mcp.WithDescription("Get the design tokens and rules generated components must follow."),
	), s.handleDesignSystem)
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	prompt, _ := args["prompt"].(string)
	prior, _ := args["prior_code"].(string)
	sessionID, _ := args["session_id"].(string)
	if prompt == "" {
		return GenerateResponse{}, errors.New("prompt is required")
	}
	if sessionID != "" && prior != "" {
		return GenerateResponse{}, errors.New("prior_code cannot be combined with session_id: the session supplies the component to refine")
	}

	var res *domain.GenerationResult
	if sessionID != "" {
		var err error
		res, err = s.service.Refine(ctx, sessionID, prompt)
		if err != nil {
			return GenerateResponse{}, fmt.Errorf("session turn failed: %w", err)
		}
	} else {
		res = s.service.Generate(ctx, domain.GenerateRequest{Prompt: prompt, PriorCode: prior})
	}

	s.logger.Info("MCP generate finished", "outcome", res.Outcome, "iterations", res.Iterations, "session_id", sessionID)
	return GenerateResponse{
		Code:       res.Code,
		Success:    res.Success,
		Outcome:    string(res.Outcome),
		Iterations: res.Iterations,
		ModelUsed:  res.ModelUsed,
		Logs:       res.Logs,
		SessionID:  sessionID,
	}, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	code, _ := args["code"].(string)
	res := s.service.Validate(code)
	return ValidateResponse{Valid: res.Valid, Errors: res.Details()}, nil
}

func (s *Server) handleDesignSystem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(s.service.DesignSystem(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DesignSystemURI, "Design System",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.service.DesignSystem())
		if err != nil {
			return nil, fmt.Errorf("failed to encode design system: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      DesignSystemURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
