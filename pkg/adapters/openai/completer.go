// Package openai implements ports.Completer for OpenAI-compatible chat completion services.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	goopenai "github.com/sashabaranov/go-openai"
)

// Completer sends one chat completion per call.
type Completer struct {
	client     *goopenai.Client
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Completer.
type Option func(*Completer)

// WithBaseURL points the client at any OpenAI-compatible endpoint (e.g. "http://localhost:11434/v1").
func WithBaseURL(url string) Option {
	return func(c *Completer) {
		c.baseURL = url
	}
}

// WithHTTPClient sets the transport used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Completer) {
		c.httpClient = hc
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Completer) {
		c.logger = l
	}
}

// New creates a Completer. An empty apiKey fails with domain.ErrCredentialMissing.
func New(apiKey string, opts ...Option) (*Completer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.ErrCredentialMissing
	}

	c := &Completer{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(c.baseURL, "/")
	}
	if c.httpClient != nil {
		cfg.HTTPClient = c.httpClient
	}
	c.client = goopenai.NewClientWithConfig(cfg)
	return c, nil
}

// Complete implements ports.Completer.
func (c *Completer) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	chatReq := goopenai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: nonZero(req.Params.Temperature),
		TopP:        nonZero(req.Params.TopP),
	}
	if req.Params.MaxTokens > 0 {
		chatReq.MaxCompletionTokens = req.Params.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		c.logger.Debug("Chat completion failed", "model", req.Model, "err", err)
		return "", mapError(req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", &domain.ProviderError{Model: req.Model, Message: "no choices returned"}
	}

	c.logger.Debug("Received completion", "model", req.Model, "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// nonZero keeps an explicit 0 on the wire: the request fields are omitempty,
// and the smallest positive float is the client library's sanctioned stand-in.
func nonZero(v float32) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return v
}

// mapError turns service-side failures into *domain.ProviderError and leaves
// transport failures untouched so the cascade can classify them.
func mapError(model string, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{
			Model:      model,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 0 {
			return fmt.Errorf("model %q: %w", model, err)
		}
		return &domain.ProviderError{
			Model:      model,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    http.StatusText(reqErr.HTTPStatusCode),
			Err:        err,
		}
	}
	return err
}
