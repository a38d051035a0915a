package ports

import "context"

// GenerationParams are passed unchanged to every model of a cascade.
type GenerationParams struct {
	Temperature float32 `json:"temperature" yaml:"temperature" toml:"temperature"`
	TopP        float32 `json:"top_p" yaml:"top_p" toml:"top_p"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
}

// CompletionRequest is a single chat completion for a single model.
type CompletionRequest struct {
	Model  string
	System string
	User   string
	Params GenerationParams
}

// Completer is the outbound port to a code-generating model service.
//
// Implementations report service-side refusals as *domain.ProviderError and
// return transport failures unwrapped so callers can classify them.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
