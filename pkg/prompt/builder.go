// Package prompt renders the system and user messages sent to the model.
//
// A request without validation errors renders a generation prompt; a request
// carrying errors renders a repair prompt that quotes the errors and the
// previous code verbatim.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/aretw0/architect/pkg/domain"
)

// DefaultHistoryWindow is the number of recent turns rendered into a prompt.
const DefaultHistoryWindow = 6

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("prompt").
		Option("missingkey=zero").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// Request is everything a single prompt is projected from.
type Request struct {
	// Request is the sanitized user request.
	Request string

	// Errors switches the builder to repair mode when non-empty.
	Errors []domain.ValidationError

	// PriorCode is the artifact that produced Errors.
	PriorCode string

	// BaseCode is an existing component the request refines.
	BaseCode string

	History []domain.ConversationTurn
}

// Prompt is a rendered system + user message pair.
type Prompt struct {
	Mode   domain.Mode
	System string
	User   string
}

// Builder renders prompts for one design system. It is safe for concurrent use.
type Builder struct {
	name        string
	tokens      string
	allowed     string
	sampleColor string
	rules       []string
	window      int
}

// Option configures a Builder.
type Option func(*Builder)

// WithHistoryWindow sets how many recent turns are rendered. 0 disables history.
func WithHistoryWindow(n int) Option {
	return func(b *Builder) {
		b.window = n
	}
}

// New creates a Builder for ds.
func New(ds *domain.DesignSystem, opts ...Option) (*Builder, error) {
	tokens, err := json.MarshalIndent(tokenView(ds), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode design tokens: %w", err)
	}

	allowed := ds.AllowedColors()
	b := &Builder{
		name:    ds.Name,
		tokens:  string(tokens),
		allowed: strings.Join(allowed, ", "),
		rules:   ds.Rules,
		window:  DefaultHistoryWindow,
	}
	if len(allowed) > 0 {
		b.sampleColor = allowed[0]
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

type params struct {
	Name        string
	Tokens      string
	Allowed     string
	SampleColor string
	Rules       []string
	Request     string
	Errors      []domain.ValidationError
	PriorCode   string
	BaseCode    string
	History     []domain.ConversationTurn
}

// Build renders the prompt for req.
func (b *Builder) Build(req Request) (Prompt, error) {
	p := params{
		Name:        b.name,
		Tokens:      b.tokens,
		Allowed:     b.allowed,
		SampleColor: b.sampleColor,
		Rules:       b.rules,
		Request:     req.Request,
		Errors:      req.Errors,
		PriorCode:   req.PriorCode,
		BaseCode:    req.BaseCode,
		History:     b.windowed(req.History),
	}

	mode := domain.ModeGenerate
	systemTpl, userTpl := "generate_system.tmpl", "generate_user.tmpl"
	if len(req.Errors) > 0 {
		mode = domain.ModeRepair
		systemTpl, userTpl = "repair_system.tmpl", "repair_user.tmpl"
	}

	system, err := render(systemTpl, p)
	if err != nil {
		return Prompt{}, err
	}
	user, err := render(userTpl, p)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Mode: mode, System: system, User: user}, nil
}

func (b *Builder) windowed(history []domain.ConversationTurn) []domain.ConversationTurn {
	if b.window <= 0 {
		return nil
	}
	if len(history) > b.window {
		return history[len(history)-b.window:]
	}
	return history
}

func render(name string, p params) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, p); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// tokenView is the part of the design system shown to the model.
func tokenView(ds *domain.DesignSystem) map[string]any {
	view := map[string]any{"colors": ds.Colors}
	for k, v := range map[string]map[string]any{
		"typography": ds.Typography,
		"radius":     ds.Radius,
		"spacing":    ds.Spacing,
		"effects":    ds.Effects,
	} {
		if len(v) > 0 {
			view[k] = v
		}
	}
	for k, v := range ds.Extra {
		if _, taken := view[k]; !taken {
			view[k] = v
		}
	}
	return view
}
