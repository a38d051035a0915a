package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// It falls back to the raw text when no renderer can be created.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}

// NewCodeRenderer renders source code as a highlighted block.
func NewCodeRenderer(lang string) func(string) (string, error) {
	render := NewRenderer()
	return func(code string) (string, error) {
		return render(CodeBlock(lang, code))
	}
}

// CodeBlock wraps code in a fenced markdown block.
func CodeBlock(lang, code string) string {
	var b strings.Builder
	b.WriteString("```")
	b.WriteString(lang)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(code, "\n"))
	b.WriteString("\n```\n")
	return b.String()
}
