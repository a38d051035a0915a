package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/internal/presentation/graph"
	"github.com/aretw0/architect/internal/presentation/tui"
	"github.com/aretw0/architect/pkg/domain"
)

// DefaultOutPath is where generated code is written when --out is empty.
const DefaultOutPath = "output/generated-component.ts"

// ErrNotValid reports a run that ended without a valid artifact.
var ErrNotValid = errors.New("generated code did not pass validation")

// GenerateOptions drives a one-shot generation.
type GenerateOptions struct {
	Prompt    string
	PriorPath string
	OutPath   string
	JSON      bool
	Render    bool
	Trace     bool
}

// RunGenerate runs one request and prints the result to w.
// It returns the result even when the run did not succeed.
func RunGenerate(ctx context.Context, eng *architect.Engine, opts GenerateOptions, w io.Writer) (*domain.GenerationResult, error) {
	req := domain.GenerateRequest{Prompt: opts.Prompt}
	if opts.PriorPath != "" {
		data, err := os.ReadFile(opts.PriorPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read prior code: %w", err)
		}
		req.PriorCode = string(data)
	}

	res := eng.Generate(ctx, req)

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return res, err
		}
	} else {
		printResult(w, res, opts.Render)
	}

	if opts.Trace {
		fmt.Fprintln(w)
		fmt.Fprintln(w, tui.CodeBlock("mermaid", graph.RunTrace(res)))
	}

	if res.Outcome == domain.OutcomeFailure {
		return res, res.Err
	}

	if opts.OutPath != "" {
		if err := writeArtifact(opts.OutPath, res.Code); err != nil {
			return res, err
		}
		if !opts.JSON {
			printSystemMessage(w, "Code written to %s", opts.OutPath)
		}
	}

	if !res.Success {
		return res, ErrNotValid
	}
	return res, nil
}

func printResult(w io.Writer, res *domain.GenerationResult, render bool) {
	for _, line := range res.Logs {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	if res.Outcome == domain.OutcomeFailure {
		fmt.Fprintln(w, res.Diagnostic)
		return
	}

	out := res.Code
	if render {
		if rendered, err := tui.NewCodeRenderer("typescript")(res.Code); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(w, out)

	if !res.Success {
		printSystemMessage(w, "Warning: the code still has validation errors after %d attempts.", res.Iterations)
	}
}

func writeArtifact(path, code string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
