package architect

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/architect/pkg/domain"
)

// Runner drives an interactive refinement session over line-based IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer transforms generated code before it is written out.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Run reads one request per line and runs it as a turn of s until EOF,
// "exit" or "quit". Lines starting with ":" are commands: ":history" and ":reset".
func (r *Runner) Run(ctx context.Context, s *Session) error {
	if r.Input == nil {
		return errors.New("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return errors.New("output writer must be set (use os.Stdout)")
	}
	reader := bufio.NewReader(r.Input)
	w := r.Output

	if !r.Headless {
		fmt.Fprintf(w, "--- Architect (session %s) ---\n", s.ID())
		fmt.Fprintln(w, "Describe a component, refine it turn by turn. Type 'exit' to quit.")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			fmt.Fprint(w, "> ")
		}

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(line)

		switch {
		case input == "exit" || input == "quit":
			fmt.Fprintln(w, "Bye!")
			return nil
		case input == ":history":
			r.printHistory(ctx, s)
		case input == ":reset":
			if err := s.Reset(ctx); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("reset failed: %w", err)
			}
			fmt.Fprintln(w, "Session cleared.")
		case input != "":
			res, runErr := s.Run(ctx, input)
			if runErr != nil {
				return fmt.Errorf("turn failed: %w", runErr)
			}
			r.printResult(res)
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (r *Runner) printResult(res *domain.GenerationResult) {
	w := r.Output
	if !r.Headless {
		for _, l := range res.Logs {
			fmt.Fprintln(w, "  "+l)
		}
	}

	if res.Outcome == domain.OutcomeFailure {
		fmt.Fprintln(w, res.Diagnostic)
		return
	}

	out := res.Code
	if r.Renderer != nil {
		if rendered, err := r.Renderer(out); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(w, strings.TrimSpace(out))

	if !res.Success {
		fmt.Fprintf(w, "Warning: the component still has validation errors after %d attempts.\n", res.Iterations)
	}
}

func (r *Runner) printHistory(ctx context.Context, s *Session) {
	conv, err := s.History(ctx)
	if err != nil {
		fmt.Fprintln(r.Output, "No history yet.")
		return
	}
	for _, t := range conv.Turns {
		content := t.Content
		if t.Role == domain.RoleAssistant {
			content = fmt.Sprintf("<%d bytes of code>", len(content))
		}
		fmt.Fprintf(r.Output, "[%s] %s\n", t.Role, content)
	}
}
