package cli

import (
	"context"
	"io"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/internal/presentation/tui"
)

// ChatOptions drives an interactive session.
type ChatOptions struct {
	SessionID string
	Headless  bool
	Plain     bool
}

// RunChat runs an interactive refinement loop until EOF or "exit".
func RunChat(ctx context.Context, eng *architect.Engine, opts ChatOptions, in io.Reader, out io.Writer) error {
	sess := eng.NewSession()
	if opts.SessionID != "" {
		sess = eng.Session(opts.SessionID)
	}

	runner := &architect.Runner{
		Input:    NewInterruptibleReader(in, ctx.Done()),
		Output:   out,
		Headless: opts.Headless,
	}
	if !opts.Plain && !opts.Headless {
		runner.Renderer = tui.NewCodeRenderer("typescript")
	}
	if !opts.Headless {
		tui.PrintBanner(out, architect.Version)
	}
	return HandleExecutionError(runner.Run(ctx, sess))
}
