package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Architect banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Indigo to violet, the primary and secondary of the default palette.
	lines := []struct {
		text  string
		color string
	}{
		{"     _             _     _ _            _   ", "#818cf8"},
		{"    / \\   _ __ ___| |__ (_) |_ ___  ___| |_ ", "#8b5cf6"},
		{"   / _ \\ | '__/ __| '_ \\| | __/ _ \\/ __| __|", "#a78bfa"},
		{"  / ___ \\| | | (__| | | | | ||  __/ (__| |_ ", "#c084fc"},
		{" /_/   \\_\\_|  \\___|_| |_|_|\\__\\___|\\___|\\__|", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  design-system compliant components · v"+version).Faint())
	fmt.Fprintln(w)
}
