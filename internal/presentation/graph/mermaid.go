package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/architect/pkg/domain"
)

// RunTrace produces a Mermaid flowchart of one generation run: every attempt
// with its mode and model, the validation verdict and the terminal outcome.
//
// Shapes:
// - Request and outcome: ((Circle))
// - Attempt: [/Parallelogram/]
// - Validation: {Rhombus}
func RunTrace(res *domain.GenerationResult) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    request((\"request\"))\n")

	prev := "request"
	for _, a := range res.Attempts {
		attemptID := fmt.Sprintf("attempt_%d", a.Iteration)
		checkID := fmt.Sprintf("check_%d", a.Iteration)

		label := fmt.Sprintf("%d · %s", a.Iteration, a.Mode)
		if a.Model != "" {
			label += " <br/> " + escape(a.Model)
		}
		sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", attemptID, label))

		verdict := "valid"
		if n := len(a.Errors); n > 0 {
			verdict = fmt.Sprintf("%d errors", n)
		}
		sb.WriteString(fmt.Sprintf("    %s{\"%s\"}\n", checkID, verdict))

		arrow := "-->"
		if prev != "request" {
			arrow = "-- \"repair\" -->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", prev, arrow, attemptID))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", attemptID, checkID))
		prev = checkID
	}

	outcome := string(res.Outcome)
	if outcome == "" {
		outcome = "unknown"
	}
	sb.WriteString(fmt.Sprintf("    outcome((\"%s\"))\n", outcome))
	if res.Outcome == domain.OutcomeFailure && res.Diagnostic != "" {
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> outcome\n", prev, escape(truncate(res.Diagnostic, 60))))
	} else {
		sb.WriteString(fmt.Sprintf("    %s --> outcome\n", prev))
	}

	sb.WriteString("\n    %% Outcome Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef ok fill:#dcfce7,stroke:#15803d,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef bad fill:#fee2e2,stroke:#b91c1c,stroke-width:2px,color:#000;\n")
	for _, a := range res.Attempts {
		class := "ok"
		if len(a.Errors) > 0 {
			class = "bad"
		}
		sb.WriteString(fmt.Sprintf("    class check_%d %s;\n", a.Iteration, class))
	}
	if res.Success {
		sb.WriteString("    class outcome ok;\n")
	} else {
		sb.WriteString("    class outcome bad;\n")
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
