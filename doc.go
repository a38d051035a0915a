/*
Package architect turns natural-language requests into UI components that
comply with a design system.

It drives an iterative "generate → lint → repair" loop against an external
code-generating model: the request is sanitized, rendered into a prompt that
carries the design tokens, sent to an ordered cascade of models, cleaned and
validated by a deterministic linter (bracket balance, required markers and a
closed palette of colors). Validation failures are folded into a repair
prompt until the artifact passes or the attempt budget is spent.

# Usage

	client, err := openai.New(os.Getenv("OPENAI_API_KEY"))
	if err != nil {
		log.Fatal(err)
	}

	eng, err := architect.New(
		architect.WithCompleter(client),
		architect.WithModels("gpt-4o-mini", "gpt-4o"),
	)
	if err != nil {
		log.Fatal(err)
	}

	res := eng.Generate(ctx, domain.GenerateRequest{Prompt: "a login card"})
	if !res.Success {
		log.Println(res.Logs)
	}
	fmt.Println(res.Code)

# Sessions

A Session keeps the conversation so follow-up requests refine the last
component. History is stored through a ports.HistoryStore (memory, file or
Redis adapters) and serialised per session by pkg/session.

	s := eng.Session("user-42")
	res, err := s.Run(ctx, "a pricing card")
	res, err = s.Run(ctx, "make the primary button larger")

# Outcomes

Every run ends in one of three outcomes: success, exhausted (the last code is
returned with success=false) or failure (a fatal condition such as a prompt
injection or an unreachable model service; the diagnostic replaces the code).
*/
package architect
