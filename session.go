package architect

import (
	"context"

	"github.com/aretw0/architect/internal/runtime"
	"github.com/aretw0/architect/pkg/domain"
)

// Session is a handle on one multi-turn conversation. Turns of the same
// session are serialised; different sessions run in parallel.
type Session struct {
	engine *Engine
	id     string
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Run executes one turn. The last assistant output of the session is the
// component being refined, and the stored history is rendered as context.
//
// On success or exhaustion the sanitized request and the final output are
// appended to the history in one save; repair iterations are never stored.
// A fatal outcome leaves the history untouched. The returned error reports
// persistence problems only.
func (s *Session) Run(ctx context.Context, prompt string) (*domain.GenerationResult, error) {
	var rep runtime.Report
	err := s.engine.sessions.Update(ctx, s.id, func(ctx context.Context, conv *domain.Conversation) (bool, error) {
		base, _ := conv.LastAssistant()
		rep = s.engine.orch.Run(ctx, runtime.Input{
			Prompt:    prompt,
			PriorCode: base,
			History:   conv.Turns,
		})
		if isFatal(rep.Result) {
			return false, nil
		}
		conv.Append(
			domain.ConversationTurn{Role: domain.RoleUser, Content: rep.Prompt},
			domain.ConversationTurn{Role: domain.RoleAssistant, Content: rep.Result.Code},
		)
		return true, nil
	})
	if rep.Result != nil {
		s.engine.record(ctx, s.id, prompt, rep)
	}
	return rep.Result, err
}

// History returns the stored conversation.
func (s *Session) History(ctx context.Context) (*domain.Conversation, error) {
	return s.engine.sessions.Load(ctx, s.id)
}

// Reset deletes the stored conversation.
func (s *Session) Reset(ctx context.Context) error {
	return s.engine.sessions.Delete(ctx, s.id)
}
