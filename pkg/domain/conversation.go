package domain

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message of a multi-turn session.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the persisted history of one session.
type Conversation struct {
	ID        string             `json:"id"`
	Turns     []ConversationTurn `json:"turns"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewConversation creates an empty history for the given session.
func NewConversation(id string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        id,
		Turns:     []ConversationTurn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds turns in order and bumps UpdatedAt.
func (c *Conversation) Append(turns ...ConversationTurn) {
	c.Turns = append(c.Turns, turns...)
	c.UpdatedAt = time.Now()
}

// Trim drops the oldest turns so that at most max remain. max <= 0 keeps everything.
func (c *Conversation) Trim(max int) {
	if max <= 0 || len(c.Turns) <= max {
		return
	}
	kept := make([]ConversationTurn, max)
	copy(kept, c.Turns[len(c.Turns)-max:])
	c.Turns = kept
}

// Window returns a copy of the newest n turns. n <= 0 returns all of them.
func (c *Conversation) Window(n int) []ConversationTurn {
	if c == nil {
		return nil
	}
	turns := c.Turns
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// LastAssistant returns the most recent assistant output, if any.
func (c *Conversation) LastAssistant() (string, bool) {
	if c == nil {
		return "", false
	}
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Role == RoleAssistant {
			return c.Turns[i].Content, true
		}
	}
	return "", false
}

// Clone returns a deep copy safe to hand to another goroutine.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Turns = make([]ConversationTurn, len(c.Turns))
	copy(cp.Turns, c.Turns)
	return &cp
}
