package domain_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/architect/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestConversation_TrimAndWindow(t *testing.T) {
	c := domain.NewConversation("s1")
	for i := 0; i < 5; i++ {
		c.Append(domain.ConversationTurn{Role: domain.RoleUser, Content: fmt.Sprint(i)})
	}

	w := c.Window(2)
	assert.Equal(t, []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "3"},
		{Role: domain.RoleUser, Content: "4"},
	}, w)

	w[0].Content = "mutated"
	assert.Equal(t, "3", c.Turns[3].Content, "window must be a copy")

	c.Trim(3)
	assert.Len(t, c.Turns, 3)
	assert.Equal(t, "2", c.Turns[0].Content)

	c.Trim(0)
	assert.Len(t, c.Turns, 3)
}

func TestConversation_LastAssistant(t *testing.T) {
	c := domain.NewConversation("s1")
	_, ok := c.LastAssistant()
	assert.False(t, ok)

	c.Append(
		domain.ConversationTurn{Role: domain.RoleUser, Content: "make a card"},
		domain.ConversationTurn{Role: domain.RoleAssistant, Content: "v1"},
		domain.ConversationTurn{Role: domain.RoleUser, Content: "make it blue"},
	)
	got, ok := c.LastAssistant()
	assert.True(t, ok)
	assert.Equal(t, "v1", got)
}

func TestComposeHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnTerminal: func(context.Context, *domain.TerminalEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnTerminal:  func(context.Context, *domain.TerminalEvent) { calls = append(calls, "b") },
		OnModelCall: func(context.Context, *domain.ModelEvent) { calls = append(calls, "b-call") },
	}

	h := domain.ComposeHooks(a, domain.LifecycleHooks{}, b)
	h.OnTerminal(context.Background(), &domain.TerminalEvent{})
	h.OnModelCall(context.Background(), &domain.ModelEvent{})
	assert.Nil(t, h.OnAttemptStart)
	assert.Equal(t, []string{"a", "b", "b-call"}, calls)
}

func TestIsFatal(t *testing.T) {
	assert.False(t, domain.IsFatal(nil))
	assert.True(t, domain.IsFatal(fmt.Errorf("wrap: %w", domain.ErrNetworkUnreachable)))
	assert.True(t, domain.IsFatal(context.Canceled))
	assert.False(t, domain.IsFatal(&domain.ProviderError{Model: "m", StatusCode: 404, Message: "nope"}))
}
