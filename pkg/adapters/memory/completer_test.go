package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/architect/pkg/adapters/memory"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestCompleter_ScriptedOrder(t *testing.T) {
	boom := errors.New("boom")
	c := memory.NewCompleter(memory.Text("first"), memory.Fail(boom))
	c.Push(memory.Text("third"))
	ctx := context.Background()

	out, err := c.Complete(ctx, ports.CompletionRequest{Model: "a", User: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, "first", out)

	_, err = c.Complete(ctx, ports.CompletionRequest{Model: "b"})
	assert.ErrorIs(t, err, boom)

	out, _ = c.Complete(ctx, ports.CompletionRequest{Model: "c"})
	assert.Equal(t, "third", out)

	_, err = c.Complete(ctx, ports.CompletionRequest{Model: "d"})
	assert.ErrorIs(t, err, memory.ErrScriptExhausted)

	calls := c.Calls()
	assert.Len(t, calls, 4)
	assert.Equal(t, "u1", calls[0].User)
	assert.Equal(t, "d", calls[3].Model)
}

func TestCompleter_DelayHonoursContext(t *testing.T) {
	c := memory.NewCompleter(memory.Response{Text: "late", Delay: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, ports.CompletionRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAuditLog(t *testing.T) {
	log := memory.NewAuditLog()
	_ = log.Record(context.Background(), domain.AuditEntry{ID: "1"})
	_ = log.Record(context.Background(), domain.AuditEntry{ID: "2"})

	entries := log.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "2", entries[1].ID)
}
