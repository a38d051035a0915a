package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/architect/pkg/adapters/memory"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunHistoryStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	conv := domain.NewConversation("s")
	conv.Append(domain.ConversationTurn{Role: domain.RoleUser, Content: "a"})
	require.NoError(t, store.Save(ctx, "s", conv))

	conv.Turns[0].Content = "mutated"
	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.Turns[0].Content)
}
