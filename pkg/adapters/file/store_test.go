package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/architect/pkg/adapters/file"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements HistoryStore
var _ ports.HistoryStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)

	conv := domain.NewConversation("session-1")
	conv.Append(domain.ConversationTurn{Role: domain.RoleUser, Content: "a pricing table"})
	require.NoError(t, store.Save(context.Background(), "session-1", conv))

	data, err := os.ReadFile(filepath.Join(dir, "session-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "a pricing table")

	matches, _ := filepath.Glob(filepath.Join(dir, "tmp-*"))
	assert.Empty(t, matches, "temp files must be cleaned up")
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "../escape", `a\b`, "tmp-x"} {
		err := store.Save(ctx, id, domain.NewConversation(id))
		assert.ErrorIs(t, err, file.ErrInvalidSessionID, "id %q", id)

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, file.ErrInvalidSessionID, "id %q", id)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
