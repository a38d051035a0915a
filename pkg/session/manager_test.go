package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/architect/pkg/adapters/memory"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, conv *domain.Conversation) error {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	return s.Store.Save(ctx, sessionID, conv)
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	return s.Store.Load(ctx, sessionID)
}

func TestManager_AppendIsSerialised(t *testing.T) {
	store := &SlowStore{Store: memory.NewStore()}
	manager := session.NewManager(store, session.WithMaxTurns(0))
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	concurrentWrites := 10
	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			err := manager.Append(ctx, id, domain.ConversationTurn{Role: domain.RoleUser, Content: fmt.Sprint(val)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	conv, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, conv.Turns, concurrentWrites, "read-modify-write must not lose turns")
}

func TestManager_UpdateCommitAndTrim(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store, session.WithMaxTurns(3))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, manager.Append(ctx, "s", domain.ConversationTurn{Role: domain.RoleUser, Content: fmt.Sprint(i)}))
	}
	conv, err := manager.Load(ctx, "s")
	require.NoError(t, err)
	require.Len(t, conv.Turns, 3)
	assert.Equal(t, "2", conv.Turns[0].Content)
}

func TestManager_UpdateWithoutCommitPersistsNothing(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()

	err := manager.Update(ctx, "s", func(_ context.Context, conv *domain.Conversation) (bool, error) {
		conv.Append(domain.ConversationTurn{Role: domain.RoleUser, Content: "lost"})
		return false, nil
	})
	require.NoError(t, err)

	_, err = manager.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	boom := errors.New("boom")
	err = manager.Update(ctx, "s", func(context.Context, *domain.Conversation) (bool, error) {
		return true, boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = manager.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_DeleteAndList(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.Append(ctx, "a", domain.ConversationTurn{Role: domain.RoleUser, Content: "x"}))
	require.NoError(t, manager.Append(ctx, "b", domain.ConversationTurn{Role: domain.RoleUser, Content: "y"}))

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, manager.Delete(ctx, "a"))
	_, err = manager.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
