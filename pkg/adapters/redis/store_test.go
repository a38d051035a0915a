package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/architect/pkg/adapters/redis"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunHistoryStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	conv := domain.NewConversation(sessionID)
	conv.Append(domain.ConversationTurn{Role: domain.RoleUser, Content: "hello"})
	require.NoError(t, store.Save(ctx, sessionID, conv))

	_, err := store.Load(ctx, sessionID)
	assert.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:"))
	require.NoError(t, store.Save(context.Background(), "s1", domain.NewConversation("s1")))

	assert.True(t, mr.Exists("custom:s1"))
	assert.False(t, mr.Exists("architect:session:s1"))
}

func TestRedisStore_SessionNamedIndex(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", domain.NewConversation("a")))
	require.NoError(t, store.Save(ctx, "index", domain.NewConversation("index")))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "index"}, ids)

	_, err = store.Load(ctx, "index")
	assert.NoError(t, err)
	assert.True(t, mr.Exists(redis.DefaultIndexKey))
}
