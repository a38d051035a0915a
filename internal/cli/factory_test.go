package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/architect/internal/config"
	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_MockMemory(t *testing.T) {
	cfg := config.Default()
	stack, err := Build(context.Background(), cfg, logging.NewNop(), BuildOptions{Mock: true})
	require.NoError(t, err)
	defer stack.Close()

	assert.Nil(t, stack.Audit)
	assert.Equal(t, cfg.Model.Cascade, stack.Engine.Models())
	assert.Equal(t, 3, stack.Engine.MaxAttempts())
}

func TestBuild_MissingCredential(t *testing.T) {
	cfg := config.Default()
	_, err := Build(context.Background(), cfg, logging.NewNop(), BuildOptions{})
	assert.ErrorIs(t, err, domain.ErrCredentialMissing)
}

func TestBuild_UnknownDesignSystem(t *testing.T) {
	cfg := config.Default()
	cfg.DesignSystem = "does-not-exist.yaml"
	_, err := Build(context.Background(), cfg, logging.NewNop(), BuildOptions{Mock: true})
	assert.Error(t, err)
}

func TestBuild_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Session.Store = "redis"
	cfg.Session.RedisAddr = mr.Addr()
	cfg.Session.Audit = true
	cfg.Session.RedactPII = true

	stack, err := Build(context.Background(), cfg, logging.NewNop(), BuildOptions{Mock: true, Debug: true})
	require.NoError(t, err)
	defer stack.Close()

	ctx := context.Background()
	res, err := stack.Engine.Refine(ctx, "s1", "a login card for jane@example.com")
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.True(t, mr.Exists("architect:session:s1"))
	assert.True(t, mr.Exists("architect:index:sessions"))
	raw, err := mr.Get("architect:session:s1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "jane@example.com")

	audit, err := mr.List("architect:audit")
	require.NoError(t, err)
	assert.Len(t, audit, 1)

	ids, err := stack.Engine.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestBuild_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Session.Store = "redis"
	cfg.Session.RedisAddr = addr

	_, err := Build(context.Background(), cfg, logging.NewNop(), BuildOptions{Mock: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis unreachable")
}

func TestBuild_EncryptedFileStore(t *testing.T) {
	cfg := config.Default()
	cfg.Session.Store = "file"
	cfg.Session.Dir = t.TempDir()
	cfg.Session.EncryptionKey = strings.Repeat("k", 32)

	stack, err := Build(context.Background(), cfg, logging.NewNop(), BuildOptions{Mock: true})
	require.NoError(t, err)
	defer stack.Close()

	ctx := context.Background()
	_, err = stack.Engine.Refine(ctx, "enc", "a login card")
	require.NoError(t, err)

	// Reopening with the same key reads the plaintext back.
	store, closeStore, err := OpenStore(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer closeStore()

	var buf bytes.Buffer
	require.NoError(t, InspectSession(ctx, store, "enc", &buf))
	assert.Contains(t, buf.String(), "a login card")
}
