package idempotency

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client)
}

func TestHashKey_Deterministic(t *testing.T) {
	a := HashKey("key-1")
	b := HashKey("key-1")
	c := HashKey("key-2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestStore_CheckMiss(t *testing.T) {
	store := newTestStore(t)

	cached, err := store.Check(context.Background(), "ws-1", HashKey("never-seen"))
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	keyHash := HashKey("create-lead-1")

	resp := &CachedResponse{
		Method:  "POST",
		Path:    "/v1/workspaces/ws-1/leads",
		Status:  201,
		Body:    json.RawMessage(`{"ok":true,"data":{"id":"lead-1"}}`),
		Headers: map[string]string{"Content-Type": "application/json"},
	}
	require.NoError(t, store.Store(ctx, "ws-1", keyHash, resp))

	cached, err := store.Check(ctx, "ws-1", keyHash)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, 201, cached.Status)
	assert.JSONEq(t, string(resp.Body), string(cached.Body))
	assert.Equal(t, "application/json", cached.Headers["Content-Type"])
}

func TestStore_WorkspacesIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	keyHash := HashKey("shared-key")

	require.NoError(t, store.Store(ctx, "ws-1", keyHash, &CachedResponse{Status: 200}))

	cached, err := store.Check(ctx, "ws-2", keyHash)
	require.NoError(t, err)
	assert.Nil(t, cached, "idempotency keys are scoped per workspace")
}
