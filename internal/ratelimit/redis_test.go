package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) *RedisRateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRateLimiter(client, nil)
}

func TestAllowRequest_UnderLimit(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, _, err := limiter.AllowRequest(ctx, "ws-1", 10, 60)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i)
	}
}

func TestAllowRequest_OverLimit(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()

	limit := 3
	for i := 0; i < limit; i++ {
		allowed, _, err := limiter.AllowRequest(ctx, "ws-1", limit, 60)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, remaining, err := limiter.AllowRequest(ctx, "ws-1", limit, 60)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
}

func TestAllowRequest_WorkspacesIsolated(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()

	limit := 2
	for i := 0; i <= limit; i++ {
		limiter.AllowRequest(ctx, "ws-1", limit, 60)
	}

	// Exhausting ws-1 must not affect ws-2.
	allowed, _, err := limiter.AllowRequest(ctx, "ws-2", limit, 60)
	require.NoError(t, err)
	assert.True(t, allowed)
}
