package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter implements per-workspace rate limiting with a Redis
// sliding window.
type RedisRateLimiter struct {
	client     *redis.Client
	rejections prometheus.Counter
}

// NewRedisRateLimiter creates a Redis-based rate limiter. rejections may
// be nil when metrics are disabled.
func NewRedisRateLimiter(client *redis.Client, rejections prometheus.Counter) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:     client,
		rejections: rejections,
	}
}

// AllowRequest checks if a request is allowed under the limit.
// Returns (allowed, remaining, error).
func (rl *RedisRateLimiter) AllowRequest(ctx context.Context, workspaceID string, limit int, windowSeconds int) (bool, int, error) {
	now := time.Now()
	windowStart := now.Add(-time.Duration(windowSeconds) * time.Second)

	key := fmt.Sprintf("ratelimit:workspace:%s", workspaceID)

	pipe := rl.client.Pipeline()

	// Drop entries that slid out of the window, record this request,
	// count what remains. Key expiry is double the window so idle keys
	// get cleaned up.
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixMilli()))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	countCmd := pipe.ZCount(ctx, key, "-inf", "+inf")
	pipe.Expire(ctx, key, time.Duration(windowSeconds*2)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count, err := countCmd.Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to get count: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	allowed := count <= int64(limit)
	if !allowed && rl.rejections != nil {
		rl.rejections.Inc()
	}

	return allowed, remaining, nil
}
