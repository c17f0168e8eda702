package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

// CachedResponse is a stored response to an idempotent request.
type CachedResponse struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Status  int               `json:"status"`
	Body    json.RawMessage   `json:"body"`
	Headers map[string]string `json:"headers"`
}

// RedisStore keeps idempotency records in Redis with a TTL, keyed by
// workspace and hashed client key.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store with the default 24h retention.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: defaultTTL}
}

// HashKey hashes a client-supplied idempotency key so raw keys never
// land in storage or logs.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (s *RedisStore) redisKey(workspaceID, keyHash string) string {
	return fmt.Sprintf("idempotency:%s:%s", workspaceID, keyHash)
}

// Check looks up a cached response. Returns nil when none exists.
func (s *RedisStore) Check(ctx context.Context, workspaceID, keyHash string) (*CachedResponse, error) {
	raw, err := s.client.Get(ctx, s.redisKey(workspaceID, keyHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	var cached CachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached response: %w", err)
	}
	return &cached, nil
}

// Store saves a response for replay within the retention window.
func (s *RedisStore) Store(ctx context.Context, workspaceID, keyHash string, resp *CachedResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode cached response: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(workspaceID, keyHash), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency result: %w", err)
	}
	return nil
}
