package requestid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// New generates a request ID of the form req_<unix-ms>_<hex>. The
// timestamp prefix keeps IDs roughly sortable in log searches.
func New() string {
	timestamp := time.Now().UnixMilli()

	randomBytes := make([]byte, 10)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Sprintf("req_%d", timestamp)
	}

	return fmt.Sprintf("req_%d_%s", timestamp, hex.EncodeToString(randomBytes))
}

// Get retrieves the request ID from context, empty if none was set.
func Get(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// Set stores a request ID in the context.
func Set(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}
