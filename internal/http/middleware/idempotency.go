package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/idempotency"
	"leadflow-api/internal/observability/logger"

	"go.uber.org/zap"
)

// IdempotencyMiddleware replays cached responses for repeated mutating
// requests carrying the same Idempotency-Key. Only 2xx responses are
// cached.
func IdempotencyMiddleware(store *idempotency.RedisStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			if len(idempotencyKey) > 255 {
				log.Warn(ctx, "idempotency key too long",
					logger.Module("http"),
					logger.Action("idempotency"),
					zap.Int("length", len(idempotencyKey)),
				)
				httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "idempotency key must be 255 characters or less")
				return
			}

			workspaceID, ok := GetWorkspaceID(ctx)
			if !ok {
				log.Error(ctx, "workspace_id not found in context for idempotency",
					logger.Module("http"),
					logger.Action("idempotency"),
				)
				httperr.InternalError500(w, ctx, "workspace_id missing for idempotency")
				return
			}

			keyHash := idempotency.HashKey(idempotencyKey)
			w.Header().Set("X-Idempotency-Key-Hash", keyHash)

			cached, err := store.Check(ctx, workspaceID, keyHash)
			if err != nil {
				log.Error(ctx, "failed to check idempotency key",
					logger.Module("http"),
					logger.Action("idempotency"),
					zap.Error(err),
				)
				httperr.InternalError500(w, ctx, "idempotency check failed")
				return
			}

			if cached != nil {
				log.Info(ctx, "returning cached response for idempotent request",
					logger.Module("http"),
					logger.Action("idempotency"),
					zap.String("key_hash", keyHash),
					zap.Int("status", cached.Status),
				)
				for k, v := range cached.Headers {
					w.Header().Set(k, v)
				}
				w.Header().Set("X-Idempotency-Replay", "true")
				w.WriteHeader(cached.Status)
				_, _ = w.Write(cached.Body)
				return
			}

			if r.Body != nil {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					httperr.InternalError500(w, ctx, "failed to read request body")
					return
				}
				r.Body = io.NopCloser(bytes.NewBuffer(body))
			}

			recorder := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(recorder, r)

			if recorder.statusCode >= 200 && recorder.statusCode < 300 {
				headers := make(map[string]string)
				for _, key := range []string{"Content-Type", "Location"} {
					if val := recorder.Header().Get(key); val != "" {
						headers[key] = val
					}
				}

				storeErr := store.Store(ctx, workspaceID, keyHash, &idempotency.CachedResponse{
					Method:  r.Method,
					Path:    r.URL.Path,
					Status:  recorder.statusCode,
					Body:    json.RawMessage(recorder.body.Bytes()),
					Headers: headers,
				})
				if storeErr != nil {
					// The response already went out; losing the cache
					// entry only weakens replay, so log and move on.
					log.Error(ctx, "failed to store idempotency result",
						logger.Module("http"),
						logger.Action("idempotency"),
						zap.Error(storeErr),
					)
				}
			}
		})
	}
}

// responseRecorder captures the response while streaming it through.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rr *responseRecorder) WriteHeader(statusCode int) {
	rr.statusCode = statusCode
	rr.ResponseWriter.WriteHeader(statusCode)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	rr.body.Write(b)
	return rr.ResponseWriter.Write(b)
}
