package middleware

import (
	"fmt"
	"net/http"
	"time"

	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/ratelimit"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RateLimitMiddleware enforces the per-workspace request rate limit.
func RateLimitMiddleware(limiter *ratelimit.RedisRateLimiter, limitPerMin int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			workspaceID, ok := GetWorkspaceID(ctx)
			if !ok {
				log.Error(ctx, "workspace_id not found in context for rate limiting",
					logger.Module("http"),
					logger.Action("rate_limit"),
				)
				httperr.InternalError500(w, ctx, "workspace_id missing for rate limiting")
				return
			}

			allowed, remaining, err := limiter.AllowRequest(ctx, workspaceID, limitPerMin, 60)
			if err != nil {
				log.Error(ctx, "rate limit check failed",
					logger.Module("http"),
					logger.Action("rate_limit"),
					zap.Error(err),
				)
				httperr.InternalError500(w, ctx, "rate limit check failed")
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limitPerMin))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(60*time.Second).Unix()))

			if !allowed {
				span := trace.SpanFromContext(ctx)
				span.AddEvent("rate_limit_exceeded")

				log.Warn(ctx, "rate limit exceeded",
					logger.Module("http"),
					logger.Action("rate_limit"),
					zap.Int("limit", limitPerMin),
				)

				w.Header().Set("Retry-After", "60")
				httperr.WriteError(w, ctx, http.StatusTooManyRequests, httperr.ErrCodeRateLimited, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
