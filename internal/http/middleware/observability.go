package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/metrics"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/observability/requestid"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RequestIDMiddleware reads or generates a request ID, propagates it in
// the context and echoes it back in the X-Request-Id response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = requestid.New()
		}

		ctx := requestid.Set(r.Context(), reqID)
		w.Header().Set("X-Request-Id", reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLoggingMiddleware logs one entry per request at completion,
// with status and latency. Bodies and sensitive headers are never
// logged.
func RequestLoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := logger.SetLoggerInContext(r.Context(), log)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			log.Info(ctx, "http request completed",
				logger.Module("http"),
				logger.Action("request"),
				zap.String("method", r.Method),
				zap.String("route", routePattern(r)),
				zap.String("path", r.URL.Path),
				zap.String("query", truncate(r.URL.RawQuery, 200)),
				zap.Int("status", wrapped.statusCode),
				zap.Float64("latency_ms", float64(time.Since(start).Milliseconds())),
				zap.String("remote_addr", stripPort(r.RemoteAddr)),
				zap.String("user_agent", truncate(r.UserAgent(), 100)),
			)
		})
	}
}

// RecoveryMiddleware recovers from panics, logs the stack trace and
// returns a standardized 500.
func RecoveryMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					ctx := r.Context()
					log.Error(ctx, "panic_recovered",
						logger.Module("http"),
						logger.Action("panic_recovery"),
						zap.Any("panic", err),
						zap.String("stack", string(debug.Stack())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("route", routePattern(r)),
					)
					httperr.InternalError500(w, ctx, fmt.Sprintf("panic: %v", err))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware records request counts and latency per route.
func MetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			route := routePattern(r)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

// stripPort removes the port from a remote address for log hygiene.
func stripPort(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}

// routePattern extracts the chi route pattern, falling back to the path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
