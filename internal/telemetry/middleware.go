package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMiddleware wraps the otelhttp handler, naming spans after the chi
// route pattern instead of the raw path.
func OTelMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				rctx := chi.RouteContext(r.Context())
				if rctx != nil && rctx.RoutePattern() != "" {
					return fmt.Sprintf("%s %s", r.Method, rctx.RoutePattern())
				}
				return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
			}),
		)
	}
}

// MetricsMiddleware records RED metrics (Requests, Errors, Duration)
// toward the OTLP pipeline.
func MetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			attrs := []attribute.KeyValue{
				attribute.String("method", r.Method),
				attribute.String("route", route),
				attribute.Int("status", ww.statusCode),
			}

			metrics.RequestsTotal.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			metrics.RequestDuration.Record(r.Context(), time.Since(start).Seconds(), metric.WithAttributes(attrs...))
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
