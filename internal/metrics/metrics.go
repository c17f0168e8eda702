package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private
// registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	WebhookIngestsTotal  *prometheus.CounterVec
	AIScoringsTotal      *prometheus.CounterVec
	ShareViewsTotal      prometheus.Counter
	RateLimitRejections  prometheus.Counter
	EngagementRecomputes prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadflow_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadflow_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		WebhookIngestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadflow_webhook_ingests_total",
			Help: "Webhook lead ingestions by source and result.",
		}, []string{"source", "result"}),
		AIScoringsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadflow_ai_scorings_total",
			Help: "AI lead scoring calls by result (model, fallback, error).",
		}, []string{"result"}),
		ShareViewsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadflow_share_views_total",
			Help: "Recorded share link opens.",
		}),
		RateLimitRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadflow_rate_limit_rejections_total",
			Help: "Requests rejected by the per-workspace rate limiter.",
		}),
		EngagementRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadflow_engagement_recomputes_total",
			Help: "Engagement score recomputations.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.WebhookIngestsTotal,
		m.AIScoringsTotal,
		m.ShareViewsTotal,
		m.RateLimitRejections,
		m.EngagementRecomputes,
	)

	return m
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
