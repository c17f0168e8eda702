package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"leadflow-api/internal/config"
	"leadflow-api/internal/metrics"
	"leadflow-api/internal/observability/logger"

	"github.com/stretchr/testify/assert"
)

func TestMetricsEndpoint(t *testing.T) {
	log, _ := logger.New("test", "error")

	t.Run("ServedWhenMetricsWired", func(t *testing.T) {
		deps := RouterDeps{
			Cfg:     &config.Config{OTELServiceName: "test"},
			Log:     log,
			Metrics: metrics.New(),
		}
		r := buildRouter(deps)

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, w.Body.String(), "go_info")
		assert.Contains(t, w.Body.String(), "leadflow_rate_limit_rejections_total")
	})

	t.Run("NotMountedWithoutMetrics", func(t *testing.T) {
		deps := RouterDeps{
			Cfg: &config.Config{OTELServiceName: "test"},
			Log: log,
		}
		r := buildRouter(deps)

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("CountersAppearAfterIncrement", func(t *testing.T) {
		m := metrics.New()
		m.ShareViewsTotal.Inc()
		m.WebhookIngestsTotal.WithLabelValues("typeform", "created").Inc()

		deps := RouterDeps{
			Cfg:     &config.Config{OTELServiceName: "test"},
			Log:     log,
			Metrics: m,
		}
		r := buildRouter(deps)

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "leadflow_share_views_total 1")
		assert.Contains(t, w.Body.String(), `leadflow_webhook_ingests_total{result="created",source="typeform"} 1`)
	})
}
