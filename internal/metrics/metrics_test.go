package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Exposition(t *testing.T) {
	m := New()

	m.WebhookIngestsTotal.WithLabelValues("landing-page", "created").Inc()
	m.AIScoringsTotal.WithLabelValues("fallback").Inc()
	m.ShareViewsTotal.Inc()
	m.ShareViewsTotal.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `leadflow_webhook_ingests_total{result="created",source="landing-page"} 1`)
	assert.Contains(t, body, `leadflow_ai_scorings_total{result="fallback"} 1`)
	assert.Contains(t, body, "leadflow_share_views_total 2")
}

func TestMetrics_IsolatedRegistries(t *testing.T) {
	a := New()
	b := New()

	a.ShareViewsTotal.Inc()

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if strings.HasPrefix(line, "leadflow_share_views_total ") {
			assert.Equal(t, "leadflow_share_views_total 0", line)
		}
	}
}
