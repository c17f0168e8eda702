package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/observability/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.Get(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.True(t, strings.HasPrefix(seen, "req_"))
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDMiddleware_PropagatesExistingID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.Get(r.Context())
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-Id", "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied-id", seen)
	assert.Equal(t, "client-supplied-id", rec.Header().Get("X-Request-Id"))
}

func TestRecoveryMiddleware_ConvertsPanicTo500(t *testing.T) {
	log, err := logger.New("test", "error")
	require.NoError(t, err)

	handler := RecoveryMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/anything", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestRequestLoggingMiddleware_PassesThrough(t *testing.T) {
	log, err := logger.New("test", "error")
	require.NoError(t, err)

	handler := RequestLoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/leads", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
}
