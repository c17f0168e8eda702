package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadflow-api/internal/auth"
	"leadflow-api/internal/config"
	"leadflow-api/internal/http/handler"
	"leadflow-api/internal/http/middleware"
	"leadflow-api/internal/observability/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	log, err := logger.New("test", "error")
	require.NoError(t, err)
	return buildRouter(RouterDeps{
		Cfg: &config.Config{OTELServiceName: "test", AppEnv: "test"},
		Log: log,
	})
}

// TestHealthEndpoint verifies /health returns 200 without dependencies
func TestHealthEndpoint(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "health endpoint should return 200")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response["status"])
}

// TestHealthEndpoint_ReturnsRequestID verifies X-Request-Id header is returned
func TestHealthEndpoint_ReturnsRequestID(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID, "X-Request-Id should be generated and returned")
	assert.Contains(t, requestID, "req_", "Request ID should have req_ prefix")
}

// TestHealthEndpoint_PreservesRequestID verifies existing X-Request-Id is preserved
func TestHealthEndpoint_PreservesRequestID(t *testing.T) {
	r := testRouter(t)

	clientRequestID := "req_1234567890_abcdef123456"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", clientRequestID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.Equal(t, clientRequestID, requestID, "X-Request-Id should be preserved from request")
}

// TestHealthEndpoint_NoAuth verifies no authentication is required
func TestHealthEndpoint_NoAuth(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "health endpoint should not require auth")
}

// TestReadyEndpoint_NoPool verifies /ready reports ready when no pool is wired
func TestReadyEndpoint_NoPool(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "ready", response["status"])
}

// MockDB simulates database with ping method
type MockDB struct {
	pingError error
}

func (m *MockDB) Ping(ctx context.Context) error {
	return m.pingError
}

// TestReadyEndpoint_DatabaseUnhealthy verifies the 503 readiness contract
func TestReadyEndpoint_DatabaseUnhealthy(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)

	log, err := logger.New("leadflow-api-test", "error")
	require.NoError(t, err)

	mockDB := &MockDB{pingError: context.DeadlineExceeded}

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := mockDB.Ping(ctx); err != nil {
			log.Error(ctx, "readiness check failed: database unavailable")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","message":"database unavailable"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "ready endpoint should return 503 when DB unhealthy")

	var response map[string]string
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "error", response["status"])
	assert.Equal(t, "database unavailable", response["message"])
}

// TestProtectedRoutes_RequireAuth verifies workspace routes reject anonymous requests
func TestProtectedRoutes_RequireAuth(t *testing.T) {
	log, err := logger.New("test", "error")
	require.NoError(t, err)

	// 32-byte secret, base64-encoded
	validator, err := auth.NewHS256Validator(
		base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
		"leadflow-web", "leadflow-api", time.Minute,
	)
	require.NoError(t, err)

	r := buildRouter(RouterDeps{
		Cfg:         &config.Config{OTELServiceName: "test", AppEnv: "test"},
		Log:         log,
		Validator:   validator,
		LeadHandler: &handler.LeadHandler{},
	})

	t.Run("MissingAuthorizationHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/workspaces/ws_1/leads", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/workspaces/ws_1/leads", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("WrongScheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/workspaces/ws_1/leads", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// TestMiddlewareOrder verifies middleware chain is applied correctly
func TestMiddlewareOrder(t *testing.T) {
	var executionOrder []string

	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			executionOrder = append(executionOrder, "requestid")
			next.ServeHTTP(w, r)
		})
	})

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			executionOrder = append(executionOrder, "logging")
			next.ServeHTTP(w, r)
		})
	})

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			executionOrder = append(executionOrder, "recovery")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		executionOrder = append(executionOrder, "handler")
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	expected := []string{"requestid", "logging", "recovery", "handler"}
	assert.Equal(t, expected, executionOrder, "Middleware should execute in correct order: RequestID → Logging → Recovery → Handler")
}
