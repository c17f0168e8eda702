package httperr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadflow-api/internal/observability/logger"
)

func testContext() context.Context {
	log, _ := logger.New("test", "error")
	return logger.SetLoggerInContext(context.Background(), log)
}

func TestWriteError(t *testing.T) {
	ctx := testContext()

	tests := []struct {
		name    string
		status  int
		code    string
		message string
	}{
		{"401 Unauthorized", http.StatusUnauthorized, ErrCodeInvalidToken, "token is invalid"},
		{"403 Forbidden", http.StatusForbidden, ErrCodeWorkspaceMismatch, "workspace mismatch"},
		{"404 Not Found", http.StatusNotFound, ErrCodeNotFound, "lead not found"},
		{"429 Too Many Requests", http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, ctx, tt.status, tt.code, tt.message)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.OK {
				t.Error("expected ok=false")
			}
			if resp.Error == nil {
				t.Fatal("expected error detail")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.code)
			}
			if resp.Error.Message != tt.message {
				t.Errorf("message = %q, want %q", resp.Error.Message, tt.message)
			}
		})
	}
}

func TestWriteErrorWithFields(t *testing.T) {
	ctx := testContext()
	rec := httptest.NewRecorder()

	fields := map[string]string{"email": "must be a valid email address"}
	BadRequest400WithFields(rec, ctx, ErrCodeValidationError, "validation failed", fields)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Fields["email"] != fields["email"] {
		t.Errorf("fields = %v, want %v", resp.Error.Fields, fields)
	}
}

func TestInternalError500HidesDetails(t *testing.T) {
	ctx := testContext()
	rec := httptest.NewRecorder()

	InternalError500(rec, ctx, "pgx: connection refused")

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Message != "Internal Server Error" {
		t.Errorf("message = %q, internal details must not leak", resp.Error.Message)
	}
	if resp.Error.Code != ErrCodeInternalError {
		t.Errorf("code = %q, want %q", resp.Error.Code, ErrCodeInternalError)
	}
}
