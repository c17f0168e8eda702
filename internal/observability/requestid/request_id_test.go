package requestid_test

import (
	"context"
	"strings"
	"testing"

	"leadflow-api/internal/observability/requestid"
)

func TestNew_Format(t *testing.T) {
	id := requestid.New()

	if !strings.HasPrefix(id, "req_") {
		t.Errorf("expected ID to start with 'req_', got: %s", id)
	}

	parts := strings.Split(id, "_")
	if len(parts) != 3 {
		t.Errorf("expected ID to have 3 parts separated by '_', got: %d parts", len(parts))
	}

	if len(id) < 30 {
		t.Errorf("expected ID length >= 30, got: %d", len(id))
	}
}

func TestNew_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	const count = 1000

	for i := 0; i < count; i++ {
		id := requestid.New()
		if ids[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestGet_EmptyContext(t *testing.T) {
	if id := requestid.Get(context.Background()); id != "" {
		t.Errorf("expected empty string for empty context, got: %s", id)
	}
}

func TestSet_AndGet(t *testing.T) {
	ctx := requestid.Set(context.Background(), "test-req-123")

	if got := requestid.Get(ctx); got != "test-req-123" {
		t.Errorf("Get() = %q, want %q", got, "test-req-123")
	}
}
