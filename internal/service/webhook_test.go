package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeTags(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		incoming []string
		want     []string
	}{
		{
			name:     "appends new tags",
			existing: []string{"vip"},
			incoming: []string{"typeform", "q3"},
			want:     []string{"vip", "typeform", "q3"},
		},
		{
			name:     "skips duplicates",
			existing: []string{"vip", "typeform"},
			incoming: []string{"typeform", "vip", "new"},
			want:     []string{"vip", "typeform", "new"},
		},
		{
			name:     "dedupes within incoming",
			existing: nil,
			incoming: []string{"a", "a", "b"},
			want:     []string{"a", "b"},
		},
		{
			name:     "both empty yields empty slice",
			existing: nil,
			incoming: nil,
			want:     []string{},
		},
		{
			name:     "preserves existing order",
			existing: []string{"z", "a"},
			incoming: []string{"a", "m"},
			want:     []string{"z", "a", "m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeTags(tt.existing, tt.incoming)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatExtraFields(t *testing.T) {
	t.Run("empty map", func(t *testing.T) {
		assert.Equal(t, "", formatExtraFields(nil))
		assert.Equal(t, "", formatExtraFields(map[string]string{}))
	})

	t.Run("sorted by key", func(t *testing.T) {
		got := formatExtraFields(map[string]string{
			"utm_source": "google",
			"budget":     "10k",
			"message":    "interested in a demo",
		})
		assert.Equal(t, "budget: 10k\nmessage: interested in a demo\nutm_source: google", got)
	})

	t.Run("single field has no trailing newline", func(t *testing.T) {
		got := formatExtraFields(map[string]string{"plan": "pro"})
		assert.Equal(t, "plan: pro", got)
	})
}
