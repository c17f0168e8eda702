package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebhookTokenStore_Validate(t *testing.T) {
	store := NewWebhookTokenStore(map[string]string{
		"tok_landing":  "landing-page",
		"tok_typeform": "typeform",
	})

	source, ok := store.Validate("tok_landing")
	assert.True(t, ok)
	assert.Equal(t, "landing-page", source)

	source, ok = store.Validate("tok_typeform")
	assert.True(t, ok)
	assert.Equal(t, "typeform", source)
}

func TestWebhookTokenStore_RejectsUnknownToken(t *testing.T) {
	store := NewWebhookTokenStore(map[string]string{
		"tok_landing": "landing-page",
	})

	_, ok := store.Validate("tok_unknown")
	assert.False(t, ok)

	_, ok = store.Validate("")
	assert.False(t, ok)

	// Prefix of a registered token must not match.
	_, ok = store.Validate("tok_land")
	assert.False(t, ok)
}

func TestWebhookTokenStore_SkipsEmptyEntries(t *testing.T) {
	store := NewWebhookTokenStore(map[string]string{
		"":        "landing-page",
		"tok_abc": "",
		"tok_ok":  "forms",
	})

	assert.Equal(t, 1, store.Len())
	_, ok := store.Validate("tok_abc")
	assert.False(t, ok)
}
