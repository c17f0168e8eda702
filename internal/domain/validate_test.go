package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateLeadRequest_Validate(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		req := &CreateLeadRequest{
			FullName: "  Ada Lovelace  ",
			Phone:    strPtr(" +44 20 1234 "),
			Company:  strPtr("  Analytical Engines "),
		}
		require.NoError(t, req.Validate())
		assert.Equal(t, "Ada Lovelace", req.FullName)
		assert.Equal(t, "+44 20 1234", *req.Phone)
		assert.Equal(t, "Analytical Engines", *req.Company)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		req := &CreateLeadRequest{FullName: "   "}
		assert.Error(t, req.Validate())
	})

	t.Run("rejects overlong name", func(t *testing.T) {
		req := &CreateLeadRequest{FullName: strings.Repeat("a", 201)}
		assert.Error(t, req.Validate())
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		req := &CreateLeadRequest{FullName: "Ada", Email: strPtr("not-an-email")}
		assert.Error(t, req.Validate())
	})

	t.Run("nil optional fields pass", func(t *testing.T) {
		req := &CreateLeadRequest{FullName: "Ada"}
		assert.NoError(t, req.Validate())
	})
}

func TestCreateActivityRequest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := &CreateActivityRequest{
			LeadID: "lead_1",
			Type:   ActivityTypeCall,
			Title:  "  Discovery call ",
		}
		require.NoError(t, req.Validate())
		assert.Equal(t, "Discovery call", req.Title)
	})

	t.Run("missing lead id", func(t *testing.T) {
		req := &CreateActivityRequest{Type: ActivityTypeCall, Title: "x"}
		assert.Error(t, req.Validate())
	})

	t.Run("negative duration", func(t *testing.T) {
		minutes := -5
		req := &CreateActivityRequest{
			LeadID:          "lead_1",
			Type:            ActivityTypeCall,
			Title:           "x",
			DurationMinutes: &minutes,
		}
		assert.Error(t, req.Validate())
	})
}

func TestCreateTemplateRequest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := &CreateTemplateRequest{
			Name:    " Follow up ",
			Channel: TemplateChannelEmail,
			Subject: strPtr(" Hello {{ lead.fullName }} "),
			Body:    "Hi {{ lead.fullName }}",
		}
		require.NoError(t, req.Validate())
		assert.Equal(t, "Follow up", req.Name)
		assert.Equal(t, "Hello {{ lead.fullName }}", *req.Subject)
	})

	t.Run("missing body", func(t *testing.T) {
		req := &CreateTemplateRequest{Name: "x", Channel: TemplateChannelSMS}
		assert.Error(t, req.Validate())
	})
}

func TestCreateShareRequest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := &CreateShareRequest{
			LeadID: "lead_1",
			Kind:   ShareKindPage,
			Title:  " Pricing deck ",
			URL:    "https://example.com/deck",
		}
		require.NoError(t, req.Validate())
		assert.Equal(t, "Pricing deck", req.Title)
	})

	t.Run("rejects malformed url", func(t *testing.T) {
		req := &CreateShareRequest{
			LeadID: "lead_1",
			Kind:   ShareKindPage,
			Title:  "x",
			URL:    "not a url",
		}
		assert.Error(t, req.Validate())
	})
}

func TestWebhookLeadPayload_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := &WebhookLeadPayload{Email: " lead@example.com "}
		require.NoError(t, p.Validate())
		assert.Equal(t, "lead@example.com", p.Email)
	})

	t.Run("missing email", func(t *testing.T) {
		p := &WebhookLeadPayload{Name: "Ada"}
		assert.Error(t, p.Validate())
	})
}
