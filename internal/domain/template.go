package domain

import "time"

// TemplateChannel is the delivery channel a message template targets.
type TemplateChannel string

const (
	TemplateChannelEmail    TemplateChannel = "email"
	TemplateChannelSMS      TemplateChannel = "sms"
	TemplateChannelWhatsApp TemplateChannel = "whatsapp"
)

// IsValid checks if the channel is one of the defined constants.
func (c TemplateChannel) IsValid() bool {
	switch c {
	case TemplateChannelEmail, TemplateChannelSMS, TemplateChannelWhatsApp:
		return true
	default:
		return false
	}
}

// MessageTemplate is a reusable Liquid template for outbound messages.
// Subject is only meaningful for the email channel.
type MessageTemplate struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspaceId"`
	Name        string          `json:"name"`
	Channel     TemplateChannel `json:"channel"`
	Subject     *string         `json:"subject"`
	Body        string          `json:"body"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreateTemplateRequest is the DTO for template creation.
type CreateTemplateRequest struct {
	Name    string          `json:"name" validate:"required,max=200"`
	Channel TemplateChannel `json:"channel" validate:"required"`
	Subject *string         `json:"subject" validate:"omitempty,max=300"`
	Body    string          `json:"body" validate:"required"`
}

// UpdateTemplateRequest is the DTO for partial template updates.
type UpdateTemplateRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Subject *string `json:"subject" validate:"omitempty,max=300"`
	Body    *string `json:"body"`
}

// RenderedMessage is the result of rendering a template against a lead.
type RenderedMessage struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// SendTemplateRequest asks for a template to be rendered for a lead and
// the send recorded as an activity.
type SendTemplateRequest struct {
	LeadID string `json:"leadId" validate:"required"`
}

// SendTemplateResult carries the rendered output plus the activity that
// recorded the send.
type SendTemplateResult struct {
	Message    RenderedMessage `json:"message"`
	ActivityID string          `json:"activityId"`
}
