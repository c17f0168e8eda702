package domain

import (
	"time"
)

// LeadStatus represents the lifecycle stage of a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// IsValid checks if the status is one of the defined constants.
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost:
		return true
	default:
		return false
	}
}

// LeadSource identifies where a lead originated.
type LeadSource string

const (
	LeadSourceManual   LeadSource = "manual"
	LeadSourceWebhook  LeadSource = "webhook"
	LeadSourceImport   LeadSource = "import"
	LeadSourceReferral LeadSource = "referral"
)

// Lead represents a sales lead tracked in a workspace.
type Lead struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspaceId"`
	FullName    string     `json:"fullName"`
	Email       *string    `json:"email"`
	Phone       *string    `json:"phone"`
	Company     *string    `json:"company"`
	Status      LeadStatus `json:"status"`
	Source      LeadSource `json:"source"`
	OwnerID     *string    `json:"ownerId"`
	Tags        []string   `json:"tags"`
	Notes       *string    `json:"notes"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// CreateLeadRequest is the DTO for lead creation.
type CreateLeadRequest struct {
	FullName string   `json:"fullName" validate:"required,max=200"`
	Email    *string  `json:"email" validate:"omitempty,email"`
	Phone    *string  `json:"phone" validate:"omitempty,max=40"`
	Company  *string  `json:"company" validate:"omitempty,max=200"`
	OwnerID  *string  `json:"ownerId"`
	Tags     []string `json:"tags"`
	Notes    *string  `json:"notes"`
}

// UpdateLeadRequest is the DTO for partial lead updates. Nil fields are
// left untouched.
type UpdateLeadRequest struct {
	FullName *string   `json:"fullName" validate:"omitempty,max=200"`
	Email    *string   `json:"email" validate:"omitempty,email"`
	Phone    *string   `json:"phone" validate:"omitempty,max=40"`
	Company  *string   `json:"company" validate:"omitempty,max=200"`
	OwnerID  *string   `json:"ownerId"`
	Tags     *[]string `json:"tags"`
	Notes    *string   `json:"notes"`
}

// UpdateLeadStatusRequest is the DTO for status transitions.
type UpdateLeadStatusRequest struct {
	Status LeadStatus `json:"status" validate:"required"`
}

// ListLeadsParams carries filters for lead listing.
type ListLeadsParams struct {
	WorkspaceID string
	Status      *LeadStatus
	OwnerID     *string
	Query       *string
	Cursor      *string
	Limit       int
}

// LeadListResponse wraps a page of leads with cursor metadata.
type LeadListResponse struct {
	Data []Lead `json:"data"`
	Meta struct {
		HasNextPage bool    `json:"hasNextPage"`
		NextCursor  *string `json:"nextCursor,omitempty"`
	} `json:"meta"`
}

// WebhookLeadPayload is the inbound shape accepted by the lead ingestion
// webhook. Field names follow the common form-provider conventions; the
// mapper tolerates either fullName or name.
type WebhookLeadPayload struct {
	FullName string            `json:"fullName"`
	Name     string            `json:"name"`
	Email    string            `json:"email" validate:"required,email"`
	Phone    string            `json:"phone"`
	Company  string            `json:"company"`
	Tags     []string          `json:"tags"`
	Fields   map[string]string `json:"fields"`
}

// WebhookIngestResult reports what the ingestion did with a payload.
type WebhookIngestResult struct {
	LeadID  string `json:"leadId"`
	Created bool   `json:"created"`
}
