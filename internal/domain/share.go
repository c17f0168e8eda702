package domain

import "time"

// ShareKind distinguishes what a share exposes.
type ShareKind string

const (
	ShareKindFile ShareKind = "file"
	ShareKindPage ShareKind = "page"
)

// IsValid checks if the kind is one of the defined constants.
func (k ShareKind) IsValid() bool {
	return k == ShareKindFile || k == ShareKindPage
}

// Share is a public link to a file or page, tied to a lead so opens can
// be attributed as engagement.
type Share struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	LeadID      string    `json:"leadId"`
	Kind        ShareKind `json:"kind"`

	// ShareKey is the opaque token in the public URL.
	ShareKey string `json:"shareKey"`

	Title string `json:"title"`

	// URL is the target the public endpoint redirects to (page kind) or
	// the download location (file kind).
	URL string `json:"url"`

	FileName  *string    `json:"fileName"`
	CreatedBy string     `json:"createdBy"`
	ExpiresAt *time.Time `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Expired reports whether the share is past its expiry at the given time.
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// ShareView is one recorded open of a share.
type ShareView struct {
	ID        string    `json:"id"`
	ShareID   string    `json:"shareId"`
	ViewedAt  time.Time `json:"viewedAt"`
	UserAgent *string   `json:"userAgent"`
	Referer   *string   `json:"referer"`
}

// CreateShareRequest is the DTO for share creation.
type CreateShareRequest struct {
	LeadID    string     `json:"leadId" validate:"required"`
	Kind      ShareKind  `json:"kind" validate:"required"`
	Title     string     `json:"title" validate:"required,max=300"`
	URL       string     `json:"url" validate:"required,url"`
	FileName  *string    `json:"fileName" validate:"omitempty,max=300"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// ShareViewsByDay is one day's view count for share analytics.
type ShareViewsByDay struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// ShareAnalytics aggregates view history for a share.
type ShareAnalytics struct {
	ShareID    string            `json:"shareId"`
	TotalViews int               `json:"totalViews"`
	LastViewed *time.Time        `json:"lastViewed"`
	ViewsByDay []ShareViewsByDay `json:"viewsByDay"`
}
