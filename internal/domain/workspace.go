package domain

import (
	"time"
)

// Role represents a workspace role for an actor (user or automation).
type Role string

const (
	// RoleAdmin has full access including member management.
	RoleAdmin Role = "admin"

	// RoleManager can create, read, update and delete CRM resources.
	RoleManager Role = "manager"

	// RoleUser can create and read resources but not delete them.
	RoleUser Role = "user"

	// RoleViewer has read-only access to workspace resources.
	RoleViewer Role = "viewer"
)

func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser, RoleViewer:
		return true
	default:
		return false
	}
}

// WorkspaceMember maps an actor to a workspace with an assigned role.
type WorkspaceMember struct {
	UserID      string    `json:"userId"`
	WorkspaceID string    `json:"workspaceId"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsWorkspaceMember checks if the role grants workspace access at all.
func IsWorkspaceMember(role Role) bool {
	return role.IsValid()
}

// CanModifyRecords checks if the role can create/update leads, activities,
// templates and shares. Viewers cannot.
func CanModifyRecords(role Role) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleUser
}

// CanDeleteRecords checks if the role can delete workspace records.
func CanDeleteRecords(role Role) bool {
	return role == RoleAdmin || role == RoleManager
}
