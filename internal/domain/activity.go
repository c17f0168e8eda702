package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActivityType represents the category of a logged lead interaction.
type ActivityType string

const (
	ActivityTypeCall         ActivityType = "call"
	ActivityTypeEmail        ActivityType = "email"
	ActivityTypeSMS          ActivityType = "sms"
	ActivityTypeWhatsApp     ActivityType = "whatsapp"
	ActivityTypeMeeting      ActivityType = "meeting"
	ActivityTypeNote         ActivityType = "note"
	ActivityTypeStatusChange ActivityType = "status_change"
	ActivityTypeTemplateSent ActivityType = "template_sent"
	ActivityTypeFileShared   ActivityType = "file_shared"
	ActivityTypePageView     ActivityType = "page_view"
)

// IsValid checks if the type is one of the defined constants.
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTypeCall, ActivityTypeEmail, ActivityTypeSMS, ActivityTypeWhatsApp,
		ActivityTypeMeeting, ActivityTypeNote, ActivityTypeStatusChange,
		ActivityTypeTemplateSent, ActivityTypeFileShared, ActivityTypePageView:
		return true
	default:
		return false
	}
}

// IsOutboundChannel reports whether the type is a direct outbound contact
// channel. Response rate is computed over these.
func (t ActivityType) IsOutboundChannel() bool {
	switch t {
	case ActivityTypeCall, ActivityTypeEmail, ActivityTypeSMS, ActivityTypeWhatsApp:
		return true
	default:
		return false
	}
}

// Outcome represents the result of a completed interaction.
type Outcome string

const (
	OutcomeSuccessful        Outcome = "successful"
	OutcomeNoAnswer          Outcome = "no_answer"
	OutcomeBusy              Outcome = "busy"
	OutcomeVoicemail         Outcome = "voicemail"
	OutcomeCallbackRequested Outcome = "callback_requested"
	OutcomeInterested        Outcome = "interested"
	OutcomeNotInterested     Outcome = "not_interested"
	OutcomeConverted         Outcome = "converted"
)

// IsValid checks if the outcome is one of the defined constants.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccessful, OutcomeNoAnswer, OutcomeBusy, OutcomeVoicemail,
		OutcomeCallbackRequested, OutcomeInterested, OutcomeNotInterested, OutcomeConverted:
		return true
	default:
		return false
	}
}

// Metadata is the tagged union of type-specific activity payloads. Each
// variant carries only the fields meaningful for its activity type.
type Metadata interface {
	metadataVariant()
}

// CallMetadata is attached to call activities.
type CallMetadata struct {
	ResponseReceived bool `json:"responseReceived"`
}

// MessageMetadata is attached to email/sms/whatsapp activities.
type MessageMetadata struct {
	TemplateID       *string `json:"templateId,omitempty"`
	Opened           bool    `json:"opened"`
	ResponseReceived bool    `json:"responseReceived"`
}

// StatusChangeMetadata is attached to automated status_change activities.
type StatusChangeMetadata struct {
	PreviousStatus LeadStatus `json:"previousStatus"`
	NewStatus      LeadStatus `json:"newStatus"`
}

// TemplateSendMetadata is attached to automated template_sent activities.
type TemplateSendMetadata struct {
	TemplateID string `json:"templateId"`
	Channel    string `json:"channel"`
}

// ShareViewMetadata is attached to automated page_view and file_shared
// activities recorded when shared content is opened.
type ShareViewMetadata struct {
	ShareID string `json:"shareId"`
	URL     string `json:"url,omitempty"`
}

func (CallMetadata) metadataVariant()         {}
func (MessageMetadata) metadataVariant()      {}
func (StatusChangeMetadata) metadataVariant() {}
func (TemplateSendMetadata) metadataVariant() {}
func (ShareViewMetadata) metadataVariant()    {}

// EncodeMetadata serializes a metadata variant for storage. Nil metadata
// encodes as nil.
func EncodeMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// DecodeMetadata deserializes stored metadata into the variant that
// belongs to the given activity type. Unknown or empty payloads decode
// to nil without error: old rows may predate the metadata they lack.
func DecodeMetadata(t ActivityType, raw []byte) (Metadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	switch t {
	case ActivityTypeCall:
		var m CallMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode call metadata: %w", err)
		}
		return m, nil
	case ActivityTypeEmail, ActivityTypeSMS, ActivityTypeWhatsApp:
		var m MessageMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode message metadata: %w", err)
		}
		return m, nil
	case ActivityTypeStatusChange:
		var m StatusChangeMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode status change metadata: %w", err)
		}
		return m, nil
	case ActivityTypeTemplateSent:
		var m TemplateSendMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode template send metadata: %w", err)
		}
		return m, nil
	case ActivityTypeFileShared, ActivityTypePageView:
		var m ShareViewMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode share view metadata: %w", err)
		}
		return m, nil
	default:
		return nil, nil
	}
}

// Activity represents a single logged interaction with a lead.
type Activity struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspaceId"`
	LeadID      string       `json:"leadId"`
	UserID      string       `json:"userId"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Outcome     *Outcome     `json:"outcome"`

	// DurationMinutes is only meaningful for types whose catalog config
	// allows duration.
	DurationMinutes *int `json:"durationMinutes"`

	ScheduledFor *time.Time `json:"scheduledFor"`
	CompletedAt  *time.Time `json:"completedAt"`

	Metadata Metadata `json:"metadata,omitempty"`

	Tags        []string `json:"tags"`
	IsAutomated bool     `json:"isAutomated"`

	// EngagementPoints is copied from the type catalog at creation time
	// and never changes afterwards, so historical scores stay stable when
	// the catalog is retuned.
	EngagementPoints int `json:"engagementPoints"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResponseReceived reports whether the lead responded to this activity,
// either via the channel metadata flag or a successful outcome.
func (a *Activity) ResponseReceived() bool {
	switch m := a.Metadata.(type) {
	case CallMetadata:
		if m.ResponseReceived {
			return true
		}
	case MessageMetadata:
		if m.ResponseReceived {
			return true
		}
	}
	return a.Outcome != nil && *a.Outcome == OutcomeSuccessful
}

// CreateActivityRequest is the DTO for manual activity logging. Metadata
// arrives as raw JSON and is decoded against the declared type.
type CreateActivityRequest struct {
	LeadID          string          `json:"leadId" validate:"required"`
	Type            ActivityType    `json:"type" validate:"required"`
	Title           string          `json:"title" validate:"required,max=300"`
	Description     *string         `json:"description"`
	Outcome         *Outcome        `json:"outcome"`
	DurationMinutes *int            `json:"durationMinutes" validate:"omitempty,gte=0"`
	ScheduledFor    *time.Time      `json:"scheduledFor"`
	CompletedAt     *time.Time      `json:"completedAt"`
	Metadata        json.RawMessage `json:"metadata"`
	Tags            []string        `json:"tags"`

	// EngagementPoints optionally overrides the catalog value at creation
	// time. Nil means "use the catalog".
	EngagementPoints *int `json:"engagementPoints" validate:"omitempty,gte=0"`
}

// UpdateActivityRequest is the DTO for activity edits. Type and
// engagement points are immutable after creation and deliberately absent.
type UpdateActivityRequest struct {
	Title       *string   `json:"title" validate:"omitempty,max=300"`
	Description *string   `json:"description"`
	Outcome     *Outcome  `json:"outcome"`
	Tags        *[]string `json:"tags"`
}

// ListActivitiesParams carries filters for activity listing.
type ListActivitiesParams struct {
	WorkspaceID string
	LeadID      *string
	Type        *ActivityType
	Cursor      *string
	Limit       int
}

// ActivityListResponse wraps a page of activities with cursor metadata.
type ActivityListResponse struct {
	Data []Activity `json:"data"`
	Meta struct {
		HasNextPage bool    `json:"hasNextPage"`
		NextCursor  *string `json:"nextCursor,omitempty"`
	} `json:"meta"`
}
