package engagement

import "leadflow-api/internal/domain"

// TypeConfig describes one activity type: the points it awards and which
// optional fields are meaningful for it.
type TypeConfig struct {
	ID               domain.ActivityType `json:"id"`
	Name             string              `json:"name"`
	EngagementPoints int                 `json:"engagementPoints"`
	AllowDuration    bool                `json:"allowDuration"`
	AllowOutcome     bool                `json:"allowOutcome"`
	AllowFiles       bool                `json:"allowFiles"`
}

// Catalog is the static type configuration map. Order is stable so
// listings and stats enumerate types deterministically.
type Catalog struct {
	order   []domain.ActivityType
	configs map[domain.ActivityType]TypeConfig
}

// NewCatalog builds a catalog from configs, preserving their order.
func NewCatalog(configs []TypeConfig) *Catalog {
	c := &Catalog{
		order:   make([]domain.ActivityType, 0, len(configs)),
		configs: make(map[domain.ActivityType]TypeConfig, len(configs)),
	}
	for _, cfg := range configs {
		if _, dup := c.configs[cfg.ID]; dup {
			continue
		}
		c.order = append(c.order, cfg.ID)
		c.configs[cfg.ID] = cfg
	}
	return c
}

// Get returns the config for a type.
func (c *Catalog) Get(t domain.ActivityType) (TypeConfig, bool) {
	cfg, ok := c.configs[t]
	return cfg, ok
}

// Points returns the engagement points for a type, 0 for unknown types.
func (c *Catalog) Points(t domain.ActivityType) int {
	return c.configs[t].EngagementPoints
}

// Types returns all type ids in catalog order.
func (c *Catalog) Types() []domain.ActivityType {
	out := make([]domain.ActivityType, len(c.order))
	copy(out, c.order)
	return out
}

// Configs returns all configs in catalog order.
func (c *Catalog) Configs() []TypeConfig {
	out := make([]TypeConfig, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.configs[t])
	}
	return out
}

// Len returns the number of configured types.
func (c *Catalog) Len() int {
	return len(c.order)
}

// DefaultCatalog returns the standard LeadFlow type configuration.
func DefaultCatalog() *Catalog {
	return NewCatalog([]TypeConfig{
		{ID: domain.ActivityTypeCall, Name: "Call", EngagementPoints: 10, AllowDuration: true, AllowOutcome: true},
		{ID: domain.ActivityTypeEmail, Name: "Email", EngagementPoints: 5, AllowOutcome: true},
		{ID: domain.ActivityTypeSMS, Name: "SMS", EngagementPoints: 3, AllowOutcome: true},
		{ID: domain.ActivityTypeWhatsApp, Name: "WhatsApp", EngagementPoints: 4, AllowOutcome: true},
		{ID: domain.ActivityTypeMeeting, Name: "Meeting", EngagementPoints: 15, AllowDuration: true, AllowOutcome: true},
		{ID: domain.ActivityTypeNote, Name: "Note", EngagementPoints: 2},
		{ID: domain.ActivityTypeStatusChange, Name: "Status change", EngagementPoints: 1},
		{ID: domain.ActivityTypeTemplateSent, Name: "Template sent", EngagementPoints: 3},
		{ID: domain.ActivityTypeFileShared, Name: "File shared", EngagementPoints: 5, AllowFiles: true},
		{ID: domain.ActivityTypePageView, Name: "Page view", EngagementPoints: 7},
	})
}
