package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all request DTOs. The validator is safe for
// concurrent use and caches struct metadata.
var validate = validator.New()

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

// Validate sanitizes and validates the request.
func (r *CreateLeadRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = trimPtr(r.Phone)
	r.Company = trimPtr(r.Company)
	return validate.Struct(r)
}

// Validate sanitizes and validates the request.
func (r *UpdateLeadRequest) Validate() error {
	r.FullName = trimPtr(r.FullName)
	r.Phone = trimPtr(r.Phone)
	r.Company = trimPtr(r.Company)
	return validate.Struct(r)
}

// Validate validates the request.
func (r *UpdateLeadStatusRequest) Validate() error {
	return validate.Struct(r)
}

// Validate sanitizes and validates the request.
func (r *CreateActivityRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	return validate.Struct(r)
}

// Validate sanitizes and validates the request.
func (r *UpdateActivityRequest) Validate() error {
	r.Title = trimPtr(r.Title)
	return validate.Struct(r)
}

// Validate sanitizes and validates the request.
func (r *CreateTemplateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Subject = trimPtr(r.Subject)
	return validate.Struct(r)
}

// Validate sanitizes and validates the request.
func (r *UpdateTemplateRequest) Validate() error {
	r.Name = trimPtr(r.Name)
	r.Subject = trimPtr(r.Subject)
	return validate.Struct(r)
}

// Validate validates the request.
func (r *SendTemplateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate sanitizes and validates the request.
func (r *CreateShareRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.FileName = trimPtr(r.FileName)
	return validate.Struct(r)
}

// Validate sanitizes and validates the payload.
func (p *WebhookLeadPayload) Validate() error {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	return validate.Struct(p)
}
