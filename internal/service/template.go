package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"leadflow-api/internal/domain"
	"leadflow-api/internal/engagement"
	"leadflow-api/internal/messaging"
	"leadflow-api/internal/metrics"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/repo"
)

var (
	ErrInvalidChannel  = errors.New("invalid template channel")
	ErrTemplateSyntax  = errors.New("template contains invalid syntax")
	ErrTemplateRender  = errors.New("template failed to render")
	ErrSubjectNotEmail = errors.New("subject is only valid for email templates")
)

type TemplateService struct {
	templateRepo  *repo.TemplateRepository
	leadRepo      *repo.LeadRepository
	activityRepo  *repo.ActivityRepository
	auditRepo     *repo.AuditRepository
	workspaceRepo *repo.WorkspaceRepository
	scores        *engagement.ScoreStore
	catalog       *engagement.Catalog
	templates     *messaging.TemplateEngine
	metrics       *metrics.Metrics
	log           *logger.Logger
	now           Clock
}

func NewTemplateService(
	templateRepo *repo.TemplateRepository,
	leadRepo *repo.LeadRepository,
	activityRepo *repo.ActivityRepository,
	auditRepo *repo.AuditRepository,
	workspaceRepo *repo.WorkspaceRepository,
	scores *engagement.ScoreStore,
	catalog *engagement.Catalog,
	templates *messaging.TemplateEngine,
	m *metrics.Metrics,
	log *logger.Logger,
	now Clock,
) *TemplateService {
	return &TemplateService{
		templateRepo:  templateRepo,
		leadRepo:      leadRepo,
		activityRepo:  activityRepo,
		auditRepo:     auditRepo,
		workspaceRepo: workspaceRepo,
		scores:        scores,
		catalog:       catalog,
		templates:     templates,
		metrics:       m,
		log:           log,
		now:           now,
	}
}

func (s *TemplateService) getMemberRoleWithLogging(ctx context.Context, actorID, workspaceID string) (domain.Role, error) {
	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, actorID)
	if err != nil {
		s.log.Error(ctx, "failed to get member role",
			logger.Module("template"),
			logger.Action("authorization"),
			zap.String("actor_id", actorID),
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
		if errors.Is(err, repo.ErrMemberNotFound) {
			return "", ErrMemberNotFound
		}
		return "", fmt.Errorf("get member role: %w", err)
	}
	return member.Role, nil
}

// validateTemplate checks channel/subject consistency and Liquid syntax
// before a template is stored.
func (s *TemplateService) validateTemplate(channel domain.TemplateChannel, subject *string, body string) error {
	if !channel.IsValid() {
		return ErrInvalidChannel
	}
	if subject != nil && *subject != "" && channel != domain.TemplateChannelEmail {
		return ErrSubjectNotEmail
	}
	if err := s.templates.Parse(body); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateSyntax, err)
	}
	if subject != nil && *subject != "" {
		if err := s.templates.Parse(*subject); err != nil {
			return fmt.Errorf("%w: %v", ErrTemplateSyntax, err)
		}
	}
	return nil
}

// ListTemplates retrieves all templates in a workspace.
// Permission: all workspace members.
func (s *TemplateService) ListTemplates(ctx context.Context, workspaceID, actorID string) ([]domain.MessageTemplate, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	templates, err := s.templateRepo.List(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// GetTemplate retrieves a single template.
// Permission: all workspace members.
func (s *TemplateService) GetTemplate(ctx context.Context, workspaceID, templateID, actorID string) (*domain.MessageTemplate, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	template, err := s.templateRepo.Get(ctx, workspaceID, templateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return template, nil
}

// CreateTemplate stores a new template after validating its syntax.
// Permission: admin, manager, user.
func (s *TemplateService) CreateTemplate(ctx context.Context, workspaceID, actorID string, req *domain.CreateTemplateRequest) (*domain.MessageTemplate, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModifyRecords(role) {
		return nil, ErrUnauthorized
	}

	if err := s.validateTemplate(req.Channel, req.Subject, req.Body); err != nil {
		return nil, err
	}

	now := s.now()
	template := &domain.MessageTemplate{
		ID:          generateID(),
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Channel:     req.Channel,
		Subject:     req.Subject,
		Body:        req.Body,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	auditLog(ctx, s.auditRepo, s.log, "template", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "create",
		EntityType:  "template",
		EntityID:    template.ID,
		CreatedAt:   now,
	})

	return template, nil
}

// UpdateTemplate applies a partial update, re-validating syntax when the
// body or subject changes. Channel is fixed after creation.
// Permission: admin, manager, user.
func (s *TemplateService) UpdateTemplate(ctx context.Context, workspaceID, templateID, actorID string, req *domain.UpdateTemplateRequest) (*domain.MessageTemplate, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModifyRecords(role) {
		return nil, ErrUnauthorized
	}

	template, err := s.templateRepo.Get(ctx, workspaceID, templateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Subject != nil {
		template.Subject = req.Subject
	}
	if req.Body != nil {
		template.Body = *req.Body
	}

	if err := s.validateTemplate(template.Channel, template.Subject, template.Body); err != nil {
		return nil, err
	}

	template.UpdatedAt = s.now()
	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	auditLog(ctx, s.auditRepo, s.log, "template", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "update",
		EntityType:  "template",
		EntityID:    templateID,
		CreatedAt:   template.UpdatedAt,
	})

	return template, nil
}

// DeleteTemplate removes a template.
// Permission: admin, manager.
func (s *TemplateService) DeleteTemplate(ctx context.Context, workspaceID, templateID, actorID string) error {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return err
	}
	if !domain.CanDeleteRecords(role) {
		return ErrUnauthorized
	}

	if err := s.templateRepo.Delete(ctx, workspaceID, templateID); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	auditLog(ctx, s.auditRepo, s.log, "template", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "delete",
		EntityType:  "template",
		EntityID:    templateID,
		CreatedAt:   s.now(),
	})

	return nil
}

// SendTemplate renders a template for a lead and records the send as an
// automated template_sent activity. No transport happens here; the
// caller delivers the rendered message.
// Permission: admin, manager, user.
func (s *TemplateService) SendTemplate(ctx context.Context, workspaceID, templateID, actorID string, req *domain.SendTemplateRequest) (*domain.SendTemplateResult, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModifyRecords(role) {
		return nil, ErrUnauthorized
	}

	template, err := s.templateRepo.Get(ctx, workspaceID, templateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	lead, err := s.leadRepo.Get(ctx, workspaceID, req.LeadID)
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}

	message, err := s.templates.RenderMessage(template, lead)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	now := s.now()
	activity := &domain.Activity{
		ID:          generateID(),
		WorkspaceID: workspaceID,
		LeadID:      lead.ID,
		UserID:      actorID,
		Type:        domain.ActivityTypeTemplateSent,
		Title:       fmt.Sprintf("Template %q sent via %s", template.Name, template.Channel),
		Metadata: domain.TemplateSendMetadata{
			TemplateID: template.ID,
			Channel:    string(template.Channel),
		},
		Tags:             []string{},
		IsAutomated:      true,
		EngagementPoints: s.catalog.Points(domain.ActivityTypeTemplateSent),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("create template send activity: %w", err)
	}

	activities, err := s.activityRepo.ListByLead(ctx, workspaceID, lead.ID)
	if err == nil {
		s.scores.Recompute(lead.ID, activities, now)
		if s.metrics != nil {
			s.metrics.EngagementRecomputes.Inc()
		}
	}

	auditLog(ctx, s.auditRepo, s.log, "template", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "send",
		EntityType:  "template",
		EntityID:    templateID,
		Detail:      map[string]interface{}{"leadId": lead.ID, "channel": string(template.Channel)},
		CreatedAt:   now,
	})

	return &domain.SendTemplateResult{
		Message:    message,
		ActivityID: activity.ID,
	}, nil
}
