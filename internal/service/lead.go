package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"leadflow-api/internal/domain"
	"leadflow-api/internal/engagement"
	"leadflow-api/internal/metrics"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/repo"
)

var (
	ErrInvalidLeadStatus = errors.New("invalid lead status")
)

const defaultPageSize = 50

type LeadService struct {
	leadRepo      *repo.LeadRepository
	activityRepo  *repo.ActivityRepository
	auditRepo     *repo.AuditRepository
	workspaceRepo *repo.WorkspaceRepository
	scores        *engagement.ScoreStore
	catalog       *engagement.Catalog
	metrics       *metrics.Metrics
	log           *logger.Logger
	now           Clock
}

func NewLeadService(
	leadRepo *repo.LeadRepository,
	activityRepo *repo.ActivityRepository,
	auditRepo *repo.AuditRepository,
	workspaceRepo *repo.WorkspaceRepository,
	scores *engagement.ScoreStore,
	catalog *engagement.Catalog,
	m *metrics.Metrics,
	log *logger.Logger,
	now Clock,
) *LeadService {
	return &LeadService{
		leadRepo:      leadRepo,
		activityRepo:  activityRepo,
		auditRepo:     auditRepo,
		workspaceRepo: workspaceRepo,
		scores:        scores,
		catalog:       catalog,
		metrics:       m,
		log:           log,
		now:           now,
	}
}

// getMemberRoleWithLogging wraps GetMember with authorization logging.
func (s *LeadService) getMemberRoleWithLogging(ctx context.Context, actorID, workspaceID string) (domain.Role, error) {
	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, actorID)
	if err != nil {
		s.log.Error(ctx, "failed to get member role",
			logger.Module("lead"),
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

// recomputeScore refreshes the cached engagement score for a lead from
// its full activity history.
func (s *LeadService) recomputeScore(ctx context.Context, workspaceID, leadID string) {
	activities, err := s.activityRepo.ListByLead(ctx, workspaceID, leadID)
	if err != nil {
		s.log.Error(ctx, "failed to load activities for score recompute",
			logger.Module("lead"),
			logger.Action("recompute_score"),
			zap.String("lead_id", leadID),
			zap.Error(err),
		)
		return
	}
	s.scores.Recompute(leadID, activities, s.now())
	if s.metrics != nil {
		s.metrics.EngagementRecomputes.Inc()
	}
}

// ListLeads retrieves leads with RBAC validation.
// Permission: all workspace members can list leads.
func (s *LeadService) ListLeads(ctx context.Context, workspaceID, actorID string, params domain.ListLeadsParams) (*domain.LeadListResponse, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	params.WorkspaceID = workspaceID
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = defaultPageSize
	}

	leads, nextCursor, err := s.leadRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	response := &domain.LeadListResponse{Data: leads}
	response.Meta.HasNextPage = nextCursor != ""
	if nextCursor != "" {
		response.Meta.NextCursor = &nextCursor
	}
	return response, nil
}

// GetLead retrieves a single lead.
// Permission: all workspace members.
func (s *LeadService) GetLead(ctx context.Context, workspaceID, leadID, actorID string) (*domain.Lead, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	lead, err := s.leadRepo.Get(ctx, workspaceID, leadID)
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// CreateLead creates a new lead.
// Permission: admin, manager, user.
func (s *LeadService) CreateLead(ctx context.Context, workspaceID, actorID string, req *domain.CreateLeadRequest) (*domain.Lead, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModifyRecords(role) {
		return nil, ErrUnauthorized
	}

	now := s.now()
	lead := &domain.Lead{
		ID:          generateID(),
		WorkspaceID: workspaceID,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		Status:      domain.LeadStatusNew,
		Source:      domain.LeadSourceManual,
		OwnerID:     req.OwnerID,
		Tags:        req.Tags,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if lead.Tags == nil {
		lead.Tags = []string{}
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	auditLog(ctx, s.auditRepo, s.log, "lead", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "create",
		EntityType:  "lead",
		EntityID:    lead.ID,
		CreatedAt:   now,
	})

	return lead, nil
}

// UpdateLead applies a partial update. Nil request fields are left
// untouched.
// Permission: admin, manager, user.
func (s *LeadService) UpdateLead(ctx context.Context, workspaceID, leadID, actorID string, req *domain.UpdateLeadRequest) (*domain.Lead, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModifyRecords(role) {
		return nil, ErrUnauthorized
	}

	lead, err := s.leadRepo.Get(ctx, workspaceID, leadID)
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}

	if req.FullName != nil {
		lead.FullName = *req.FullName
	}
	if req.Email != nil {
		lead.Email = req.Email
	}
	if req.Phone != nil {
		lead.Phone = req.Phone
	}
	if req.Company != nil {
		lead.Company = req.Company
	}
	if req.OwnerID != nil {
		lead.OwnerID = req.OwnerID
	}
	if req.Tags != nil {
		lead.Tags = *req.Tags
	}
	if req.Notes != nil {
		lead.Notes = req.Notes
	}
	lead.UpdatedAt = s.now()

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}

	auditLog(ctx, s.auditRepo, s.log, "lead", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "update",
		EntityType:  "lead",
		EntityID:    leadID,
		CreatedAt:   lead.UpdatedAt,
	})

	return lead, nil
}

// UpdateLeadStatus transitions a lead's status and records an automated
// status_change activity so the transition shows up in the timeline and
// the engagement history.
// Permission: admin, manager, user.
func (s *LeadService) UpdateLeadStatus(ctx context.Context, workspaceID, leadID, actorID string, req *domain.UpdateLeadStatusRequest) (*domain.Lead, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModifyRecords(role) {
		return nil, ErrUnauthorized
	}
	if !req.Status.IsValid() {
		return nil, ErrInvalidLeadStatus
	}

	lead, err := s.leadRepo.Get(ctx, workspaceID, leadID)
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}

	previous := lead.Status
	if previous == req.Status {
		return lead, nil
	}

	now := s.now()
	lead.Status = req.Status
	lead.UpdatedAt = now
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("update lead status: %w", err)
	}

	activity := &domain.Activity{
		ID:          generateID(),
		WorkspaceID: workspaceID,
		LeadID:      leadID,
		UserID:      actorID,
		Type:        domain.ActivityTypeStatusChange,
		Title:       fmt.Sprintf("Status changed from %s to %s", previous, req.Status),
		Metadata: domain.StatusChangeMetadata{
			PreviousStatus: previous,
			NewStatus:      req.Status,
		},
		Tags:             []string{},
		IsAutomated:      true,
		EngagementPoints: s.catalog.Points(domain.ActivityTypeStatusChange),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("create status change activity: %w", err)
	}

	s.recomputeScore(ctx, workspaceID, leadID)

	auditLog(ctx, s.auditRepo, s.log, "lead", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "update_status",
		EntityType:  "lead",
		EntityID:    leadID,
		Detail: map[string]interface{}{
			"previousStatus": string(previous),
			"newStatus":      string(req.Status),
		},
		CreatedAt: now,
	})

	return lead, nil
}

// DeleteLead soft deletes a lead and drops its cached engagement score.
// Permission: admin, manager.
func (s *LeadService) DeleteLead(ctx context.Context, workspaceID, leadID, actorID string) error {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return err
	}
	if !domain.CanDeleteRecords(role) {
		return ErrUnauthorized
	}

	now := s.now()
	if err := s.leadRepo.SoftDelete(ctx, workspaceID, leadID, now); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}

	s.scores.Delete(leadID)

	auditLog(ctx, s.auditRepo, s.log, "lead", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "delete",
		EntityType:  "lead",
		EntityID:    leadID,
		CreatedAt:   now,
	})

	return nil
}
