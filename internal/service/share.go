package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadflow-api/internal/domain"
	"leadflow-api/internal/engagement"
	"leadflow-api/internal/metrics"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/repo"
)

var (
	ErrShareExpired     = errors.New("share link has expired")
	ErrInvalidShareKind = errors.New("invalid share kind")
)

// analyticsWindowDays bounds the by-day breakdown in share analytics.
const analyticsWindowDays = 30

type ShareService struct {
	shareRepo     *repo.ShareRepository
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

func NewShareService(
	shareRepo *repo.ShareRepository,
	leadRepo *repo.LeadRepository,
	activityRepo *repo.ActivityRepository,
	auditRepo *repo.AuditRepository,
	workspaceRepo *repo.WorkspaceRepository,
	scores *engagement.ScoreStore,
	catalog *engagement.Catalog,
	m *metrics.Metrics,
	log *logger.Logger,
	now Clock,
) *ShareService {
	return &ShareService{
		shareRepo:     shareRepo,
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

func (s *ShareService) getMemberRoleWithLogging(ctx context.Context, actorID, workspaceID string) (domain.Role, error) {
	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, actorID)
	if err != nil {
		s.log.Error(ctx, "failed to get member role",
			logger.Module("share"),
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

// generateShareKey creates the opaque token embedded in public URLs.
func generateShareKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ListShares retrieves shares in a workspace, optionally scoped to one
// lead.
// Permission: all workspace members.
func (s *ShareService) ListShares(ctx context.Context, workspaceID, actorID string, leadID *string) ([]domain.Share, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	if leadID != nil {
		shares, err := s.shareRepo.ListByLead(ctx, workspaceID, *leadID)
		if err != nil {
			return nil, fmt.Errorf("list lead shares: %w", err)
		}
		return shares, nil
	}

	shares, err := s.shareRepo.List(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return shares, nil
}

// GetShare retrieves a single share.
// Permission: all workspace members.
func (s *ShareService) GetShare(ctx context.Context, workspaceID, shareID, actorID string) (*domain.Share, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	share, err := s.shareRepo.Get(ctx, workspaceID, shareID)
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}
	return share, nil
}

// CreateShare creates a public share link for a lead.
// Permission: admin, manager, user.
func (s *ShareService) CreateShare(ctx context.Context, workspaceID, actorID string, req *domain.CreateShareRequest) (*domain.Share, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModifyRecords(role) {
		return nil, ErrUnauthorized
	}
	if !req.Kind.IsValid() {
		return nil, ErrInvalidShareKind
	}

	if _, err := s.leadRepo.Get(ctx, workspaceID, req.LeadID); err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}

	now := s.now()
	share := &domain.Share{
		ID:          generateID(),
		WorkspaceID: workspaceID,
		LeadID:      req.LeadID,
		Kind:        req.Kind,
		ShareKey:    generateShareKey(),
		Title:       req.Title,
		URL:         req.URL,
		FileName:    req.FileName,
		CreatedBy:   actorID,
		ExpiresAt:   req.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("create share: %w", err)
	}

	auditLog(ctx, s.auditRepo, s.log, "share", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "create",
		EntityType:  "share",
		EntityID:    share.ID,
		Detail:      map[string]interface{}{"kind": string(req.Kind), "leadId": req.LeadID},
		CreatedAt:   now,
	})

	return share, nil
}

// DeleteShare removes a share link and its view history.
// Permission: admin, manager.
func (s *ShareService) DeleteShare(ctx context.Context, workspaceID, shareID, actorID string) error {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return err
	}
	if !domain.CanDeleteRecords(role) {
		return ErrUnauthorized
	}

	if err := s.shareRepo.Delete(ctx, workspaceID, shareID); err != nil {
		return fmt.Errorf("delete share: %w", err)
	}

	auditLog(ctx, s.auditRepo, s.log, "share", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "delete",
		EntityType:  "share",
		EntityID:    shareID,
		CreatedAt:   s.now(),
	})

	return nil
}

// GetShareAnalytics aggregates view history for a share.
// Permission: all workspace members.
func (s *ShareService) GetShareAnalytics(ctx context.Context, workspaceID, shareID, actorID string) (*domain.ShareAnalytics, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	// Scope check before touching the views table.
	if _, err := s.shareRepo.Get(ctx, workspaceID, shareID); err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}

	since := s.now().AddDate(0, 0, -analyticsWindowDays)
	analytics, err := s.shareRepo.Analytics(ctx, shareID, since)
	if err != nil {
		return nil, fmt.Errorf("share analytics: %w", err)
	}
	return analytics, nil
}

// Resolve handles a public share open: looks up the key, enforces
// expiry, records the view and logs an automated engagement activity for
// the lead. No authentication; callers only hold the opaque key.
func (s *ShareService) Resolve(ctx context.Context, shareKey string, userAgent, referer *string) (*domain.Share, error) {
	share, err := s.shareRepo.GetByShareKey(ctx, shareKey)
	if err != nil {
		return nil, fmt.Errorf("resolve share: %w", err)
	}

	now := s.now()
	if share.Expired(now) {
		return nil, ErrShareExpired
	}

	view := &domain.ShareView{
		ID:        generateID(),
		ShareID:   share.ID,
		ViewedAt:  now,
		UserAgent: userAgent,
		Referer:   referer,
	}
	if err := s.shareRepo.InsertView(ctx, view); err != nil {
		// A lost view row should not block the visitor.
		s.log.Error(ctx, "failed to record share view",
			logger.Module("share"),
			logger.Action("resolve"),
			zap.String("share_id", share.ID),
			zap.Error(err),
		)
	} else if s.metrics != nil {
		s.metrics.ShareViewsTotal.Inc()
	}

	activityType := domain.ActivityTypePageView
	title := fmt.Sprintf("Page %q viewed", share.Title)
	if share.Kind == domain.ShareKindFile {
		activityType = domain.ActivityTypeFileShared
		title = fmt.Sprintf("File %q opened", share.Title)
	}

	activity := &domain.Activity{
		ID:          generateID(),
		WorkspaceID: share.WorkspaceID,
		LeadID:      share.LeadID,
		UserID:      share.CreatedBy,
		Type:        activityType,
		Title:       title,
		Metadata: domain.ShareViewMetadata{
			ShareID: share.ID,
			URL:     share.URL,
		},
		Tags:             []string{},
		IsAutomated:      true,
		EngagementPoints: s.catalog.Points(activityType),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.log.Error(ctx, "failed to record share view activity",
			logger.Module("share"),
			logger.Action("resolve"),
			zap.String("share_id", share.ID),
			zap.Error(err),
		)
		return share, nil
	}

	activities, err := s.activityRepo.ListByLead(ctx, share.WorkspaceID, share.LeadID)
	if err == nil {
		s.scores.Recompute(share.LeadID, activities, now)
		if s.metrics != nil {
			s.metrics.EngagementRecomputes.Inc()
		}
	}

	return share, nil
}
