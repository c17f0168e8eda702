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
	ErrInvalidActivityType = errors.New("unknown activity type")
	ErrDurationNotAllowed  = errors.New("activity type does not accept a duration")
	ErrOutcomeNotAllowed   = errors.New("activity type does not accept an outcome")
	ErrInvalidOutcome      = errors.New("invalid activity outcome")
	ErrInvalidMetadata     = errors.New("metadata does not match activity type")
)

type ActivityService struct {
	activityRepo  *repo.ActivityRepository
	leadRepo      *repo.LeadRepository
	auditRepo     *repo.AuditRepository
	workspaceRepo *repo.WorkspaceRepository
	engine        *engagement.Engine
	scores        *engagement.ScoreStore
	metrics       *metrics.Metrics
	log           *logger.Logger
	now           Clock
}

func NewActivityService(
	activityRepo *repo.ActivityRepository,
	leadRepo *repo.LeadRepository,
	auditRepo *repo.AuditRepository,
	workspaceRepo *repo.WorkspaceRepository,
	engine *engagement.Engine,
	scores *engagement.ScoreStore,
	m *metrics.Metrics,
	log *logger.Logger,
	now Clock,
) *ActivityService {
	return &ActivityService{
		activityRepo:  activityRepo,
		leadRepo:      leadRepo,
		auditRepo:     auditRepo,
		workspaceRepo: workspaceRepo,
		engine:        engine,
		scores:        scores,
		metrics:       m,
		log:           log,
		now:           now,
	}
}

func (s *ActivityService) getMemberRoleWithLogging(ctx context.Context, actorID, workspaceID string) (domain.Role, error) {
	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, actorID)
	if err != nil {
		s.log.Error(ctx, "failed to get member role",
			logger.Module("activity"),
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

func (s *ActivityService) recomputeScore(ctx context.Context, workspaceID, leadID string) {
	activities, err := s.activityRepo.ListByLead(ctx, workspaceID, leadID)
	if err != nil {
		s.log.Error(ctx, "failed to load activities for score recompute",
			logger.Module("activity"),
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

// ListActivities retrieves activities with optional lead/type filters.
// Permission: all workspace members.
func (s *ActivityService) ListActivities(ctx context.Context, workspaceID, actorID string, params domain.ListActivitiesParams) (*domain.ActivityListResponse, error) {
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

	activities, nextCursor, err := s.activityRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	response := &domain.ActivityListResponse{Data: activities}
	response.Meta.HasNextPage = nextCursor != ""
	if nextCursor != "" {
		response.Meta.NextCursor = &nextCursor
	}
	return response, nil
}

// GetActivity retrieves a single activity.
// Permission: all workspace members.
func (s *ActivityService) GetActivity(ctx context.Context, workspaceID, activityID, actorID string) (*domain.Activity, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	activity, err := s.activityRepo.Get(ctx, workspaceID, activityID)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return activity, nil
}

// CreateActivity logs a new interaction. The type must exist in the
// catalog, optional fields are validated against the type's config, and
// engagement points are copied from the catalog unless the request
// overrides them.
// Permission: admin, manager, user.
func (s *ActivityService) CreateActivity(ctx context.Context, workspaceID, actorID string, req *domain.CreateActivityRequest) (*domain.Activity, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModifyRecords(role) {
		return nil, ErrUnauthorized
	}

	cfg, ok := s.engine.Catalog().Get(req.Type)
	if !ok {
		return nil, ErrInvalidActivityType
	}
	if req.DurationMinutes != nil && !cfg.AllowDuration {
		return nil, ErrDurationNotAllowed
	}
	if req.Outcome != nil {
		if !cfg.AllowOutcome {
			return nil, ErrOutcomeNotAllowed
		}
		if !req.Outcome.IsValid() {
			return nil, ErrInvalidOutcome
		}
	}

	// Lead must exist and belong to the workspace.
	if _, err := s.leadRepo.Get(ctx, workspaceID, req.LeadID); err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}

	metadata, err := domain.DecodeMetadata(req.Type, req.Metadata)
	if err != nil {
		return nil, ErrInvalidMetadata
	}

	points := cfg.EngagementPoints
	if req.EngagementPoints != nil {
		points = *req.EngagementPoints
	}

	now := s.now()
	activity := &domain.Activity{
		ID:               generateID(),
		WorkspaceID:      workspaceID,
		LeadID:           req.LeadID,
		UserID:           actorID,
		Type:             req.Type,
		Title:            req.Title,
		Description:      req.Description,
		Outcome:          req.Outcome,
		DurationMinutes:  req.DurationMinutes,
		ScheduledFor:     req.ScheduledFor,
		CompletedAt:      req.CompletedAt,
		Metadata:         metadata,
		Tags:             req.Tags,
		EngagementPoints: points,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if activity.Tags == nil {
		activity.Tags = []string{}
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}

	s.recomputeScore(ctx, workspaceID, req.LeadID)

	auditLog(ctx, s.auditRepo, s.log, "activity", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "create",
		EntityType:  "activity",
		EntityID:    activity.ID,
		Detail:      map[string]interface{}{"type": string(req.Type)},
		CreatedAt:   now,
	})

	return activity, nil
}

// UpdateActivity edits the mutable subset of an activity. Type and
// engagement points stay fixed so historical scores do not drift.
// Permission: admin, manager, user.
func (s *ActivityService) UpdateActivity(ctx context.Context, workspaceID, activityID, actorID string, req *domain.UpdateActivityRequest) (*domain.Activity, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModifyRecords(role) {
		return nil, ErrUnauthorized
	}

	activity, err := s.activityRepo.Get(ctx, workspaceID, activityID)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}

	if req.Outcome != nil {
		cfg, _ := s.engine.Catalog().Get(activity.Type)
		if !cfg.AllowOutcome {
			return nil, ErrOutcomeNotAllowed
		}
		if !req.Outcome.IsValid() {
			return nil, ErrInvalidOutcome
		}
		activity.Outcome = req.Outcome
	}
	if req.Title != nil {
		activity.Title = *req.Title
	}
	if req.Description != nil {
		activity.Description = req.Description
	}
	if req.Tags != nil {
		activity.Tags = *req.Tags
	}
	activity.UpdatedAt = s.now()

	if err := s.activityRepo.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}

	// Outcome edits feed into response rate and conversion stats.
	if req.Outcome != nil {
		s.recomputeScore(ctx, workspaceID, activity.LeadID)
	}

	auditLog(ctx, s.auditRepo, s.log, "activity", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "update",
		EntityType:  "activity",
		EntityID:    activityID,
		CreatedAt:   activity.UpdatedAt,
	})

	return activity, nil
}

// DeleteActivity removes an activity and recomputes the lead's score.
// Permission: admin, manager.
func (s *ActivityService) DeleteActivity(ctx context.Context, workspaceID, activityID, actorID string) error {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return err
	}
	if !domain.CanDeleteRecords(role) {
		return ErrUnauthorized
	}

	activity, err := s.activityRepo.Get(ctx, workspaceID, activityID)
	if err != nil {
		return fmt.Errorf("get activity: %w", err)
	}

	if err := s.activityRepo.Delete(ctx, workspaceID, activityID); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}

	s.recomputeScore(ctx, workspaceID, activity.LeadID)

	auditLog(ctx, s.auditRepo, s.log, "activity", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Action:      "delete",
		EntityType:  "activity",
		EntityID:    activityID,
		CreatedAt:   s.now(),
	})

	return nil
}

// GetEngagementScore returns the cached engagement score for a lead,
// computing and caching it on a miss.
// Permission: all workspace members.
func (s *ActivityService) GetEngagementScore(ctx context.Context, workspaceID, leadID, actorID string) (*domain.EngagementScore, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	if _, err := s.leadRepo.Get(ctx, workspaceID, leadID); err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}

	if score, ok := s.scores.Get(leadID); ok {
		return &score, nil
	}

	activities, err := s.activityRepo.ListByLead(ctx, workspaceID, leadID)
	if err != nil {
		return nil, fmt.Errorf("list lead activities: %w", err)
	}
	score := s.scores.GetOrCompute(leadID, activities, s.now())
	return &score, nil
}

// GetStats aggregates activity statistics for the workspace, or for one
// lead when leadID is non-nil.
// Permission: all workspace members.
func (s *ActivityService) GetStats(ctx context.Context, workspaceID, actorID string, leadID *string) (*domain.ActivityStats, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	activities, err := s.loadScope(ctx, workspaceID, leadID)
	if err != nil {
		return nil, err
	}

	stats := s.engine.Stats(activities, s.now())
	return &stats, nil
}

// GetTrend returns the daily engagement trend over the given window for
// the workspace, or for one lead when leadID is non-nil.
// Permission: all workspace members.
func (s *ActivityService) GetTrend(ctx context.Context, workspaceID, actorID string, leadID *string, days int) ([]domain.TrendPoint, error) {
	role, err := s.getMemberRoleWithLogging(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !domain.IsWorkspaceMember(role) {
		return nil, ErrUnauthorized
	}

	activities, err := s.loadScope(ctx, workspaceID, leadID)
	if err != nil {
		return nil, err
	}

	return s.engine.Trend(activities, days, s.now()), nil
}

func (s *ActivityService) loadScope(ctx context.Context, workspaceID string, leadID *string) ([]domain.Activity, error) {
	if leadID != nil {
		if _, err := s.leadRepo.Get(ctx, workspaceID, *leadID); err != nil {
			return nil, fmt.Errorf("get lead: %w", err)
		}
		activities, err := s.activityRepo.ListByLead(ctx, workspaceID, *leadID)
		if err != nil {
			return nil, fmt.Errorf("list lead activities: %w", err)
		}
		return activities, nil
	}
	activities, err := s.activityRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list workspace activities: %w", err)
	}
	return activities, nil
}

// SeedScores warms the score cache for every workspace at startup so
// first reads hit a consistent snapshot.
func (s *ActivityService) SeedScores(ctx context.Context, workspaceIDs []string) {
	now := s.now()
	for _, workspaceID := range workspaceIDs {
		activities, err := s.activityRepo.ListByWorkspace(ctx, workspaceID)
		if err != nil {
			s.log.Error(ctx, "failed to seed engagement scores",
				logger.Module("activity"),
				logger.Action("seed_scores"),
				zap.String("workspace_id", workspaceID),
				zap.Error(err),
			)
			continue
		}
		s.scores.Seed(activities, now)
	}
	s.log.Info(ctx, "engagement score cache seeded",
		logger.Module("activity"),
		logger.Action("seed_scores"),
		zap.Int("workspaces", len(workspaceIDs)),
		zap.Int("leads", s.scores.Len()),
	)
}
