package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"leadflow-api/internal/domain"
	"leadflow-api/internal/engagement"
	"leadflow-api/internal/enrichment"
	"leadflow-api/internal/metrics"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/repo"
)

// ScoringService runs AI-assisted lead scoring on top of the engagement
// snapshot.
type ScoringService struct {
	leadRepo      *repo.LeadRepository
	activityRepo  *repo.ActivityRepository
	workspaceRepo *repo.WorkspaceRepository
	scores        *engagement.ScoreStore
	scorer        *enrichment.LeadScorer
	metrics       *metrics.Metrics
	log           *logger.Logger
	now           Clock
}

func NewScoringService(
	leadRepo *repo.LeadRepository,
	activityRepo *repo.ActivityRepository,
	workspaceRepo *repo.WorkspaceRepository,
	scores *engagement.ScoreStore,
	scorer *enrichment.LeadScorer,
	m *metrics.Metrics,
	log *logger.Logger,
	now Clock,
) *ScoringService {
	return &ScoringService{
		leadRepo:      leadRepo,
		activityRepo:  activityRepo,
		workspaceRepo: workspaceRepo,
		scores:        scores,
		scorer:        scorer,
		metrics:       m,
		log:           log,
		now:           now,
	}
}

func (s *ScoringService) getMemberRoleWithLogging(ctx context.Context, actorID, workspaceID string) (domain.Role, error) {
	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, actorID)
	if err != nil {
		s.log.Error(ctx, "failed to get member role",
			logger.Module("scoring"),
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

// ScoreLead produces an AI insight for a lead from its engagement
// snapshot and recent activity history. Falls back to the deterministic
// heuristic when the model integration is disabled or misbehaves.
// Permission: all workspace members.
func (s *ScoringService) ScoreLead(ctx context.Context, workspaceID, leadID, actorID string) (*enrichment.LeadInsight, error) {
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

	activities, err := s.activityRepo.ListByLead(ctx, workspaceID, leadID)
	if err != nil {
		return nil, fmt.Errorf("list lead activities: %w", err)
	}

	engagementScore := s.scores.GetOrCompute(leadID, activities, s.now())

	insight, err := s.scorer.ScoreLead(ctx, lead, engagementScore, activities)
	if err != nil {
		if s.metrics != nil {
			s.metrics.AIScoringsTotal.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("score lead: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AIScoringsTotal.WithLabelValues(insight.Source).Inc()
	}

	s.log.Info(ctx, "lead scored",
		logger.Module("scoring"),
		logger.Action("score_lead"),
		zap.String("lead_id", leadID),
		zap.String("source", insight.Source),
		zap.Int("score", insight.Score),
	)

	return insight, nil
}
