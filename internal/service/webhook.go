package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"leadflow-api/internal/domain"
	"leadflow-api/internal/engagement"
	"leadflow-api/internal/metrics"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/repo"
)

type WebhookService struct {
	leadRepo     *repo.LeadRepository
	activityRepo *repo.ActivityRepository
	auditRepo    *repo.AuditRepository
	scores       *engagement.ScoreStore
	catalog      *engagement.Catalog
	metrics      *metrics.Metrics
	log          *logger.Logger
	now          Clock
}

func NewWebhookService(
	leadRepo *repo.LeadRepository,
	activityRepo *repo.ActivityRepository,
	auditRepo *repo.AuditRepository,
	scores *engagement.ScoreStore,
	catalog *engagement.Catalog,
	m *metrics.Metrics,
	log *logger.Logger,
	now Clock,
) *WebhookService {
	return &WebhookService{
		leadRepo:     leadRepo,
		activityRepo: activityRepo,
		auditRepo:    auditRepo,
		scores:       scores,
		catalog:      catalog,
		metrics:      m,
		log:          log,
		now:          now,
	}
}

// IngestLead maps an inbound payload onto a lead, upserting by email
// within the workspace. New leads get status "new" and source "webhook";
// existing leads only gain fields they were missing. Every ingestion
// logs an automated note activity and refreshes the lead's score.
func (s *WebhookService) IngestLead(ctx context.Context, workspaceID, source string, payload *domain.WebhookLeadPayload) (*domain.WebhookIngestResult, error) {
	result, err := s.ingest(ctx, workspaceID, source, payload)
	if s.metrics != nil {
		outcome := "error"
		if err == nil {
			outcome = "updated"
			if result.Created {
				outcome = "created"
			}
		}
		s.metrics.WebhookIngestsTotal.WithLabelValues(source, outcome).Inc()
	}
	return result, err
}

func (s *WebhookService) ingest(ctx context.Context, workspaceID, source string, payload *domain.WebhookLeadPayload) (*domain.WebhookIngestResult, error) {
	fullName := strings.TrimSpace(payload.FullName)
	if fullName == "" {
		fullName = strings.TrimSpace(payload.Name)
	}
	if fullName == "" {
		fullName = payload.Email
	}

	now := s.now()
	existing, err := s.leadRepo.GetByEmail(ctx, workspaceID, payload.Email)
	if err != nil && !errors.Is(err, repo.ErrLeadNotFound) {
		return nil, fmt.Errorf("lookup lead by email: %w", err)
	}

	var lead *domain.Lead
	created := existing == nil

	if created {
		email := payload.Email
		lead = &domain.Lead{
			ID:          generateID(),
			WorkspaceID: workspaceID,
			FullName:    fullName,
			Email:       &email,
			Status:      domain.LeadStatusNew,
			Source:      domain.LeadSourceWebhook,
			Tags:        payload.Tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if payload.Phone != "" {
			phone := payload.Phone
			lead.Phone = &phone
		}
		if payload.Company != "" {
			company := payload.Company
			lead.Company = &company
		}
		if notes := formatExtraFields(payload.Fields); notes != "" {
			lead.Notes = &notes
		}
		if lead.Tags == nil {
			lead.Tags = []string{}
		}

		if err := s.leadRepo.Create(ctx, lead); err != nil {
			return nil, fmt.Errorf("create lead: %w", err)
		}
	} else {
		lead = existing
		if lead.Phone == nil && payload.Phone != "" {
			phone := payload.Phone
			lead.Phone = &phone
		}
		if lead.Company == nil && payload.Company != "" {
			company := payload.Company
			lead.Company = &company
		}
		lead.Tags = mergeTags(lead.Tags, payload.Tags)
		lead.UpdatedAt = now

		if err := s.leadRepo.Update(ctx, lead); err != nil {
			return nil, fmt.Errorf("update lead: %w", err)
		}
	}

	actor := "webhook:" + source
	verb := "captured"
	if !created {
		verb = "re-captured"
	}
	activity := &domain.Activity{
		ID:               generateID(),
		WorkspaceID:      workspaceID,
		LeadID:           lead.ID,
		UserID:           actor,
		Type:             domain.ActivityTypeNote,
		Title:            fmt.Sprintf("Lead %s via %s webhook", verb, source),
		Tags:             []string{},
		IsAutomated:      true,
		EngagementPoints: s.catalog.Points(domain.ActivityTypeNote),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.log.Error(ctx, "failed to record webhook ingestion activity",
			logger.Module("webhook"),
			logger.Action("ingest"),
			zap.String("lead_id", lead.ID),
			zap.Error(err),
		)
	} else {
		activities, err := s.activityRepo.ListByLead(ctx, workspaceID, lead.ID)
		if err == nil {
			s.scores.Recompute(lead.ID, activities, now)
			if s.metrics != nil {
				s.metrics.EngagementRecomputes.Inc()
			}
		}
	}

	auditLog(ctx, s.auditRepo, s.log, "webhook", &repo.AuditEntry{
		WorkspaceID: workspaceID,
		UserID:      actor,
		Action:      "ingest",
		EntityType:  "lead",
		EntityID:    lead.ID,
		Detail:      map[string]interface{}{"source": source, "created": created},
		CreatedAt:   now,
	})

	s.log.Info(ctx, "webhook lead ingested",
		logger.Module("webhook"),
		logger.Action("ingest"),
		zap.String("lead_id", lead.ID),
		zap.String("source", source),
		zap.Bool("created", created),
	)

	return &domain.WebhookIngestResult{LeadID: lead.ID, Created: created}, nil
}

// formatExtraFields flattens unrecognized payload fields into note text,
// sorted so output is deterministic.
func formatExtraFields(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, fields[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

// mergeTags appends new tags not already present, preserving order.
func mergeTags(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t] = true
	}
	merged := existing
	for _, t := range incoming {
		if !seen[t] {
			merged = append(merged, t)
			seen[t] = true
		}
	}
	if merged == nil {
		merged = []string{}
	}
	return merged
}
