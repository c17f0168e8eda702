package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"leadflow-api/internal/auth"
	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/service"
)

// EngagementHandler exposes the engagement score, stats and trend
// endpoints.
type EngagementHandler struct {
	activities *service.ActivityService
	scoring    *service.ScoringService
}

func NewEngagementHandler(activities *service.ActivityService, scoring *service.ScoringService) *EngagementHandler {
	return &EngagementHandler{activities: activities, scoring: scoring}
}

// GetLeadScore handles GET /v1/workspaces/{workspaceId}/leads/{leadId}/engagement
func (h *EngagementHandler) GetLeadScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	leadID := chi.URLParam(r, "leadId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	score, err := h.activities.GetEngagementScore(ctx, workspaceID, leadID, claims.ActorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, score)
}

// GetStats handles GET /v1/workspaces/{workspaceId}/activities:stats
// Optional leadId query parameter scopes the aggregation to one lead.
func (h *EngagementHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	var leadID *string
	if id := r.URL.Query().Get("leadId"); id != "" {
		leadID = &id
	}

	stats, err := h.activities.GetStats(ctx, workspaceID, claims.ActorID, leadID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// GetTrend handles GET /v1/workspaces/{workspaceId}/activities:trend?days=N
func (h *EngagementHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	days := 7
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 1 || parsed > 365 {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	var leadID *string
	if id := r.URL.Query().Get("leadId"); id != "" {
		leadID = &id
	}

	trend, err := h.activities.GetTrend(ctx, workspaceID, claims.ActorID, leadID, days)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": trend})
}

// ScoreLead handles POST /v1/workspaces/{workspaceId}/leads/{leadId}:score
func (h *EngagementHandler) ScoreLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	leadID := chi.URLParam(r, "leadId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	insight, err := h.scoring.ScoreLead(ctx, workspaceID, leadID, claims.ActorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, insight)
}
