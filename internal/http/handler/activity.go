package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leadflow-api/internal/auth"
	"leadflow-api/internal/domain"
	"leadflow-api/internal/engagement"
	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/service"
)

type ActivityHandler struct {
	service *service.ActivityService
	catalog *engagement.Catalog
}

func NewActivityHandler(service *service.ActivityService, catalog *engagement.Catalog) *ActivityHandler {
	return &ActivityHandler{service: service, catalog: catalog}
}

// ListActivityTypes handles GET /v1/workspaces/{workspaceId}/activity-types
func (h *ActivityHandler) ListActivityTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": h.catalog.Configs()})
}

// ListActivities handles GET /v1/workspaces/{workspaceId}/activities
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	params := domain.ListActivitiesParams{Limit: 50}

	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		params.Cursor = &cursor
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidLimit, "limit must be between 1 and 100")
			return
		}
		params.Limit = limit
	}
	if leadID := r.URL.Query().Get("leadId"); leadID != "" {
		params.LeadID = &leadID
	}
	if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		activityType := domain.ActivityType(typeStr)
		if !activityType.IsValid() {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidType, "unknown activity type")
			return
		}
		params.Type = &activityType
	}

	response, err := h.service.ListActivities(ctx, workspaceID, claims.ActorID, params)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetActivity handles GET /v1/workspaces/{workspaceId}/activities/{activityId}
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	activityID := chi.URLParam(r, "activityId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	activity, err := h.service.GetActivity(ctx, workspaceID, activityID, claims.ActorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// CreateActivity handles POST /v1/workspaces/{workspaceId}/activities
func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	var req domain.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn(ctx, "invalid request body", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request body must be valid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		log.Warn(ctx, "validation failed", zap.Error(err))
		httperr.WriteError(w, ctx, http.StatusUnprocessableEntity, httperr.ErrCodeValidationError, err.Error())
		return
	}

	log.Info(ctx, "creating activity",
		zap.String("workspaceId", workspaceID),
		zap.String("leadId", req.LeadID),
		zap.String("type", string(req.Type)),
		zap.String("actorId", claims.ActorID),
	)

	activity, err := h.service.CreateActivity(ctx, workspaceID, claims.ActorID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, activity)
}

// UpdateActivity handles PATCH /v1/workspaces/{workspaceId}/activities/{activityId}
func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	activityID := chi.URLParam(r, "activityId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	var req domain.UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn(ctx, "invalid request body", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request body must be valid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		log.Warn(ctx, "validation failed", zap.Error(err))
		httperr.WriteError(w, ctx, http.StatusUnprocessableEntity, httperr.ErrCodeValidationError, err.Error())
		return
	}

	activity, err := h.service.UpdateActivity(ctx, workspaceID, activityID, claims.ActorID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// DeleteActivity handles DELETE /v1/workspaces/{workspaceId}/activities/{activityId}
func (h *ActivityHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	activityID := chi.URLParam(r, "activityId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	if err := h.service.DeleteActivity(ctx, workspaceID, activityID, claims.ActorID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
