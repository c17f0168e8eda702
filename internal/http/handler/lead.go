package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leadflow-api/internal/auth"
	"leadflow-api/internal/domain"
	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/service"
)

type LeadHandler struct {
	service *service.LeadService
}

func NewLeadHandler(service *service.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// ListLeads handles GET /v1/workspaces/{workspaceId}/leads
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	params := domain.ListLeadsParams{Limit: 50}

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
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := domain.LeadStatus(statusStr)
		if !status.IsValid() {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStatus, "status must be one of: new, contacted, qualified, converted, lost")
			return
		}
		params.Status = &status
	}
	if ownerID := r.URL.Query().Get("ownerId"); ownerID != "" {
		params.OwnerID = &ownerID
	}
	if search := r.URL.Query().Get("q"); search != "" {
		params.Query = &search
	}

	response, err := h.service.ListLeads(ctx, workspaceID, claims.ActorID, params)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetLead handles GET /v1/workspaces/{workspaceId}/leads/{leadId}
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	leadID := chi.URLParam(r, "leadId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	lead, err := h.service.GetLead(ctx, workspaceID, leadID, claims.ActorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// CreateLead handles POST /v1/workspaces/{workspaceId}/leads
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	var req domain.CreateLeadRequest
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

	log.Info(ctx, "creating lead",
		zap.String("workspaceId", workspaceID),
		zap.String("actorId", claims.ActorID),
	)

	lead, err := h.service.CreateLead(ctx, workspaceID, claims.ActorID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

// UpdateLead handles PATCH /v1/workspaces/{workspaceId}/leads/{leadId}
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	leadID := chi.URLParam(r, "leadId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	var req domain.UpdateLeadRequest
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

	lead, err := h.service.UpdateLead(ctx, workspaceID, leadID, claims.ActorID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// UpdateLeadStatus handles POST /v1/workspaces/{workspaceId}/leads/{leadId}:status
func (h *LeadHandler) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	leadID := chi.URLParam(r, "leadId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	var req domain.UpdateLeadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn(ctx, "invalid request body", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request body must be valid JSON")
		return
	}
	if !req.Status.IsValid() {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStatus, "status must be one of: new, contacted, qualified, converted, lost")
		return
	}

	log.Info(ctx, "updating lead status",
		zap.String("workspaceId", workspaceID),
		zap.String("leadId", leadID),
		zap.String("status", string(req.Status)),
	)

	lead, err := h.service.UpdateLeadStatus(ctx, workspaceID, leadID, claims.ActorID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// DeleteLead handles DELETE /v1/workspaces/{workspaceId}/leads/{leadId}
func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	leadID := chi.URLParam(r, "leadId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	if err := h.service.DeleteLead(ctx, workspaceID, leadID, claims.ActorID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
