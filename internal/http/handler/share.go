package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leadflow-api/internal/auth"
	"leadflow-api/internal/domain"
	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/service"
)

type ShareHandler struct {
	service *service.ShareService
}

func NewShareHandler(service *service.ShareService) *ShareHandler {
	return &ShareHandler{service: service}
}

// ListShares handles GET /v1/workspaces/{workspaceId}/shares
// Optional leadId query parameter scopes the list to one lead.
func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
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

	shares, err := h.service.ListShares(ctx, workspaceID, claims.ActorID, leadID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": shares})
}

// GetShare handles GET /v1/workspaces/{workspaceId}/shares/{shareId}
func (h *ShareHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	shareID := chi.URLParam(r, "shareId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	share, err := h.service.GetShare(ctx, workspaceID, shareID, claims.ActorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, share)
}

// CreateShare handles POST /v1/workspaces/{workspaceId}/shares
func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	var req domain.CreateShareRequest
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

	log.Info(ctx, "creating share",
		zap.String("workspaceId", workspaceID),
		zap.String("leadId", req.LeadID),
		zap.String("kind", string(req.Kind)),
		zap.String("actorId", claims.ActorID),
	)

	share, err := h.service.CreateShare(ctx, workspaceID, claims.ActorID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, share)
}

// DeleteShare handles DELETE /v1/workspaces/{workspaceId}/shares/{shareId}
func (h *ShareHandler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	shareID := chi.URLParam(r, "shareId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	if err := h.service.DeleteShare(ctx, workspaceID, shareID, claims.ActorID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetShareAnalytics handles GET /v1/workspaces/{workspaceId}/shares/{shareId}/analytics
func (h *ShareHandler) GetShareAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	shareID := chi.URLParam(r, "shareId")

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	analytics, err := h.service.GetShareAnalytics(ctx, workspaceID, shareID, claims.ActorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

// ResolveShare handles GET /s/{shareKey}, the public endpoint behind
// shared links. Page shares redirect to their target; file shares return
// the download location as JSON so clients can present the file name.
func (h *ShareHandler) ResolveShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	shareKey := chi.URLParam(r, "shareKey")
	if shareKey == "" {
		httperr.NotFound404(w, ctx, "share not found")
		return
	}

	var userAgent, referer *string
	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}
	if ref := r.Referer(); ref != "" {
		referer = &ref
	}

	share, err := h.service.Resolve(ctx, shareKey, userAgent, referer)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	if share.Kind == domain.ShareKindPage {
		http.Redirect(w, r, share.URL, http.StatusFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"title":    share.Title,
		"url":      share.URL,
		"fileName": share.FileName,
	})
}
