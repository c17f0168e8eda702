package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leadflow-api/internal/auth"
	"leadflow-api/internal/domain"
	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/service"
)

// WebhookHandler receives lead payloads from external form providers.
// Authentication uses static per-source bearer tokens instead of JWTs:
// form providers cannot mint workspace tokens.
type WebhookHandler struct {
	service *service.WebhookService
	tokens  *auth.WebhookTokenStore
}

func NewWebhookHandler(service *service.WebhookService, tokens *auth.WebhookTokenStore) *WebhookHandler {
	return &WebhookHandler{service: service, tokens: tokens}
}

// IngestLead handles POST /v1/webhooks/leads/{workspaceId}
func (h *WebhookHandler) IngestLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeMissingAuthorization, "webhook token required")
		return
	}

	source, ok := h.tokens.Validate(token)
	if !ok {
		log.Warn(ctx, "webhook token rejected", logger.Module("webhook"), logger.Action("authenticate"))
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "invalid webhook token")
		return
	}

	workspaceID := chi.URLParam(r, "workspaceId")
	if workspaceID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidWorkspaceID, "workspaceId is required")
		return
	}

	var payload domain.WebhookLeadPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Warn(ctx, "invalid webhook payload", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request body must be valid JSON")
		return
	}
	if err := payload.Validate(); err != nil {
		log.Warn(ctx, "webhook payload validation failed", zap.Error(err))
		httperr.WriteError(w, ctx, http.StatusUnprocessableEntity, httperr.ErrCodeValidationError, err.Error())
		return
	}

	result, err := h.service.IngestLead(ctx, workspaceID, source, &payload)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}
