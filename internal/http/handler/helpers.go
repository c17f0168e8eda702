// Package handler contains the HTTP endpoints. Handlers decode and
// validate requests, delegate to services and translate sentinel errors
// into the standard error envelope.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// handleServiceError maps service sentinel errors onto HTTP responses.
// Anything unmapped becomes an opaque 500.
func handleServiceError(w http.ResponseWriter, ctx context.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrMemberNotFound):
		log.Warn(ctx, "member not found in workspace", zap.Error(err))
		httperr.Forbidden403(w, ctx, httperr.ErrCodeForbidden, "insufficient permissions for this workspace")
	case errors.Is(err, service.ErrUnauthorized):
		log.Warn(ctx, "unauthorized action", zap.Error(err))
		httperr.Forbidden403(w, ctx, httperr.ErrCodeForbidden, "insufficient permissions for this action")
	case errors.Is(err, service.ErrLeadNotFound):
		httperr.NotFound404(w, ctx, "lead not found")
	case errors.Is(err, service.ErrActivityNotFound):
		httperr.NotFound404(w, ctx, "activity not found")
	case errors.Is(err, service.ErrTemplateNotFound):
		httperr.NotFound404(w, ctx, "template not found")
	case errors.Is(err, service.ErrShareNotFound):
		httperr.NotFound404(w, ctx, "share not found")
	case errors.Is(err, service.ErrInvalidLeadStatus):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStatus, "status must be one of: new, contacted, qualified, converted, lost")
	case errors.Is(err, service.ErrInvalidActivityType):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidType, "unknown activity type")
	case errors.Is(err, service.ErrDurationNotAllowed),
		errors.Is(err, service.ErrOutcomeNotAllowed),
		errors.Is(err, service.ErrInvalidOutcome),
		errors.Is(err, service.ErrInvalidMetadata),
		errors.Is(err, service.ErrInvalidChannel),
		errors.Is(err, service.ErrSubjectNotEmail),
		errors.Is(err, service.ErrTemplateSyntax),
		errors.Is(err, service.ErrTemplateRender),
		errors.Is(err, service.ErrInvalidShareKind):
		log.Warn(ctx, "validation failed", zap.Error(err))
		httperr.WriteError(w, ctx, http.StatusUnprocessableEntity, httperr.ErrCodeValidationError, err.Error())
	case errors.Is(err, service.ErrShareExpired):
		httperr.WriteError(w, ctx, http.StatusGone, httperr.ErrCodeGone, "share link has expired")
	default:
		log.Error(ctx, "unhandled internal server error", zap.Error(err), zap.String("error_details", err.Error()))
		httperr.InternalError500(w, ctx, "an internal error occurred")
	}
}
