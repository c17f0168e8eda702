package middleware

import (
	"context"
	"net/http"

	"leadflow-api/internal/auth"
	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/observability/logger"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const workspaceIDKey contextKey = "workspace_id"

// WorkspaceMiddleware validates that the workspace in the URL matches
// the authenticated workspace, blocking cross-workspace access.
func WorkspaceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.GetLogger(ctx)

		workspaceID := chi.URLParam(r, "workspaceId")
		if workspaceID == "" {
			log.Warn(ctx, "workspace_id not found in path",
				logger.Module("http"),
				logger.Action("workspace_check"),
			)
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidWorkspaceID, "workspace_id not found in path")
			return
		}

		claims, ok := auth.GetClaims(ctx)
		if !ok {
			log.Error(ctx, "claims not found in context",
				logger.Module("http"),
				logger.Action("workspace_check"),
			)
			httperr.Unauthorized401(w, ctx, httperr.ErrCodeMissingAuthorization, "unauthorized")
			return
		}

		if claims.WorkspaceID != workspaceID {
			log.Warn(ctx, "workspace access denied",
				logger.Module("http"),
				logger.Action("workspace_check"),
				zap.String("jwt_workspace_id", claims.WorkspaceID),
				zap.String("path_workspace_id", workspaceID),
				zap.String("actor_id", claims.ActorID),
			)
			httperr.Forbidden403(w, ctx, httperr.ErrCodeWorkspaceMismatch, "workspace access denied")
			return
		}

		span := trace.SpanFromContext(ctx)
		span.SetAttributes(attribute.String("workspace_id", workspaceID))

		ctx = context.WithValue(ctx, workspaceIDKey, workspaceID)
		ctx = logger.SetWorkspaceIDInContext(ctx, workspaceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetWorkspaceID retrieves the validated workspace ID from context
func GetWorkspaceID(ctx context.Context) (string, bool) {
	workspaceID, ok := ctx.Value(workspaceIDKey).(string)
	return workspaceID, ok
}

// SetWorkspaceID stores a validated workspace ID, used by handler tests.
func SetWorkspaceID(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, workspaceIDKey, workspaceID)
}
