package auth

import (
	"context"
	"net/http"
	"strings"

	"leadflow-api/internal/http/httperr"
	"leadflow-api/internal/observability/logger"

	"go.uber.org/zap"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// JWTAuthMiddleware validates bearer tokens and injects claims into the
// request context. Workspace and user ids are also propagated so log
// entries downstream carry them automatically.
func JWTAuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warn(ctx, "missing authorization header",
					logger.Module("auth"),
					logger.Action("authenticate"),
				)
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeMissingAuthorization, "missing authorization header")
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" {
				log.Warn(ctx, "invalid authorization scheme",
					logger.Module("auth"),
					logger.Action("authenticate"),
				)
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidScheme, "authorization header must use Bearer scheme")
				return
			}

			claims, err := validator.Validate(tokenString)
			if err != nil {
				log.Warn(ctx, "token validation failed",
					logger.Module("auth"),
					logger.Action("authenticate"),
					zap.Error(err),
					zap.String("token_prefix", maskToken(tokenString)),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				code, message := errorCodeFor(err)
				httperr.Unauthorized401(w, ctx, code, message)
				return
			}

			ctx = context.WithValue(ctx, claimsContextKey, claims)
			ctx = logger.SetWorkspaceIDInContext(ctx, claims.WorkspaceID)
			ctx = logger.SetUserIDInContext(ctx, claims.ActorID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func errorCodeFor(err error) (code, message string) {
	authErr, ok := AsError(err)
	if !ok {
		return httperr.ErrCodeInvalidToken, "invalid token"
	}
	switch authErr.Reason {
	case FailureTokenExpired:
		return httperr.ErrCodeTokenExpired, "token expired"
	case FailureInvalidIssuer:
		return httperr.ErrCodeInvalidIssuer, "invalid issuer"
	case FailureInvalidAudience:
		return httperr.ErrCodeInvalidAudience, "invalid audience"
	default:
		return httperr.ErrCodeInvalidToken, "invalid token"
	}
}

// GetClaims retrieves claims from context
func GetClaims(ctx context.Context) (*CustomClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*CustomClaims)
	return claims, ok
}

// SetClaims stores claims in context, used by handler tests.
func SetClaims(ctx context.Context, claims *CustomClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
