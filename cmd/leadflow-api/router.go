package main

import (
	"context"
	"net/http"
	"time"

	"leadflow-api/internal/auth"
	"leadflow-api/internal/config"
	"leadflow-api/internal/http/docs"
	"leadflow-api/internal/http/handler"
	"leadflow-api/internal/http/middleware"
	"leadflow-api/internal/idempotency"
	"leadflow-api/internal/metrics"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/ratelimit"
	"leadflow-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RouterDeps carries everything buildRouter needs. Nil handlers mount
// nothing, which keeps router tests small.
type RouterDeps struct {
	Cfg              *config.Config
	Log              *logger.Logger
	Validator        auth.TokenValidator
	IdempotencyStore *idempotency.RedisStore
	RateLimiter      *ratelimit.RedisRateLimiter
	Metrics          *metrics.Metrics
	OTelEnabled      bool
	Pool             *pgxpool.Pool // readiness check

	LeadHandler       *handler.LeadHandler
	ActivityHandler   *handler.ActivityHandler
	EngagementHandler *handler.EngagementHandler
	TemplateHandler   *handler.TemplateHandler
	ShareHandler      *handler.ShareHandler
	WebhookHandler    *handler.WebhookHandler
}

// buildRouter wires middlewares and routes.
func buildRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(deps.Log))
	r.Use(middleware.RecoveryMiddleware(deps.Log))
	if deps.OTelEnabled {
		r.Use(telemetry.OTelMiddleware(deps.Cfg.OTELServiceName))
	}
	if deps.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(deps.Metrics))
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Pool.Ping(ctx); err != nil {
				deps.Log.Error(ctx, "readiness check failed: database unavailable", zap.Error(err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"error","message":"database unavailable"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	r.Get("/openapi.yaml", docs.OpenAPIHandler().ServeHTTP)
	r.Get("/docs", docs.ScalarDocsHandler("/openapi.yaml").ServeHTTP)

	if deps.Metrics != nil {
		r.Get("/metrics", deps.Metrics.Handler().ServeHTTP)
	}

	// Public share resolution: visitors only hold the opaque key.
	if deps.ShareHandler != nil {
		r.Get("/s/{shareKey}", deps.ShareHandler.ResolveShare)
	}

	// Webhook ingestion: static token auth, not JWT.
	if deps.WebhookHandler != nil {
		r.Post("/v1/webhooks/leads/{workspaceId}", deps.WebhookHandler.IngestLead)
	}

	// Protected routes with workspace isolation
	r.Route("/v1/workspaces/{workspaceId}", func(r chi.Router) {
		r.Use(auth.JWTAuthMiddleware(deps.Validator))
		r.Use(middleware.WorkspaceMiddleware)
		if deps.RateLimiter != nil {
			r.Use(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerWorkspacePerMin))
		}

		idem := func(next http.Handler) http.Handler { return next }
		if deps.IdempotencyStore != nil {
			idem = middleware.IdempotencyMiddleware(deps.IdempotencyStore)
		}

		if deps.LeadHandler != nil {
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", deps.LeadHandler.ListLeads)
				r.With(idem).Post("/", deps.LeadHandler.CreateLead)
				r.Route("/{leadId}", func(r chi.Router) {
					r.Get("/", deps.LeadHandler.GetLead)
					r.With(idem).Patch("/", deps.LeadHandler.UpdateLead)
					r.Delete("/", deps.LeadHandler.DeleteLead)
					r.With(idem).Post("/:status", deps.LeadHandler.UpdateLeadStatus)

					if deps.EngagementHandler != nil {
						r.Get("/engagement", deps.EngagementHandler.GetLeadScore)
						r.With(idem).Post("/:score", deps.EngagementHandler.ScoreLead)
					}
				})
			})
		}

		if deps.ActivityHandler != nil {
			r.Get("/activity-types", deps.ActivityHandler.ListActivityTypes)
			r.Route("/activities", func(r chi.Router) {
				r.Get("/", deps.ActivityHandler.ListActivities)
				r.With(idem).Post("/", deps.ActivityHandler.CreateActivity)
				if deps.EngagementHandler != nil {
					r.Get("/:stats", deps.EngagementHandler.GetStats)
					r.Get("/:trend", deps.EngagementHandler.GetTrend)
				}
				r.Route("/{activityId}", func(r chi.Router) {
					r.Get("/", deps.ActivityHandler.GetActivity)
					r.With(idem).Patch("/", deps.ActivityHandler.UpdateActivity)
					r.Delete("/", deps.ActivityHandler.DeleteActivity)
				})
			})
		}

		if deps.TemplateHandler != nil {
			r.Route("/templates", func(r chi.Router) {
				r.Get("/", deps.TemplateHandler.ListTemplates)
				r.With(idem).Post("/", deps.TemplateHandler.CreateTemplate)
				r.Route("/{templateId}", func(r chi.Router) {
					r.Get("/", deps.TemplateHandler.GetTemplate)
					r.With(idem).Patch("/", deps.TemplateHandler.UpdateTemplate)
					r.Delete("/", deps.TemplateHandler.DeleteTemplate)
					r.With(idem).Post("/:send", deps.TemplateHandler.SendTemplate)
				})
			})
		}

		if deps.ShareHandler != nil {
			r.Route("/shares", func(r chi.Router) {
				r.Get("/", deps.ShareHandler.ListShares)
				r.With(idem).Post("/", deps.ShareHandler.CreateShare)
				r.Route("/{shareId}", func(r chi.Router) {
					r.Get("/", deps.ShareHandler.GetShare)
					r.Delete("/", deps.ShareHandler.DeleteShare)
					r.Get("/analytics", deps.ShareHandler.GetShareAnalytics)
				})
			})
		}
	})

	return r
}
