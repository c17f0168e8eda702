package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadflow-api/internal/auth"
	"leadflow-api/internal/config"
	"leadflow-api/internal/database"
	"leadflow-api/internal/engagement"
	"leadflow-api/internal/enrichment"
	"leadflow-api/internal/http/handler"
	"leadflow-api/internal/idempotency"
	"leadflow-api/internal/messaging"
	"leadflow-api/internal/metrics"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/ratelimit"
	"leadflow-api/internal/repo"
	"leadflow-api/internal/service"
	"leadflow-api/internal/telemetry"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the LeadFlow API HTTP server with all middlewares and observability`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.New(cfg.OTELServiceName, "info")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info(ctx, "starting leadflow api",
		zap.String("version", "1.0.0"),
		zap.String("service", cfg.OTELServiceName),
		zap.String("env", cfg.AppEnv),
	)

	// Run database migrations
	log.Info(ctx, "running database migrations")
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info(ctx, "migrations completed successfully")

	// Initialize telemetry strictly as opt-in
	var tracerProvider *sdktrace.TracerProvider
	var meterProvider *sdkmetric.MeterProvider

	if cfg.OTELEnabled {
		log.Info(ctx, "initializing telemetry", zap.String("endpoint", cfg.OTELExporterEndpoint))

		tp, err := telemetry.InitTracer(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint, cfg.OTELSamplingRatio)
		if err != nil {
			log.Warn(ctx, "failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			tracerProvider = tp
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown tracer provider", zap.Error(err))
				}
			}()
		}

		mp, _, err := telemetry.InitMetrics(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint)
		if err != nil {
			log.Warn(ctx, "failed to initialize otel metrics, continuing without them", zap.Error(err))
		} else {
			meterProvider = mp
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meterProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown meter provider", zap.Error(err))
				}
			}()
		}

		log.Info(ctx, "telemetry initialized", zap.Bool("tracing", tracerProvider != nil))
	} else {
		log.Info(ctx, "telemetry disabled (opt-in only)")
	}

	// Connect to database
	log.Info(ctx, "connecting to database")
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Info(ctx, "database connected")

	// Connect to Redis
	log.Info(ctx, "connecting to redis")
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info(ctx, "redis connected")

	// JWT validation (JWT_HS256_SECRET must be Base64-encoded)
	clockSkew := time.Duration(cfg.JWTClockSkewSeconds) * time.Second
	validator, err := auth.NewHS256Validator(cfg.JWTHS256Secret, cfg.JWTIssuer, cfg.JWTAudience, clockSkew)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT validation: %w", err)
	}
	log.Info(ctx, "JWT authentication initialized",
		zap.String("issuer", cfg.JWTIssuer),
		zap.Int("clock_skew_seconds", cfg.JWTClockSkewSeconds),
	)

	// Webhook token store
	webhookTokens, err := cfg.GetWebhookTokens()
	if err != nil {
		return fmt.Errorf("failed to parse webhook tokens: %w", err)
	}
	tokenStore := auth.NewWebhookTokenStore(webhookTokens)
	log.Info(ctx, "webhook tokens loaded", zap.Int("sources", len(webhookTokens)))

	// Prometheus metrics
	m := metrics.New()

	// Idempotency and rate limiting over Redis
	idempotencyStore := idempotency.NewRedisStore(redisClient)
	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient, m.RateLimitRejections)

	// Initialize repositories
	workspaceRepo := repo.NewWorkspaceRepository(pool)
	auditRepo := repo.NewAuditRepository(pool)
	leadRepo := repo.NewLeadRepository(pool)
	activityRepo := repo.NewActivityRepository(pool)
	templateRepo := repo.NewTemplateRepository(pool)
	shareRepo := repo.NewShareRepository(pool)

	// Engagement scoring core
	catalog := engagement.DefaultCatalog()
	engine := engagement.NewEngine(catalog)
	scores := engagement.NewScoreStore(engine)

	// Liquid template engine
	templates := messaging.NewTemplateEngine()

	// AI lead scoring, disabled unless an API key is configured
	var completionClient enrichment.CompletionClient
	if cfg.AIScoringEnabled() {
		completionClient = openai.NewClient(cfg.OpenAIAPIKey)
		log.Info(ctx, "AI lead scoring enabled", zap.String("model", cfg.OpenAIModel))
	} else {
		log.Info(ctx, "AI lead scoring disabled, heuristic fallback only")
	}
	scorer := enrichment.NewLeadScorer(completionClient, enrichment.DefaultConfig(cfg.OpenAIModel))

	// Initialize services
	now := service.Clock(time.Now)
	leadService := service.NewLeadService(leadRepo, activityRepo, auditRepo, workspaceRepo, scores, catalog, m, log, now)
	activityService := service.NewActivityService(activityRepo, leadRepo, auditRepo, workspaceRepo, engine, scores, m, log, now)
	templateService := service.NewTemplateService(templateRepo, leadRepo, activityRepo, auditRepo, workspaceRepo, scores, catalog, templates, m, log, now)
	shareService := service.NewShareService(shareRepo, leadRepo, activityRepo, auditRepo, workspaceRepo, scores, catalog, m, log, now)
	webhookService := service.NewWebhookService(leadRepo, activityRepo, auditRepo, scores, catalog, m, log, now)
	scoringService := service.NewScoringService(leadRepo, activityRepo, workspaceRepo, scores, scorer, m, log, now)

	// Warm the score cache so first engagement reads are consistent
	workspaceIDs, err := workspaceRepo.ListWorkspaceIDs(ctx)
	if err != nil {
		log.Warn(ctx, "failed to list workspaces for score seeding", zap.Error(err))
	} else {
		activityService.SeedScores(ctx, workspaceIDs)
	}

	// Initialize handlers
	leadHandler := handler.NewLeadHandler(leadService)
	activityHandler := handler.NewActivityHandler(activityService, catalog)
	engagementHandler := handler.NewEngagementHandler(activityService, scoringService)
	templateHandler := handler.NewTemplateHandler(templateService)
	shareHandler := handler.NewShareHandler(shareService)
	webhookHandler := handler.NewWebhookHandler(webhookService, tokenStore)

	// Build router
	r := buildRouter(RouterDeps{
		Cfg:               cfg,
		Log:               log,
		Validator:         validator,
		IdempotencyStore:  idempotencyStore,
		RateLimiter:       rateLimiter,
		Metrics:           m,
		OTelEnabled:       cfg.OTELEnabled,
		Pool:              pool,
		LeadHandler:       leadHandler,
		ActivityHandler:   activityHandler,
		EngagementHandler: engagementHandler,
		TemplateHandler:   templateHandler,
		ShareHandler:      shareHandler,
		WebhookHandler:    webhookHandler,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info(ctx, "starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info(ctx, "shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	log.Info(shutdownCtx, "shutdown complete")
	return nil
}
