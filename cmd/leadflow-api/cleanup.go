package main

import (
	"context"
	"fmt"
	"time"

	"leadflow-api/internal/config"
	"leadflow-api/internal/database"
	"leadflow-api/internal/observability/logger"
	"leadflow-api/internal/repo"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	// Share view rows older than this are purged; the analytics window
	// only ever looks 30 days back.
	shareViewRetention = 365 * 24 * time.Hour

	// Expired shares linger this long before deletion so recently
	// expired links still return 410 instead of 404.
	expiredShareGrace = 30 * 24 * time.Hour
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge old share views and expired shares",
	Long:  `Remove share view rows past the retention window and shares whose expiry passed more than 30 days ago`,
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.OTELServiceName, "info")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info(ctx, "starting share cleanup",
		logger.Module("cleanup"),
		logger.Action("start"),
	)

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	shareRepo := repo.NewShareRepository(pool)
	now := time.Now()

	viewsDeleted, err := shareRepo.DeleteViewsBefore(ctx, now.Add(-shareViewRetention))
	if err != nil {
		log.Error(ctx, "share view cleanup failed", logger.Module("cleanup"), logger.Action("views"), zap.Error(err))
		return fmt.Errorf("failed to delete old share views: %w", err)
	}

	sharesDeleted, err := shareRepo.DeleteExpiredBefore(ctx, now.Add(-expiredShareGrace))
	if err != nil {
		log.Error(ctx, "expired share cleanup failed", logger.Module("cleanup"), logger.Action("shares"), zap.Error(err))
		return fmt.Errorf("failed to delete expired shares: %w", err)
	}

	log.Info(ctx, "cleanup completed",
		logger.Module("cleanup"),
		logger.Action("done"),
		zap.Int64("views_deleted", viewsDeleted),
		zap.Int64("shares_deleted", sharesDeleted),
	)
	fmt.Printf("✓ Cleanup completed: %d share views and %d expired shares removed\n", viewsDeleted, sharesDeleted)

	return nil
}
