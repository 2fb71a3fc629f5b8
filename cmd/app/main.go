package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/xp-engine/internal/analytics"
	"github.com/skillforge/xp-engine/internal/bonus"
	"github.com/skillforge/xp-engine/internal/bootstrap"
	"github.com/skillforge/xp-engine/internal/concurrency"
	"github.com/skillforge/xp-engine/internal/config"
	"github.com/skillforge/xp-engine/internal/database"
	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/eventlog"
	"github.com/skillforge/xp-engine/internal/ledger"
	"github.com/skillforge/xp-engine/internal/scorer"
	"github.com/skillforge/xp-engine/internal/server"
	"github.com/skillforge/xp-engine/internal/transparency"
	"github.com/skillforge/xp-engine/internal/worker"
)

const (
	dbMaxConns        = 10
	dbMaxConnIdle     = 5 * time.Minute
	dbMaxConnLifetime = 30 * time.Minute

	eventLogCleanupInterval = 24 * time.Hour
	shutdownTimeout         = 15 * time.Second
)

// @title SkillForge XP Engine API
// @version 1.0
// @description Performance-weighted XP and bonus engine for skill-building activities.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	ctx := context.Background()

	// Storage: Postgres in production, in-memory for local development
	var dbPool database.Pool
	var repos *bootstrap.Repositories
	if cfg.StorageBackend == config.StorageBackendPostgres {
		var pool *pgxpool.Pool
		pool, err = database.NewPool(cfg.GetDBConnString(), dbMaxConns, dbMaxConnIdle, dbMaxConnLifetime)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err = database.InitSchema(ctx, pool); err != nil {
			slog.Error("Failed to apply database schema", "error", err)
			os.Exit(1)
		}

		dbPool = pool
		repos = bootstrap.InitializeRepositories(pool)
	} else {
		slog.Warn("Using in-memory storage, data will not survive restarts")
		repos = bootstrap.InitializeMemoryRepositories()
	}

	// Event bus
	eventBus := event.NewMemoryBus()

	// Services
	scorerService := scorer.NewService(repos.WeightConfig, cfg.ConfigCacheTTL)
	bonusService := bonus.NewService(repos.Bonus, eventBus)
	guard := ledger.NewRateGuard(cfg.GamingWindow, cfg.GamingThreshold)
	locks := concurrency.NewLockManager()
	ledgerService := ledger.NewService(repos.Ledger, scorerService, bonusService, guard, locks, eventBus)
	transparencyService := transparency.NewService(repos.Reports, repos.Ledger, analytics.NoopProvider{}, eventBus, cfg.ReportCacheSize, cfg.ReportCacheTTL)
	eventlogService := eventlog.NewService(repos.EventLog)

	// Event subscribers
	if err = bootstrap.RegisterEventHandlers(eventBus, eventlogService); err != nil {
		slog.Error("Failed to register event handlers", "error", err)
		os.Exit(1)
	}

	// Background workers
	reconcileWorker := worker.NewIntervalWorker("reconcile", cfg.ReconcileEvery, worker.NewReconcileJob(repos.Ledger))
	reconcileWorker.Start()

	cleanupWorker := worker.NewIntervalWorker("eventlog-cleanup", eventLogCleanupInterval, eventlog.NewCleanupJob(eventlogService, cfg.EventRetention))
	cleanupWorker.Start()

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, cfg.AllowedOrigins, dbPool, ledgerService, scorerService, bonusService, transparencyService, eventlogService, eventBus)

	// Run until interrupted
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errCh:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-quit:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:          srv,
		ReconcileWorker: reconcileWorker,
		EventLogCleanup: cleanupWorker,
	})
}
