package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/bootstrap"
	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/observability"
	"github.com/spec-kit/parking-service/internal/persistence"
	"github.com/spec-kit/parking-service/internal/repository/memory"
	"github.com/spec-kit/parking-service/internal/service"
	"github.com/spec-kit/parking-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := observability.SetupTracing(cfg.App.Name, cfg.Telemetry.Endpoint, cfg.Telemetry.Insecure, logger)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var repos bootstrap.Repositories
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = bootstrap.PostgresRepositories(pg.PoolHandle())
	} else {
		repos = bootstrap.MemoryRepositories(memory.NewStore())
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	sender := service.NewSendGridSender(cfg.Notification)
	if sender == nil {
		logger.Warn("SENDGRID_API_KEY not provided; notifications are only logged")
	}

	srv := bootstrap.New(bootstrap.Options{
		Config:   *cfg,
		Repos:    repos,
		Postgres: pg,
		Redis:    redis,
		Sender:   sender,
		Logger:   logger,
	})

	if err := srv.Auth.EnsureAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		logger.Fatal("failed to seed administrator", zap.Error(err))
	}

	stopRelease, err := worker.StartReleaseWorker(cfg.Jobs.ReleaseSchedule, srv.Jobs, logger)
	if err != nil {
		logger.Fatal("failed to schedule release job", zap.Error(err))
	}

	go func() {
		if err := srv.App.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	stopRelease()
	_ = srv.App.Shutdown()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
