package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/loopplatform/merchant-pulse/internal/cron"
	"github.com/loopplatform/merchant-pulse/internal/digest"
	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/config"
	"github.com/loopplatform/merchant-pulse/pkg/db"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
	"github.com/loopplatform/merchant-pulse/pkg/metrics"
	"github.com/loopplatform/merchant-pulse/pkg/migrate"
	"github.com/loopplatform/merchant-pulse/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	digestMetrics := metrics.NewDigestMetrics(prometheus.DefaultRegisterer)

	reportsRepo := reports.NewRepository(dbClient.DB())
	reportsService, err := reports.NewService(
		reportsRepo,
		cfg.Reports.MaxWindowWeeks,
		cfg.Reports.SummaryBatchSize,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	refresher, err := digest.NewService(reportsService, redisClient, digestMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create digest service", err)
		os.Exit(1)
	}

	refreshJob, err := cron.NewDigestRefreshJob(cron.DigestRefreshJobParams{
		Logger: logg,
		Digest: refresher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create digest refresh job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(refreshJob)

	if !cfg.Cron.FreshnessDisabled {
		freshnessJob, err := cron.NewTelemetryFreshnessJob(cron.TelemetryFreshnessJobParams{
			Logger:          logg,
			Repository:      reportsRepo,
			Marker:          redisClient,
			Metrics:         digestMetrics,
			MaxTelemetryAge: cfg.Cron.TelemetryMaxAge,
			MaxDigestAge:    cfg.Cron.DigestMaxAge,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create telemetry freshness job", err)
			os.Exit(1)
		}
		registry.Register(freshnessJob)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("cron-worker:%s", env)
}
