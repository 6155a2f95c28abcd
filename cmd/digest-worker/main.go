package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/loopplatform/merchant-pulse/internal/digest"
	"github.com/loopplatform/merchant-pulse/internal/digest/worker"
	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/config"
	"github.com/loopplatform/merchant-pulse/pkg/db"
	"github.com/loopplatform/merchant-pulse/pkg/eventing/idempotency"
	"github.com/loopplatform/merchant-pulse/pkg/instance"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
	"github.com/loopplatform/merchant-pulse/pkg/metrics"
	"github.com/loopplatform/merchant-pulse/pkg/pubsub"
	"github.com/loopplatform/merchant-pulse/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "digest-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "digest-worker"

	logg = logger.New(logger.Options{
		ServiceName: "digest-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "failed to close database client", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.IngestionSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "ingestion subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	reportsService, err := reports.NewService(
		reports.NewRepository(dbClient.DB()),
		cfg.Reports.MaxWindowWeeks,
		cfg.Reports.SummaryBatchSize,
	)
	requireResource(ctx, logg, "reports service", err)

	digestMetrics := metrics.NewDigestMetrics(prometheus.DefaultRegisterer)

	refresher, err := digest.NewService(reportsService, redisClient, digestMetrics, logg)
	requireResource(ctx, logg, "digest service", err)

	service, err := worker.NewService(subscription, refresher, manager, logg)
	requireResource(ctx, logg, "digest worker service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(runCtx, "digest worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "digest worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
