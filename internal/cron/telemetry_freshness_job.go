package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/loopplatform/merchant-pulse/pkg/logger"
	"github.com/loopplatform/merchant-pulse/pkg/metrics"
)

const (
	defaultMaxTelemetryAge = 14 * 24 * time.Hour
	defaultMaxDigestAge    = 24 * time.Hour
)

// TelemetryFreshnessJobParams configure the freshness watchdog.
type TelemetryFreshnessJobParams struct {
	Logger          *logger.Logger
	Repository      telemetryFreshnessReader
	Marker          digestRefreshReader
	Metrics         *metrics.DigestMetrics
	MaxTelemetryAge time.Duration
	MaxDigestAge    time.Duration
}

type telemetryFreshnessReader interface {
	NewestOrderWeekDate(ctx context.Context) (*time.Time, error)
}

type digestRefreshReader interface {
	LastDigestRefresh(ctx context.Context) (time.Time, error)
}

// NewTelemetryFreshnessJob builds the cron job that checks how old the
// newest telemetry row and the last digest refresh are. Stale data is a
// warning, not a job failure; only read errors fail the run.
func NewTelemetryFreshnessJob(params TelemetryFreshnessJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("telemetry reader required")
	}
	if params.Marker == nil {
		return nil, fmt.Errorf("digest refresh reader required")
	}
	maxTelemetryAge := params.MaxTelemetryAge
	if maxTelemetryAge <= 0 {
		maxTelemetryAge = defaultMaxTelemetryAge
	}
	maxDigestAge := params.MaxDigestAge
	if maxDigestAge <= 0 {
		maxDigestAge = defaultMaxDigestAge
	}
	return &telemetryFreshnessJob{
		logg:            params.Logger,
		repo:            params.Repository,
		marker:          params.Marker,
		metrics:         params.Metrics,
		maxTelemetryAge: maxTelemetryAge,
		maxDigestAge:    maxDigestAge,
		now:             time.Now,
	}, nil
}

type telemetryFreshnessJob struct {
	logg            *logger.Logger
	repo            telemetryFreshnessReader
	marker          digestRefreshReader
	metrics         *metrics.DigestMetrics
	maxTelemetryAge time.Duration
	maxDigestAge    time.Duration
	now             func() time.Time
}

func (j *telemetryFreshnessJob) Name() string { return "telemetry-freshness" }

func (j *telemetryFreshnessJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var errs []error
	if err := j.checkTelemetry(ctx, now); err != nil {
		errs = append(errs, err)
	}
	if err := j.checkDigest(ctx, now); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *telemetryFreshnessJob) checkTelemetry(ctx context.Context, now time.Time) error {
	newest, err := j.repo.NewestOrderWeekDate(ctx)
	if err != nil {
		return fmt.Errorf("read newest order week: %w", err)
	}
	if newest == nil {
		j.logg.Warn(ctx, "no telemetry rows found")
		return nil
	}

	age := now.Sub(newest.UTC())
	ageDays := age.Hours() / 24
	j.metrics.SetTelemetryAgeDays(ageDays)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"newest_order_week": newest.UTC(),
		"age_days":          ageDays,
		"max_age_days":      j.maxTelemetryAge.Hours() / 24,
	})
	if age > j.maxTelemetryAge {
		j.logg.Warn(logCtx, "merchant telemetry is stale")
		return nil
	}
	j.logg.Info(logCtx, "telemetry freshness ok")
	return nil
}

func (j *telemetryFreshnessJob) checkDigest(ctx context.Context, now time.Time) error {
	last, err := j.marker.LastDigestRefresh(ctx)
	if err != nil {
		return fmt.Errorf("read digest refresh marker: %w", err)
	}
	if last.IsZero() {
		// Marker missing means the digest was never built or the marker
		// TTL lapsed. Either way the next refresh will restore it.
		j.logg.Warn(ctx, "digest refresh marker missing")
		return nil
	}

	age := now.Sub(last.UTC())
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"last_refresh":  last.UTC(),
		"age_minutes":   age.Minutes(),
		"max_age_hours": j.maxDigestAge.Hours(),
	})
	if age > j.maxDigestAge {
		j.logg.Warn(logCtx, "program digest is stale")
		return nil
	}
	j.logg.Info(logCtx, "digest freshness ok")
	return nil
}
