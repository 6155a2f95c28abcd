package cron

import (
	"context"
	"fmt"

	"github.com/loopplatform/merchant-pulse/internal/digest"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
)

// DigestRefreshJobParams configure the scheduled digest rebuild.
type DigestRefreshJobParams struct {
	Logger *logger.Logger
	Digest digest.Service
}

// NewDigestRefreshJob builds the cron job that recomputes the program
// digest on a timer. Ingestion events trigger the same refresh; the job
// keeps gauges and the freshness marker moving when no batches land.
func NewDigestRefreshJob(params DigestRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Digest == nil {
		return nil, fmt.Errorf("digest service required")
	}
	return &digestRefreshJob{
		logg:   params.Logger,
		digest: params.Digest,
	}, nil
}

type digestRefreshJob struct {
	logg   *logger.Logger
	digest digest.Service
}

func (j *digestRefreshJob) Name() string { return "digest-refresh" }

func (j *digestRefreshJob) Run(ctx context.Context) error {
	summary, err := j.digest.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("digest refresh: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"merchants":        summary.Merchants,
		"with_telemetry":   summary.MerchantsWithTelemetry,
		"revenue_variance": summary.RevenueVariance,
	})
	j.logg.Info(logCtx, "scheduled digest refresh complete")
	return nil
}
