// Package digest keeps the program-level Prometheus gauges and the
// refresh marker in step with the data. A refresh recomputes the program
// summary, exports it, and stamps the marker; it runs on every ingestion
// batch event and on a cron interval so gauges stay warm between batches.
package digest

import (
	"context"
	"errors"
	"time"

	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
	"github.com/loopplatform/merchant-pulse/pkg/metrics"
)

// refreshMarkerTTL keeps the marker alive well past any sane refresh
// interval so the freshness check can tell "stale" from "expired".
const refreshMarkerTTL = 72 * time.Hour

type summaryProvider interface {
	ProgramSummary(ctx context.Context, params reports.SummaryParams) (*reports.ProgramSummary, error)
}

type refreshMarker interface {
	MarkDigestRefreshed(ctx context.Context, at time.Time, ttl time.Duration) error
}

// Service refreshes the program digest.
type Service interface {
	Refresh(ctx context.Context) (*reports.ProgramSummary, error)
}

type service struct {
	reports summaryProvider
	marker  refreshMarker
	metrics *metrics.DigestMetrics
	logg    *logger.Logger
}

// NewService builds a digest service. Metrics may be nil; the setters
// no-op without a registry.
func NewService(reportsSvc summaryProvider, marker refreshMarker, digestMetrics *metrics.DigestMetrics, logg *logger.Logger) (Service, error) {
	if reportsSvc == nil {
		return nil, errors.New("reports service is required")
	}
	if marker == nil {
		return nil, errors.New("refresh marker is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{
		reports: reportsSvc,
		marker:  marker,
		metrics: digestMetrics,
		logg:    logg,
	}, nil
}

func (s *service) Refresh(ctx context.Context) (*reports.ProgramSummary, error) {
	summary, err := s.reports.ProgramSummary(ctx, reports.SummaryParams{})
	if err != nil {
		return nil, err
	}

	s.metrics.SetMerchantCounts(summary.Merchants, summary.MerchantsWithTelemetry)
	for tier, count := range summary.TierCounts {
		s.metrics.SetTierCount(tier.String(), count)
	}
	s.metrics.SetRevenueTotals(summary.ExpectedRevenue, summary.ActualRevenue, summary.RevenueVariance)
	s.metrics.SetLastRefresh(summary.GeneratedAt)

	// A failed marker write only degrades the freshness check; the
	// refresh itself succeeded.
	if err := s.marker.MarkDigestRefreshed(ctx, summary.GeneratedAt, refreshMarkerTTL); err != nil {
		warnCtx := s.logg.WithFields(ctx, map[string]any{"error": err.Error()})
		s.logg.Warn(warnCtx, "digest refresh marker write failed")
	}

	fields := map[string]any{
		"merchants":        summary.Merchants,
		"with_telemetry":   summary.MerchantsWithTelemetry,
		"on_baseline":      summary.MerchantsOnBaseline,
		"expected_revenue": summary.ExpectedRevenue,
		"actual_revenue":   summary.ActualRevenue,
		"revenue_variance": summary.RevenueVariance,
	}
	for tier, count := range summary.TierCounts {
		fields["tier_"+tier.String()] = count
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "program digest refreshed")

	return summary, nil
}
