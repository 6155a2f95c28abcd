package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DigestMetrics exports the program-level rollup so dashboards can watch
// merchant performance without querying the API. All setters are
// nil-guarded like the cron metrics so workers can run without a
// registerer wired.
type DigestMetrics struct {
	merchants       prometheus.Gauge
	withTelemetry   prometheus.Gauge
	tierMerchants   *prometheus.GaugeVec
	expectedRevenue prometheus.Gauge
	actualRevenue   prometheus.Gauge
	revenueVariance prometheus.Gauge
	lastRefresh     prometheus.Gauge
	telemetryAge    prometheus.Gauge
}

// NewDigestMetrics registers the digest gauges on the provided registerer.
func NewDigestMetrics(reg prometheus.Registerer) *DigestMetrics {
	if reg == nil {
		return &DigestMetrics{}
	}
	merchants := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "program_merchants",
		Help: "Merchants included in the latest program digest.",
	})
	withTelemetry := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "program_merchants_with_telemetry",
		Help: "Merchants whose trailing window had sufficient telemetry.",
	})
	tierMerchants := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "program_tier_merchants",
		Help: "Merchants per performance tier in the latest digest.",
	}, []string{"tier"})
	expectedRevenue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "program_expected_revenue",
		Help: "Summed contract-expected annual revenue across the program.",
	})
	actualRevenue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "program_actual_revenue",
		Help: "Summed trailing-projected annual revenue across the program.",
	})
	revenueVariance := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "program_revenue_variance",
		Help: "Summed actual minus expected annual revenue.",
	})
	lastRefresh := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "digest_refresh_timestamp_seconds",
		Help: "Unix time of the last digest refresh.",
	})
	telemetryAge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "telemetry_age_days",
		Help: "Age in days of the newest weekly actual across the program.",
	})
	reg.MustRegister(merchants, withTelemetry, tierMerchants, expectedRevenue, actualRevenue, revenueVariance, lastRefresh, telemetryAge)
	return &DigestMetrics{
		merchants:       merchants,
		withTelemetry:   withTelemetry,
		tierMerchants:   tierMerchants,
		expectedRevenue: expectedRevenue,
		actualRevenue:   actualRevenue,
		revenueVariance: revenueVariance,
		lastRefresh:     lastRefresh,
		telemetryAge:    telemetryAge,
	}
}

// SetMerchantCounts records total merchants and how many had telemetry.
func (d *DigestMetrics) SetMerchantCounts(total, withTelemetry int) {
	if d == nil || d.merchants == nil {
		return
	}
	d.merchants.Set(float64(total))
	d.withTelemetry.Set(float64(withTelemetry))
}

// SetTierCount records the merchant count for one tier. Callers set every
// tier each refresh so vanished tiers drop back to zero.
func (d *DigestMetrics) SetTierCount(tier string, count int) {
	if d == nil || d.tierMerchants == nil {
		return
	}
	d.tierMerchants.WithLabelValues(normalizeLabel(tier)).Set(float64(count))
}

// SetRevenueTotals records the program revenue rollup.
func (d *DigestMetrics) SetRevenueTotals(expected, actual, variance float64) {
	if d == nil || d.expectedRevenue == nil {
		return
	}
	d.expectedRevenue.Set(expected)
	d.actualRevenue.Set(actual)
	d.revenueVariance.Set(variance)
}

// SetLastRefresh stamps the digest refresh time.
func (d *DigestMetrics) SetLastRefresh(at time.Time) {
	if d == nil || d.lastRefresh == nil {
		return
	}
	d.lastRefresh.Set(float64(at.Unix()))
}

// SetTelemetryAgeDays records how stale the newest weekly actual is.
func (d *DigestMetrics) SetTelemetryAgeDays(days float64) {
	if d == nil || d.telemetryAge == nil {
		return
	}
	d.telemetryAge.Set(days)
}
