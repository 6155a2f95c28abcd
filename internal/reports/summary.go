package reports

import (
	"time"

	"github.com/loopplatform/merchant-pulse/internal/engine"
	"github.com/loopplatform/merchant-pulse/pkg/enums"
)

// SummaryParams scopes the program rollup. Window ≤ 0 falls back to the
// default trailing window; MinDaysLive drops merchants live for fewer
// days than the floor.
type SummaryParams struct {
	Window      int
	MinDaysLive int
}

// ProgramSummary is the whole-program rollup behind the summary endpoint
// and the digest gauges. Counts cover the merchants that passed the
// MinDaysLive floor; adoption averages cover only merchants with
// sufficient trailing data, since baseline rows would pin the actual
// average to the expected one.
type ProgramSummary struct {
	GeneratedAt time.Time `json:"generated_at"`
	Window      int       `json:"window"`

	Merchants              int `json:"merchants"`
	MerchantsWithTelemetry int `json:"merchants_with_telemetry"`
	MerchantsOnBaseline    int `json:"merchants_on_baseline"`

	TierCounts    map[enums.PerformanceTier]int `json:"tier_counts"`
	ACVBandCounts map[enums.ACVBand]int         `json:"acv_band_counts"`

	ExpectedRevenue         float64 `json:"expected_revenue"`
	ActualRevenue           float64 `json:"actual_revenue"`
	RevenueVariance         float64 `json:"revenue_variance"`
	VolumeContribution      float64 `json:"volume_contribution"`
	AdoptionContribution    float64 `json:"adoption_contribution"`
	InteractionContribution float64 `json:"interaction_contribution"`

	ExpectedTrailingVolume float64 `json:"expected_trailing_volume"`
	ActualTrailingVolume   float64 `json:"actual_trailing_volume"`
	ForecastAnnualVolume   float64 `json:"forecast_annual_volume"`

	AvgExpectedAdoptionPercent float64 `json:"avg_expected_adoption_percent"`
	AvgActualAdoptionPercent   float64 `json:"avg_actual_adoption_percent"`
}

// summaryAccumulator folds per-merchant snapshots into the rollup as the
// service walks contract pages.
type summaryAccumulator struct {
	summary ProgramSummary

	sumExpectedAdoption float64
	sumActualAdoption   float64
	adoptionSamples     int
}

func newSummaryAccumulator() *summaryAccumulator {
	return &summaryAccumulator{
		summary: ProgramSummary{
			TierCounts: map[enums.PerformanceTier]int{
				enums.PerformanceTierExceeding:          0,
				enums.PerformanceTierMeeting:            0,
				enums.PerformanceTierSlightlyBelow:      0,
				enums.PerformanceTierSignificantlyBelow: 0,
			},
			ACVBandCounts: map[enums.ACVBand]int{
				enums.ACVBandExpanding:            0,
				enums.ACVBandRetained:             0,
				enums.ACVBandReduced:              0,
				enums.ACVBandSignificantlyReduced: 0,
				enums.ACVBandCritical:             0,
			},
		},
	}
}

func (a *summaryAccumulator) add(snap engine.Snapshot) {
	a.summary.Merchants++
	if snap.LatestISOWeek > 0 {
		a.summary.MerchantsWithTelemetry++
	}
	if snap.UsedBaseline {
		a.summary.MerchantsOnBaseline++
	} else {
		a.sumExpectedAdoption += snap.ExpectedAdoptionRatePercent
		a.sumActualAdoption += snap.ActualAdoptionRatePercent
		a.adoptionSamples++
	}

	a.summary.TierCounts[snap.Tier]++
	if snap.ACVBand != "" {
		a.summary.ACVBandCounts[snap.ACVBand]++
	}

	a.summary.ExpectedRevenue += snap.Revenue.ExpectedRevenue
	a.summary.ActualRevenue += snap.Revenue.ActualRevenue
	a.summary.RevenueVariance += snap.RevenueVariance
	a.summary.VolumeContribution += snap.Revenue.VolumeContribution
	a.summary.AdoptionContribution += snap.Revenue.AdoptionContribution
	a.summary.InteractionContribution += snap.Revenue.InteractionContribution

	a.summary.ExpectedTrailingVolume += snap.ExpectedTrailingVolume
	a.summary.ActualTrailingVolume += snap.Trailing.Orders
	a.summary.ForecastAnnualVolume += snap.ForecastAnnualVolume
}

func (a *summaryAccumulator) finalize(generatedAt time.Time, window int) *ProgramSummary {
	if a.adoptionSamples > 0 {
		a.summary.AvgExpectedAdoptionPercent = a.sumExpectedAdoption / float64(a.adoptionSamples)
		a.summary.AvgActualAdoptionPercent = a.sumActualAdoption / float64(a.adoptionSamples)
	}
	a.summary.GeneratedAt = generatedAt
	a.summary.Window = window
	return &a.summary
}
