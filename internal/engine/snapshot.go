package engine

import (
	"time"

	"github.com/loopplatform/merchant-pulse/pkg/enums"
)

// SnapshotInputs carries everything BuildSnapshot needs; the caller
// materializes rows and curves from storage first.
type SnapshotInputs struct {
	Contract    Contract
	Weeks       []WeekRow
	Seasonality *SeasonalityModel
	WindowSize  int
}

// Snapshot is the derived per-merchant performance picture. It is
// recomputed on every query from current rows and never persisted.
type Snapshot struct {
	AccountID     string
	OpportunityID string
	MerchantName  string
	Vertical      string
	PricingModel  enums.PricingModel

	LatestISOWeek   int
	LatestWeekStart time.Time
	DaysLive        int

	Trailing TrailingAggregate

	WindowSharePercent     float64
	ExpectedTrailingVolume float64
	ForecastAnnualVolume   float64

	ExpectedAdoptionRatePercent float64
	ActualAdoptionRatePercent   float64
	AdoptionVarianceBps         float64

	Revenue         Decomposition
	RevenueVariance float64

	Tier enums.PerformanceTier

	ACVRetentionPercent float64
	ACVBand             enums.ACVBand

	// UsedBaseline is set when trailing data was insufficient and the
	// contract baselines were substituted, making every variance zero.
	// It is a display signal, not an error.
	UsedBaseline bool
}

// BuildSnapshot runs the full per-merchant pipeline: latest data week,
// trailing aggregate, days live, seasonality-expected volume, annualized
// forecast, revenue decomposition, and tier classification.
func BuildSnapshot(in SnapshotInputs) Snapshot {
	c := in.Contract
	window := in.WindowSize
	if window <= 0 {
		window = DefaultTrailingWindow
	}

	snap := Snapshot{
		AccountID:                   c.AccountID,
		OpportunityID:               c.OpportunityID,
		MerchantName:                c.MerchantName,
		Vertical:                    c.Vertical,
		PricingModel:                c.PricingModel,
		ExpectedAdoptionRatePercent: c.AdoptionRateExpectedPercent,
	}

	snap.LatestISOWeek, snap.LatestWeekStart = latestDataWeek(in.Weeks)
	snap.Trailing = AggregateTrailing(in.Weeks, snap.LatestISOWeek, window)
	snap.DaysLive = DaysLive(earliestFirstOffer(in.Weeks), snap.LatestWeekStart)

	snap.WindowSharePercent = in.Seasonality.WindowSharePercent(c.Vertical, snap.LatestISOWeek, window)
	snap.ExpectedTrailingVolume = c.AnnualOrderVolume * snap.WindowSharePercent / 100

	if snap.Trailing.HasSufficientData {
		snap.ActualAdoptionRatePercent = snap.Trailing.AdoptionRate * 100
		if snap.WindowSharePercent > 0 {
			snap.ForecastAnnualVolume = snap.Trailing.Orders / (snap.WindowSharePercent / 100)
		}
	} else {
		// Baseline substitution: report the contract as met rather than
		// inventing variance from a partial window.
		snap.UsedBaseline = true
		snap.ActualAdoptionRatePercent = c.AdoptionRateExpectedPercent
		snap.ForecastAnnualVolume = c.AnnualOrderVolume
	}

	snap.Revenue = Decompose(c,
		c.AnnualOrderVolume, snap.ForecastAnnualVolume,
		snap.ExpectedAdoptionRatePercent, snap.ActualAdoptionRatePercent)
	snap.RevenueVariance = snap.Revenue.ActualRevenue - snap.Revenue.ExpectedRevenue

	snap.AdoptionVarianceBps = (snap.ActualAdoptionRatePercent - snap.ExpectedAdoptionRatePercent) * 100
	snap.Tier = ClassifyVarianceBps(snap.AdoptionVarianceBps)

	if c.StartingACV > 0 {
		snap.ACVRetentionPercent = c.EndingACV / c.StartingACV * 100
		snap.ACVBand = ClassifyACVRetention(snap.ACVRetentionPercent)
	}

	return snap
}

// latestDataWeek picks the highest ISO week present, breaking ties on
// the later week start date.
func latestDataWeek(rows []WeekRow) (int, time.Time) {
	var week int
	var start time.Time
	for _, row := range rows {
		if row.ISOWeek > week || (row.ISOWeek == week && row.OrderWeekDate.After(start)) {
			week = row.ISOWeek
			start = row.OrderWeekDate
		}
	}
	return week, start
}

func earliestFirstOffer(rows []WeekRow) time.Time {
	var earliest time.Time
	for _, row := range rows {
		if row.FirstOfferDate.IsZero() {
			continue
		}
		if earliest.IsZero() || row.FirstOfferDate.Before(earliest) {
			earliest = row.FirstOfferDate
		}
	}
	return earliest
}
