package engine

import (
	"testing"
	"time"

	"github.com/loopplatform/merchant-pulse/pkg/enums"
)

func snapshotContract() Contract {
	return Contract{
		AccountID:     "acct-42",
		OpportunityID: "opp-42",
		MerchantName:  "Tidal Threads",
		Vertical:      "Apparel",

		PricingModel: enums.PricingModelRevShare,
		LabelsPaidBy: enums.LabelsPaidByMerchant,

		LoopSharePercent:          80,
		InitialOffsetFee:          2,
		RefundHandlingFee:         1,
		DomesticReturnRatePercent: 10,

		AnnualOrderVolume:           52000,
		AdoptionRateExpectedPercent: 50,

		StartingACV: 100000,
		EndingACV:   85000,
	}
}

// snapshotWeeks returns four in-window weeks (9 through 12 of 2026) at a
// steady 1000 orders with 60% adoption, plus a week 8 outlier that must
// stay outside the trailing window.
func snapshotWeeks() []WeekRow {
	firstOffer := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rows := make([]WeekRow, 0, 5)
	for i := 0; i < 4; i++ {
		rows = append(rows, WeekRow{
			AccountID:      "acct-42",
			ISOWeek:        9 + i,
			OrderWeekDate:  time.Date(2026, 2, 23+7*i, 0, 0, 0, 0, time.UTC),
			FirstOfferDate: firstOffer,
			EcommOrders:    1000,
			OfferShown:     700,
			AcceptedOffers: 600,
		})
	}
	rows = append(rows, WeekRow{
		AccountID:      "acct-42",
		ISOWeek:        8,
		OrderWeekDate:  time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC),
		FirstOfferDate: firstOffer,
		EcommOrders:    5000,
		OfferShown:     5000,
		AcceptedOffers: 5000,
	})
	return rows
}

func snapshotCurve() *SeasonalityModel {
	points := []CurvePoint{
		{Vertical: "Swimwear", ISOWeek: 10, OrderPercentage: 9},
	}
	for week := 9; week <= 12; week++ {
		points = append(points, CurvePoint{Vertical: "Total ex. Swimwear", ISOWeek: week, OrderPercentage: 2})
	}
	return NewSeasonalityModel(points)
}

func TestBuildSnapshotFullPipeline(t *testing.T) {
	snap := BuildSnapshot(SnapshotInputs{
		Contract:    snapshotContract(),
		Weeks:       snapshotWeeks(),
		Seasonality: snapshotCurve(),
	})

	if snap.UsedBaseline {
		t.Fatal("four weeks of data should not fall back to the baseline")
	}
	if snap.LatestISOWeek != 12 {
		t.Fatalf("LatestISOWeek = %d, want 12", snap.LatestISOWeek)
	}
	wantStart := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	if !snap.LatestWeekStart.Equal(wantStart) {
		t.Fatalf("LatestWeekStart = %s, want %s", snap.LatestWeekStart, wantStart)
	}
	// Jan 5 through Mar 22 (week 12 start plus six days).
	if snap.DaysLive != 76 {
		t.Fatalf("DaysLive = %d, want 76", snap.DaysLive)
	}

	if snap.Trailing.Orders != 4000 || snap.Trailing.AcceptedOffers != 2400 || snap.Trailing.OffersShown != 2800 {
		t.Fatalf("trailing sums = %+v, want orders 4000, accepted 2400, shown 2800", snap.Trailing)
	}
	if !snap.Trailing.HasSufficientData || snap.Trailing.WeeksWithData != 4 {
		t.Fatalf("trailing coverage = %+v, want 4 weeks and sufficient data", snap.Trailing)
	}

	if relDiff(snap.WindowSharePercent, 8) > 1e-9 {
		t.Fatalf("WindowSharePercent = %v, want 8", snap.WindowSharePercent)
	}
	if relDiff(snap.ExpectedTrailingVolume, 4160) > 1e-9 {
		t.Fatalf("ExpectedTrailingVolume = %v, want 4160", snap.ExpectedTrailingVolume)
	}
	if relDiff(snap.ForecastAnnualVolume, 50000) > 1e-9 {
		t.Fatalf("ForecastAnnualVolume = %v, want 50000", snap.ForecastAnnualVolume)
	}

	if snap.ExpectedAdoptionRatePercent != 50 {
		t.Fatalf("ExpectedAdoptionRatePercent = %v, want 50", snap.ExpectedAdoptionRatePercent)
	}
	if relDiff(snap.ActualAdoptionRatePercent, 60) > 1e-9 {
		t.Fatalf("ActualAdoptionRatePercent = %v, want 60", snap.ActualAdoptionRatePercent)
	}
	if relDiff(snap.AdoptionVarianceBps, 1000) > 1e-9 {
		t.Fatalf("AdoptionVarianceBps = %v, want 1000", snap.AdoptionVarianceBps)
	}
	if snap.Tier != enums.PerformanceTierExceeding {
		t.Fatalf("Tier = %s, want %s", snap.Tier, enums.PerformanceTierExceeding)
	}

	if relDiff(snap.Revenue.ExpectedRevenue, 43680) > 1e-9 {
		t.Fatalf("ExpectedRevenue = %v, want 43680", snap.Revenue.ExpectedRevenue)
	}
	if relDiff(snap.Revenue.ActualRevenue, 49600) > 1e-9 {
		t.Fatalf("ActualRevenue = %v, want 49600", snap.Revenue.ActualRevenue)
	}
	if relDiff(snap.RevenueVariance, 5920) > 1e-9 {
		t.Fatalf("RevenueVariance = %v, want 5920", snap.RevenueVariance)
	}
	if relDiff(snap.Revenue.VolumeContribution, -1680) > 1e-9 {
		t.Fatalf("VolumeContribution = %v, want -1680", snap.Revenue.VolumeContribution)
	}
	if relDiff(snap.Revenue.AdoptionContribution, 7904) > 1e-9 {
		t.Fatalf("AdoptionContribution = %v, want 7904", snap.Revenue.AdoptionContribution)
	}
	if relDiff(snap.Revenue.InteractionContribution, -304) > 1e-6 {
		t.Fatalf("InteractionContribution = %v, want -304", snap.Revenue.InteractionContribution)
	}

	if relDiff(snap.ACVRetentionPercent, 85) > 1e-9 {
		t.Fatalf("ACVRetentionPercent = %v, want 85", snap.ACVRetentionPercent)
	}
	if snap.ACVBand != enums.ACVBandRetained {
		t.Fatalf("ACVBand = %s, want %s", snap.ACVBand, enums.ACVBandRetained)
	}
}

func TestBuildSnapshotInsufficientDataUsesBaseline(t *testing.T) {
	snap := BuildSnapshot(SnapshotInputs{
		Contract:    snapshotContract(),
		Weeks:       snapshotWeeks()[2:4], // weeks 11 and 12 only
		Seasonality: snapshotCurve(),
	})

	if !snap.UsedBaseline {
		t.Fatal("two weeks of data must substitute the contract baseline")
	}
	if snap.Trailing.Orders != 2000 || snap.Trailing.WeeksWithData != 2 {
		t.Fatalf("trailing = %+v, want 2000 orders over 2 weeks", snap.Trailing)
	}

	// Baseline substitution pins actuals to the contract, so every
	// variance is zero and the tier reads as meeting.
	if snap.ActualAdoptionRatePercent != 50 {
		t.Fatalf("ActualAdoptionRatePercent = %v, want contract 50", snap.ActualAdoptionRatePercent)
	}
	if snap.ForecastAnnualVolume != 52000 {
		t.Fatalf("ForecastAnnualVolume = %v, want contract 52000", snap.ForecastAnnualVolume)
	}
	if snap.AdoptionVarianceBps != 0 || snap.RevenueVariance != 0 {
		t.Fatalf("variances = %v bps, %v revenue, want both 0", snap.AdoptionVarianceBps, snap.RevenueVariance)
	}
	if snap.Revenue.VolumeContribution != 0 || snap.Revenue.AdoptionContribution != 0 || snap.Revenue.InteractionContribution != 0 {
		t.Fatalf("contributions = %+v, want all 0", snap.Revenue)
	}
	if snap.Tier != enums.PerformanceTierMeeting {
		t.Fatalf("Tier = %s, want %s", snap.Tier, enums.PerformanceTierMeeting)
	}
	if relDiff(snap.Revenue.ExpectedRevenue, 43680) > 1e-9 {
		t.Fatalf("ExpectedRevenue = %v, want 43680", snap.Revenue.ExpectedRevenue)
	}

	// Expected trailing volume still reflects the curve even when the
	// actuals were too thin to trust.
	if relDiff(snap.ExpectedTrailingVolume, 4160) > 1e-9 {
		t.Fatalf("ExpectedTrailingVolume = %v, want 4160", snap.ExpectedTrailingVolume)
	}
}

func TestBuildSnapshotNoTelemetry(t *testing.T) {
	snap := BuildSnapshot(SnapshotInputs{
		Contract:    snapshotContract(),
		Seasonality: snapshotCurve(),
	})

	if !snap.UsedBaseline {
		t.Fatal("no telemetry must substitute the contract baseline")
	}
	if snap.LatestISOWeek != 0 || !snap.LatestWeekStart.IsZero() {
		t.Fatalf("latest week = %d %s, want zero values", snap.LatestISOWeek, snap.LatestWeekStart)
	}
	if snap.DaysLive != 0 {
		t.Fatalf("DaysLive = %d, want 0", snap.DaysLive)
	}
	if snap.ForecastAnnualVolume != 52000 || snap.ActualAdoptionRatePercent != 50 {
		t.Fatalf("baseline = forecast %v, adoption %v, want 52000 and 50", snap.ForecastAnnualVolume, snap.ActualAdoptionRatePercent)
	}
	if snap.Tier != enums.PerformanceTierMeeting {
		t.Fatalf("Tier = %s, want %s", snap.Tier, enums.PerformanceTierMeeting)
	}

	// Through week zero the window misses every curve point, so the share
	// is four uniform weeks: 52000 * (4/52) = 4000.
	if relDiff(snap.ExpectedTrailingVolume, 4000) > 1e-9 {
		t.Fatalf("ExpectedTrailingVolume = %v, want 4000", snap.ExpectedTrailingVolume)
	}
}

func TestBuildSnapshotSkipsACVBandWithoutStartingACV(t *testing.T) {
	c := snapshotContract()
	c.StartingACV = 0

	snap := BuildSnapshot(SnapshotInputs{
		Contract:    c,
		Weeks:       snapshotWeeks(),
		Seasonality: snapshotCurve(),
	})

	if snap.ACVRetentionPercent != 0 {
		t.Fatalf("ACVRetentionPercent = %v, want 0", snap.ACVRetentionPercent)
	}
	if snap.ACVBand != "" {
		t.Fatalf("ACVBand = %q, want empty", snap.ACVBand)
	}
}

func TestBuildSnapshotZeroWindowShareSkipsForecast(t *testing.T) {
	var points []CurvePoint
	for week := 9; week <= 12; week++ {
		points = append(points, CurvePoint{Vertical: "Total ex. Swimwear", ISOWeek: week, OrderPercentage: 0})
	}

	snap := BuildSnapshot(SnapshotInputs{
		Contract:    snapshotContract(),
		Weeks:       snapshotWeeks(),
		Seasonality: NewSeasonalityModel(points),
	})

	if snap.UsedBaseline {
		t.Fatal("sufficient data should not fall back to the baseline")
	}
	if snap.WindowSharePercent != 0 {
		t.Fatalf("WindowSharePercent = %v, want 0", snap.WindowSharePercent)
	}
	if snap.ForecastAnnualVolume != 0 {
		t.Fatalf("ForecastAnnualVolume = %v, want 0 when the share is 0", snap.ForecastAnnualVolume)
	}
}
