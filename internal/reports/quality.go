package reports

import (
	"math"
	"sort"
	"time"

	"github.com/loopplatform/merchant-pulse/internal/engine"
	"github.com/loopplatform/merchant-pulse/pkg/db/models"
)

// curveSumTolerancePoints is how far a curve's week 1–52 percentage sum
// may drift from 100 before it is flagged.
const curveSumTolerancePoints = 1.0

// DataQualityReport surfaces the source-data defects the engine absorbs
// silently: funnel-order violations, missing first-offer dates, curve
// gaps that trigger the uniform fallback, and stale telemetry.
type DataQualityReport struct {
	GeneratedAt time.Time `json:"generated_at"`

	Merchants                 int `json:"merchants"`
	MerchantsWithoutTelemetry int `json:"merchants_without_telemetry"`

	TelemetryViolationRows int `json:"telemetry_violation_rows"`
	MissingFirstOfferRows  int `json:"missing_first_offer_rows"`

	// FallbackCurveLookups counts (curve, week) lookups in the current
	// trailing window that would miss the stored curves and land on the
	// uniform weekly default.
	FallbackCurveLookups int `json:"fallback_curve_lookups"`

	NewestOrderWeekDate *time.Time `json:"newest_order_week_date,omitempty"`
	TelemetryAgeDays    int        `json:"telemetry_age_days"`

	Curves []CurveQuality `json:"curves"`
}

// CurveQuality checks one seasonality curve: how many of weeks 1–52 it
// covers and whether its percentages still sum to roughly 100.
type CurveQuality struct {
	Curve        string  `json:"curve"`
	WeeksCovered int     `json:"weeks_covered"`
	PercentSum   float64 `json:"percent_sum"`
	Deviates     bool    `json:"deviates"`
}

func curveQualities(rows []models.SeasonalityCurve) []CurveQuality {
	weeks := make(map[string]map[int]struct{})
	sums := make(map[string]float64)
	for _, row := range rows {
		if weeks[row.Vertical] == nil {
			weeks[row.Vertical] = make(map[int]struct{})
		}
		weeks[row.Vertical][row.ISOWeek] = struct{}{}
		sums[row.Vertical] += row.OrderPercentage.InexactFloat64()
	}

	names := make([]string, 0, len(weeks))
	for name := range weeks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]CurveQuality, len(names))
	for i, name := range names {
		sum := sums[name]
		out[i] = CurveQuality{
			Curve:        name,
			WeeksCovered: len(weeks[name]),
			PercentSum:   sum,
			Deviates:     math.Abs(sum-100) > curveSumTolerancePoints,
		}
	}
	return out
}

// fallbackLookupCount replays the curve lookups the current trailing
// window would make for every vertical in the program and counts the
// misses. Weeks before week 1 always miss; the engine treats them as
// fallback too.
func fallbackLookupCount(verticals []string, rows []models.SeasonalityCurve, newest *time.Time) int {
	if newest == nil || len(verticals) == 0 {
		return 0
	}
	_, week := newest.ISOWeek()
	if week > 52 {
		week = 52
	}

	stored := make(map[string]map[int]struct{})
	for _, row := range rows {
		if stored[row.Vertical] == nil {
			stored[row.Vertical] = make(map[int]struct{})
		}
		stored[row.Vertical][row.ISOWeek] = struct{}{}
	}

	curves := make(map[string]struct{})
	for _, vertical := range verticals {
		curves[engine.ResolveCurveName(vertical)] = struct{}{}
	}

	count := 0
	for curve := range curves {
		for w := week - engine.DefaultTrailingWindow + 1; w <= week; w++ {
			if w < 1 {
				count++
				continue
			}
			if _, ok := stored[curve][w]; !ok {
				count++
			}
		}
	}
	return count
}
