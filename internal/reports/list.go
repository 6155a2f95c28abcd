package reports

import (
	"time"

	"github.com/loopplatform/merchant-pulse/internal/engine"
	"github.com/loopplatform/merchant-pulse/pkg/enums"
	pkgpagination "github.com/loopplatform/merchant-pulse/pkg/pagination"
)

// ListParams filters and paginates the performance list. Window ≤ 0
// falls back to the default trailing window; Vertical and Tier are
// optional filters.
type ListParams struct {
	Window      int
	MinDaysLive int
	Vertical    string
	Tier        enums.PerformanceTier
	pkgpagination.Params
}

// PerformancePage is one page of computed merchant snapshots. Tier and
// MinDaysLive filter after snapshot computation, so a page may carry
// fewer items than the requested limit while the cursor still advances
// over the scanned contracts.
type PerformancePage struct {
	Items  []PerformanceItem `json:"items"`
	Cursor string            `json:"cursor"`
}

// PerformanceItem is the wire shape of one merchant snapshot. Rates are
// percents, money is annual dollars, variance is actual minus expected.
type PerformanceItem struct {
	AccountID     string             `json:"account_id"`
	OpportunityID string             `json:"opportunity_id"`
	MerchantName  string             `json:"merchant_name"`
	Vertical      string             `json:"vertical"`
	PricingModel  enums.PricingModel `json:"pricing_model"`

	LatestISOWeek   int        `json:"latest_iso_week"`
	LatestWeekStart *time.Time `json:"latest_week_start,omitempty"`
	DaysLive        int        `json:"days_live"`

	TrailingOrders         float64 `json:"trailing_orders"`
	TrailingAcceptedOffers float64 `json:"trailing_accepted_offers"`
	TrailingOffersShown    float64 `json:"trailing_offers_shown"`
	EligibilityRatePercent float64 `json:"eligibility_rate_percent"`
	WeeksWithData          int     `json:"weeks_with_data"`

	WindowSharePercent     float64 `json:"window_share_percent"`
	ExpectedTrailingVolume float64 `json:"expected_trailing_volume"`
	ForecastAnnualVolume   float64 `json:"forecast_annual_volume"`

	ExpectedAdoptionRatePercent float64 `json:"expected_adoption_rate_percent"`
	ActualAdoptionRatePercent   float64 `json:"actual_adoption_rate_percent"`
	AdoptionVarianceBps         float64 `json:"adoption_variance_bps"`

	ExpectedRevenue         float64 `json:"expected_revenue"`
	ActualRevenue           float64 `json:"actual_revenue"`
	RevenueVariance         float64 `json:"revenue_variance"`
	VolumeContribution      float64 `json:"volume_contribution"`
	AdoptionContribution    float64 `json:"adoption_contribution"`
	InteractionContribution float64 `json:"interaction_contribution"`

	Tier enums.PerformanceTier `json:"tier"`

	ACVRetentionPercent float64       `json:"acv_retention_percent"`
	ACVBand             enums.ACVBand `json:"acv_band,omitempty"`

	UsedBaseline bool `json:"used_baseline"`
}

type opportunityQuery struct {
	vertical string
	limit    int
	cursor   *pkgpagination.Cursor
}

// ToPerformanceItem flattens a snapshot into its wire shape.
func ToPerformanceItem(s engine.Snapshot) PerformanceItem {
	item := PerformanceItem{
		AccountID:     s.AccountID,
		OpportunityID: s.OpportunityID,
		MerchantName:  s.MerchantName,
		Vertical:      s.Vertical,
		PricingModel:  s.PricingModel,

		LatestISOWeek: s.LatestISOWeek,
		DaysLive:      s.DaysLive,

		TrailingOrders:         s.Trailing.Orders,
		TrailingAcceptedOffers: s.Trailing.AcceptedOffers,
		TrailingOffersShown:    s.Trailing.OffersShown,
		EligibilityRatePercent: s.Trailing.EligibilityRate * 100,
		WeeksWithData:          s.Trailing.WeeksWithData,

		WindowSharePercent:     s.WindowSharePercent,
		ExpectedTrailingVolume: s.ExpectedTrailingVolume,
		ForecastAnnualVolume:   s.ForecastAnnualVolume,

		ExpectedAdoptionRatePercent: s.ExpectedAdoptionRatePercent,
		ActualAdoptionRatePercent:   s.ActualAdoptionRatePercent,
		AdoptionVarianceBps:         s.AdoptionVarianceBps,

		ExpectedRevenue:         s.Revenue.ExpectedRevenue,
		ActualRevenue:           s.Revenue.ActualRevenue,
		RevenueVariance:         s.RevenueVariance,
		VolumeContribution:      s.Revenue.VolumeContribution,
		AdoptionContribution:    s.Revenue.AdoptionContribution,
		InteractionContribution: s.Revenue.InteractionContribution,

		Tier: s.Tier,

		ACVRetentionPercent: s.ACVRetentionPercent,
		ACVBand:             s.ACVBand,

		UsedBaseline: s.UsedBaseline,
	}
	if !s.LatestWeekStart.IsZero() {
		start := s.LatestWeekStart
		item.LatestWeekStart = &start
	}
	return item
}
