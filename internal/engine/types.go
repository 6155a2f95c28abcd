// Package engine holds the pure computations behind merchant performance
// reporting: seasonality-adjusted expected volumes, trailing-window
// aggregates, projected vs. expected annual revenue, variance
// decomposition, and tier classification. Everything here is a
// deterministic function over in-memory inputs; callers own all I/O.
//
// The engine degrades silently instead of erroring: divisions are
// zero-guarded, missing dates yield zero days live, and missing curve
// points fall back to a uniform weekly percentage. The one signal
// callers must branch on is TrailingAggregate.HasSufficientData.
package engine

import (
	"time"

	"github.com/loopplatform/merchant-pulse/pkg/enums"
)

// Contract is the latest contract record for a merchant. Numeric fields
// default to zero when the source record is incomplete; the revenue
// formula applies them as-is.
type Contract struct {
	AccountID     string
	OpportunityID string
	MerchantName  string
	Vertical      string

	PricingModel enums.PricingModel
	LabelsPaidBy enums.LabelsPaidBy

	LoopSharePercent          float64
	InitialOffsetFee          float64
	RefundHandlingFee         float64
	DomesticReturnRatePercent float64
	BlendedAvgCostPerReturn   float64

	AnnualOrderVolume           float64
	AdoptionRateExpectedPercent float64
	ExpectedAnnualRevenue       float64

	NetACV      float64
	StartingACV float64
	EndingACV   float64
}

// WeekRow is one week of merchant telemetry. acceptedOffers ≤ offerShown
// ≤ ecommOrders is expected of the source but never enforced here.
type WeekRow struct {
	AccountID      string
	ISOWeek        int
	OrderWeekDate  time.Time
	FirstOfferDate time.Time

	EcommOrders    float64
	OfferShown     float64
	OfferNotShown  float64
	AcceptedOffers float64

	AttachRatePercent float64
}

// CurvePoint is one (curve, ISO week) entry of a seasonality curve.
type CurvePoint struct {
	Vertical        string
	ISOWeek         int
	OrderPercentage float64
}
