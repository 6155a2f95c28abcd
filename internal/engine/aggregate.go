package engine

// DefaultTrailingWindow is the trailing window size, in ISO weeks, used
// across reporting when callers do not override it.
const DefaultTrailingWindow = 4

// TrailingAggregate reduces a merchant's weekly telemetry over a
// trailing window. Rates are decimals (0.5 = 50%), zero when no orders.
type TrailingAggregate struct {
	Orders         float64
	AcceptedOffers float64
	OffersShown    float64

	AdoptionRate    float64
	EligibilityRate float64

	// WeeksWithData counts distinct ISO weeks inside the window with at
	// least one order. HasSufficientData gates whether downstream
	// projections may trust trailing actuals or must fall back to
	// contract baselines.
	WeeksWithData     int
	HasSufficientData bool
}

// AggregateTrailing sums rows with throughISOWeek-windowSize < ISOWeek ≤
// throughISOWeek. windowSize ≤ 0 falls back to DefaultTrailingWindow.
func AggregateTrailing(rows []WeekRow, throughISOWeek, windowSize int) TrailingAggregate {
	if windowSize <= 0 {
		windowSize = DefaultTrailingWindow
	}

	var agg TrailingAggregate
	weeksSeen := make(map[int]struct{})
	for _, row := range rows {
		if row.ISOWeek > throughISOWeek || row.ISOWeek <= throughISOWeek-windowSize {
			continue
		}
		agg.Orders += row.EcommOrders
		agg.AcceptedOffers += row.AcceptedOffers
		agg.OffersShown += row.OfferShown
		if row.EcommOrders > 0 {
			weeksSeen[row.ISOWeek] = struct{}{}
		}
	}

	agg.WeeksWithData = len(weeksSeen)
	if agg.Orders > 0 {
		agg.AdoptionRate = agg.AcceptedOffers / agg.Orders
		agg.EligibilityRate = agg.OffersShown / agg.Orders
	}
	agg.HasSufficientData = agg.WeeksWithData >= windowSize
	return agg
}
