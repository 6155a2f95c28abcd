package reports

import (
	"github.com/loopplatform/merchant-pulse/internal/engine"
	"github.com/loopplatform/merchant-pulse/pkg/db/models"
)

// The engine works in float64; storage keeps money and rates in
// decimals. Precision loss at this boundary is acceptable because every
// engine output is a projection, not a ledger figure.

func toContract(m models.Opportunity) engine.Contract {
	return engine.Contract{
		AccountID:     m.AccountID,
		OpportunityID: m.OpportunityID,
		MerchantName:  m.MerchantName,
		Vertical:      m.Vertical,

		PricingModel: m.PricingModel,
		LabelsPaidBy: m.LabelsPaidBy,

		LoopSharePercent:          m.LoopSharePercent.InexactFloat64(),
		InitialOffsetFee:          m.InitialOffsetFee.InexactFloat64(),
		RefundHandlingFee:         m.RefundHandlingFee.InexactFloat64(),
		DomesticReturnRatePercent: m.DomesticReturnRatePercent.InexactFloat64(),
		BlendedAvgCostPerReturn:   m.BlendedAvgCostPerReturn.InexactFloat64(),

		AnnualOrderVolume:           float64(m.AnnualOrderVolume),
		AdoptionRateExpectedPercent: m.AdoptionRateExpectedPercent.InexactFloat64(),
		ExpectedAnnualRevenue:       m.ExpectedAnnualRevenue.InexactFloat64(),

		NetACV:      m.NetACV.InexactFloat64(),
		StartingACV: m.StartingACV.InexactFloat64(),
		EndingACV:   m.EndingACV.InexactFloat64(),
	}
}

func toWeekRow(m models.WeeklyActual) engine.WeekRow {
	row := engine.WeekRow{
		AccountID:     m.AccountID,
		ISOWeek:       m.ISOWeek,
		OrderWeekDate: m.OrderWeekDate,

		EcommOrders:    float64(m.EcommOrders),
		OfferShown:     float64(m.OfferShown),
		OfferNotShown:  float64(m.OfferNotShown),
		AcceptedOffers: float64(m.AcceptedOffers),

		AttachRatePercent: m.AttachRatePercent.InexactFloat64(),
	}
	if m.FirstOfferDate != nil {
		row.FirstOfferDate = *m.FirstOfferDate
	}
	return row
}

func toCurvePoint(m models.SeasonalityCurve) engine.CurvePoint {
	return engine.CurvePoint{
		Vertical:        m.Vertical,
		ISOWeek:         m.ISOWeek,
		OrderPercentage: m.OrderPercentage.InexactFloat64(),
	}
}

func toCurvePoints(rows []models.SeasonalityCurve) []engine.CurvePoint {
	points := make([]engine.CurvePoint, len(rows))
	for i, row := range rows {
		points[i] = toCurvePoint(row)
	}
	return points
}

// groupWeekRows buckets telemetry rows per merchant account.
func groupWeekRows(rows []models.WeeklyActual) map[string][]engine.WeekRow {
	grouped := make(map[string][]engine.WeekRow)
	for _, row := range rows {
		grouped[row.AccountID] = append(grouped[row.AccountID], toWeekRow(row))
	}
	return grouped
}
