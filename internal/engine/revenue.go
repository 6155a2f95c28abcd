package engine

import "github.com/loopplatform/merchant-pulse/pkg/enums"

// ProjectAnnualRevenue applies the contract's pricing model to a volume
// and adoption input. It is the single revenue formula, called with
// expected inputs for the contract baseline and with trailing actuals
// for the realized projection.
//
// Flat contracts return the contract-stated figure regardless of inputs.
// Rev-share contracts earn the offset fee on adopted orders and the
// refund-handling fee on returned non-adopted orders, both at Loop's
// share; when Loop pays return labels the blended label cost is
// deducted. The result may be negative and is never clamped. Unknown
// pricing models fall back to the contract-stated figure.
func ProjectAnnualRevenue(c Contract, volume, adoptionRatePercent float64) float64 {
	switch c.PricingModel {
	case enums.PricingModelFlat:
		return c.ExpectedAnnualRevenue

	case enums.PricingModelRevShare:
		adoption := adoptionRatePercent / 100
		returnRate := c.DomesticReturnRatePercent / 100
		loopShare := c.LoopSharePercent / 100

		offsetFees := volume * adoption * c.InitialOffsetFee
		refundFees := volume * (1 - adoption) * returnRate * c.RefundHandlingFee
		revenue := (offsetFees + refundFees) * loopShare

		if c.LabelsPaidBy == enums.LabelsPaidByLoop {
			revenue -= volume * returnRate * c.BlendedAvgCostPerReturn
		}
		return revenue

	default:
		return c.ExpectedAnnualRevenue
	}
}
