package engine

import "github.com/loopplatform/merchant-pulse/pkg/enums"

// ClassifyVarianceBps maps a signed basis-point adoption variance to a
// performance tier. Total over all inputs; boundaries are inclusive as
// written.
func ClassifyVarianceBps(varianceBps float64) enums.PerformanceTier {
	switch {
	case varianceBps > 500:
		return enums.PerformanceTierExceeding
	case varianceBps >= -500:
		return enums.PerformanceTierMeeting
	case varianceBps >= -1000:
		return enums.PerformanceTierSlightlyBelow
	default:
		return enums.PerformanceTierSignificantlyBelow
	}
}

// ClassifyACVRetention maps ending ACV as a percentage of starting ACV
// to a retention band. This intentionally stays a separate function from
// ClassifyVarianceBps: the two classify different units against
// different thresholds.
func ClassifyACVRetention(pctOfOriginal float64) enums.ACVBand {
	switch {
	case pctOfOriginal > 100:
		return enums.ACVBandExpanding
	case pctOfOriginal >= 80:
		return enums.ACVBandRetained
	case pctOfOriginal >= 50:
		return enums.ACVBandReduced
	case pctOfOriginal >= 30:
		return enums.ACVBandSignificantlyReduced
	default:
		return enums.ACVBandCritical
	}
}
