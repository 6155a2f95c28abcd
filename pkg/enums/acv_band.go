package enums

import "fmt"

// ACVBand classifies ending ACV as a percentage of starting ACV. It is
// deliberately distinct from PerformanceTier: the two use different
// thresholds over different units and must not be conflated.
type ACVBand string

const (
	ACVBandExpanding            ACVBand = "expanding"
	ACVBandRetained             ACVBand = "retained"
	ACVBandReduced              ACVBand = "reduced"
	ACVBandSignificantlyReduced ACVBand = "significantly_reduced"
	ACVBandCritical             ACVBand = "critical"
)

var validACVBands = []ACVBand{
	ACVBandExpanding,
	ACVBandRetained,
	ACVBandReduced,
	ACVBandSignificantlyReduced,
	ACVBandCritical,
}

// String implements fmt.Stringer.
func (a ACVBand) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ACVBand.
func (a ACVBand) IsValid() bool {
	for _, candidate := range validACVBands {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseACVBand converts raw input into an ACVBand.
func ParseACVBand(value string) (ACVBand, error) {
	for _, candidate := range validACVBands {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid acv band %q", value)
}
