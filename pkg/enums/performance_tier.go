package enums

import "fmt"

// PerformanceTier is the adoption-variance classification for a merchant,
// ordered from best to worst.
type PerformanceTier string

const (
	PerformanceTierExceeding          PerformanceTier = "exceeding"
	PerformanceTierMeeting            PerformanceTier = "meeting"
	PerformanceTierSlightlyBelow      PerformanceTier = "slightly_below"
	PerformanceTierSignificantlyBelow PerformanceTier = "significantly_below"
)

var validPerformanceTiers = []PerformanceTier{
	PerformanceTierExceeding,
	PerformanceTierMeeting,
	PerformanceTierSlightlyBelow,
	PerformanceTierSignificantlyBelow,
}

// String implements fmt.Stringer.
func (p PerformanceTier) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PerformanceTier.
func (p PerformanceTier) IsValid() bool {
	for _, candidate := range validPerformanceTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePerformanceTier converts raw input into a PerformanceTier.
func ParsePerformanceTier(value string) (PerformanceTier, error) {
	for _, candidate := range validPerformanceTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid performance tier %q", value)
}
