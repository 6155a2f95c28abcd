package enums

import "fmt"

// LabelsPaidBy identifies which party bears return label shipping costs.
type LabelsPaidBy string

const (
	LabelsPaidByLoop     LabelsPaidBy = "loop"
	LabelsPaidByMerchant LabelsPaidBy = "merchant"
)

var validLabelsPaidBy = []LabelsPaidBy{
	LabelsPaidByLoop,
	LabelsPaidByMerchant,
}

// String implements fmt.Stringer.
func (l LabelsPaidBy) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LabelsPaidBy.
func (l LabelsPaidBy) IsValid() bool {
	for _, candidate := range validLabelsPaidBy {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLabelsPaidBy converts raw input into a LabelsPaidBy.
func ParseLabelsPaidBy(value string) (LabelsPaidBy, error) {
	for _, candidate := range validLabelsPaidBy {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid labels paid by %q", value)
}
