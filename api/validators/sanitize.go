package validators

import "strings"

// SanitizeString trims surrounding whitespace and clamps to maxLen
// bytes. maxLen ≤ 0 trims only, which is how free-text filters like
// vertical names are handled before validation.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
