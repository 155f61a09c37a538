package validators

import "strings"

// SanitizeString trims whitespace and caps the length of free-text payload
// fields (attribute keys, value labels) before they reach the catalog.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
