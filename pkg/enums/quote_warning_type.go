package enums

import "fmt"

// QuoteWarningType classifies the non-fatal notes a quote can carry.
type QuoteWarningType string

const (
	QuoteWarningTypeClampedToMOQ QuoteWarningType = "clamped_to_moq"
	QuoteWarningTypeNoTierMatch  QuoteWarningType = "no_tier_match"
	QuoteWarningTypePriceChanged QuoteWarningType = "price_changed"
)

var validQuoteWarningTypes = []QuoteWarningType{
	QuoteWarningTypeClampedToMOQ,
	QuoteWarningTypeNoTierMatch,
	QuoteWarningTypePriceChanged,
}

// String implements fmt.Stringer.
func (q QuoteWarningType) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuoteWarningType.
func (q QuoteWarningType) IsValid() bool {
	for _, candidate := range validQuoteWarningTypes {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuoteWarningType converts raw input into a QuoteWarningType.
func ParseQuoteWarningType(value string) (QuoteWarningType, error) {
	for _, candidate := range validQuoteWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote warning type %q", value)
}
