package enums

import "fmt"

// PricingMode selects how a product's unit price reacts to quantity.
type PricingMode string

const (
	// PricingModeTier snaps to the best qualifying tier breakpoint.
	PricingModeTier PricingMode = "tier"
	// PricingModeInterpolate blends linearly between tier breakpoints.
	PricingModeInterpolate PricingMode = "interpolate"
)

var validPricingModes = []PricingMode{
	PricingModeTier,
	PricingModeInterpolate,
}

// String implements fmt.Stringer.
func (p PricingMode) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PricingMode.
func (p PricingMode) IsValid() bool {
	for _, candidate := range validPricingModes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePricingMode converts raw input into a PricingMode.
func ParsePricingMode(value string) (PricingMode, error) {
	for _, candidate := range validPricingModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing mode %q", value)
}
