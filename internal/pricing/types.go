// Package pricing implements tier resolution, price interpolation, and
// attribute adjustment accumulation over immutable pricing snapshots.
// Every operation is a pure computation; callers own the fallback policy
// when no tier matches.
package pricing

import "github.com/shopspring/decimal"

// Tier is one quantity breakpoint of a price schedule. An empty
// CustomerRole means the tier applies to every role.
type Tier struct {
	MinQty       int
	UnitPrice    decimal.Decimal
	CustomerRole string
}

// AttributeValue is one selectable option of an Attribute. When
// UseTierAdjustment is set, TierAdjustments supersedes the flat
// PriceAdjustment.
type AttributeValue struct {
	Value                       string
	PriceAdjustment             decimal.Decimal
	PriceAdjustmentIsPercentage bool
	WeightAdjustment            decimal.Decimal
	LengthAdjustment            decimal.Decimal
	WidthAdjustment             decimal.Decimal
	HeightAdjustment            decimal.Decimal
	UseTierAdjustment           bool
	TierAdjustments             []Tier
}

// Attribute is a configurable option on a priced item. SelectedValue is
// the chosen AttributeValue's value string; empty means unselected.
type Attribute struct {
	Key           string
	IsRequired    bool
	SelectedValue string
	Values        []AttributeValue
}
