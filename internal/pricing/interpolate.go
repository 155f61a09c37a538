package pricing

import (
	"sort"

	pkgerrors "github.com/mvasquez/pricegrid-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// InterpolatePrice returns a unit price for a quantity that may fall
// between tier breakpoints, blending linearly between the bracketing
// tiers. Only role-agnostic tiers participate. Quantities outside the
// tier range clamp to the nearest breakpoint's price.
func InterpolatePrice(qty int, tiers []Tier) (decimal.Decimal, error) {
	if qty < 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if err := validateTiers(tiers); err != nil {
		return decimal.Zero, err
	}

	points := make([]Tier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.CustomerRole != "" {
			continue
		}
		points = append(points, tier)
	}
	if len(points) == 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "at least one role-agnostic tier is required")
	}

	// Stable sort keeps input order for equal quantities, so dedup below
	// retains the first occurrence.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].MinQty < points[j].MinQty
	})
	deduped := points[:1]
	for _, tier := range points[1:] {
		if tier.MinQty == deduped[len(deduped)-1].MinQty {
			continue
		}
		deduped = append(deduped, tier)
	}
	points = deduped

	if qty <= points[0].MinQty {
		return points[0].UnitPrice, nil
	}
	last := points[len(points)-1]
	if qty >= last.MinQty {
		return last.UnitPrice, nil
	}

	for i := 1; i < len(points); i++ {
		lo, hi := points[i-1], points[i]
		if qty >= hi.MinQty {
			continue
		}
		span := decimal.NewFromInt(int64(hi.MinQty - lo.MinQty))
		fraction := decimal.NewFromInt(int64(qty - lo.MinQty)).Div(span)
		return lo.UnitPrice.Add(fraction.Mul(hi.UnitPrice.Sub(lo.UnitPrice))), nil
	}

	// Unreachable: the clamp above handles qty >= last.MinQty.
	return last.UnitPrice, nil
}
