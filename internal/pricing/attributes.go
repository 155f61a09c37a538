package pricing

import (
	"fmt"

	pkgerrors "github.com/mvasquez/pricegrid-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// AttributeAdjustment sums the price contribution of every attribute with
// a selection. Tiered adjustments resolve through FindTier and contribute
// the matched tier's price as an absolute addend; flat percentage
// adjustments scale against the supplied base price.
func AttributeAdjustment(qty int, basePrice decimal.Decimal, attrs []Attribute, roles []string) (decimal.Decimal, error) {
	if qty < 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if basePrice.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}

	total := decimal.Zero
	for _, attr := range attrs {
		if attr.SelectedValue == "" {
			continue
		}
		value := selectedValue(attr)
		if value == nil {
			return decimal.Zero, pkgerrors.New(
				pkgerrors.CodeValidation,
				fmt.Sprintf("attribute %q: selected value %q is not an option", attr.Key, attr.SelectedValue),
			)
		}

		if value.UseTierAdjustment {
			tier, err := FindTier(qty, value.TierAdjustments, roles)
			if err != nil {
				return decimal.Zero, err
			}
			if tier != nil {
				total = total.Add(tier.UnitPrice)
			}
			continue
		}

		if value.PriceAdjustmentIsPercentage {
			total = total.Add(basePrice.Mul(value.PriceAdjustment).Div(oneHundred))
			continue
		}
		total = total.Add(value.PriceAdjustment)
	}
	return total, nil
}

func selectedValue(attr Attribute) *AttributeValue {
	for i := range attr.Values {
		if attr.Values[i].Value == attr.SelectedValue {
			return &attr.Values[i]
		}
	}
	return nil
}
