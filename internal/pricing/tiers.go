package pricing

import (
	"fmt"

	pkgerrors "github.com/mvasquez/pricegrid-backend/pkg/errors"
)

// FindTier returns the tier that best matches the requested quantity, or
// nil when none qualifies. Role-specific tiers win over role-agnostic
// tiers whenever one qualifies; with multiple roles, the first role in
// caller order that has a qualifying tier wins, taking the best match
// within that role.
func FindTier(qty int, tiers []Tier, roles []string) (*Tier, error) {
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if err := validateTiers(tiers); err != nil {
		return nil, err
	}

	for _, role := range roles {
		if role == "" {
			continue
		}
		if tier := bestForRole(qty, tiers, role); tier != nil {
			return tier, nil
		}
	}

	return bestForRole(qty, tiers, ""), nil
}

// bestForRole picks the greatest MinQty <= qty among tiers scoped to the
// given role. Duplicate quantities keep the first occurrence in input order.
func bestForRole(qty int, tiers []Tier, role string) *Tier {
	var selected *Tier
	for _, tier := range tiers {
		if tier.CustomerRole != role {
			continue
		}
		if tier.MinQty <= qty {
			if selected == nil || tier.MinQty > selected.MinQty {
				copy := tier
				selected = &copy
			}
		}
	}
	return selected
}

func validateTiers(tiers []Tier) error {
	for i, tier := range tiers {
		if tier.MinQty < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("tier %d: quantity cannot be negative", i))
		}
		if tier.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("tier %d: unit price cannot be negative", i))
		}
	}
	return nil
}
