package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/mvasquez/pricegrid-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// QuoteWarning captures a non-fatal note attached to a computed quote.
type QuoteWarning struct {
	Type    enums.QuoteWarningType `json:"type"`
	Message string                 `json:"message"`
}

// QuoteWarnings is a slice marshaled as JSONB.
type QuoteWarnings []QuoteWarning

// Value serializes the warnings to JSON.
func (q QuoteWarnings) Value() (driver.Value, error) {
	if q == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q)
}

// Scan decodes JSONB into the warning slice.
func (q *QuoteWarnings) Scan(value interface{}) error {
	if value == nil {
		*q = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded QuoteWarnings
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*q = decoded
	return nil
}

// AppliedTier records the tier breakpoint a quote snapped to.
type AppliedTier struct {
	Label        string          `json:"label"`
	MinQty       int             `json:"min_qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CustomerRole string          `json:"customer_role,omitempty"`
}

// Value serializes the applied tier to JSON.
func (a *AppliedTier) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan decodes a JSON object into the applied tier.
func (a *AppliedTier) Scan(value interface{}) error {
	if value == nil {
		*a = AppliedTier{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, a)
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
