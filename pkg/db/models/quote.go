package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvasquez/pricegrid-backend/pkg/types"
)

// Quote is a persisted record of one computed price quote.
type Quote struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID           uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index"`
	RequestedQty        int                 `gorm:"column:requested_qty;not null"`
	PricedQty           int                 `gorm:"column:priced_qty;not null"`
	UnitPrice           decimal.Decimal     `gorm:"column:unit_price;type:numeric(12,4);not null"`
	AttributeAdjustment decimal.Decimal     `gorm:"column:attribute_adjustment;type:numeric(12,4);not null;default:0"`
	TotalPrice          decimal.Decimal     `gorm:"column:total_price;type:numeric(12,4);not null"`
	CustomerRoles       string              `gorm:"column:customer_roles;not null;default:''"`
	AppliedTier         *types.AppliedTier  `gorm:"column:applied_tier;type:jsonb"`
	Warnings            types.QuoteWarnings `gorm:"column:warnings;type:jsonb"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
}
