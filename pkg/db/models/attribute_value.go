package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AttributeValue is one selectable setting of a product attribute. When
// UseTierAdjustment is set, Tiers supersedes the flat PriceAdjustment.
type AttributeValue struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AttributeID       uuid.UUID            `gorm:"column:attribute_id;type:uuid;not null;index"`
	Value             string               `gorm:"column:value;not null"`
	Name              string               `gorm:"column:name;not null"`
	PriceAdjustment   decimal.Decimal      `gorm:"column:price_adjustment;type:numeric(12,4);not null;default:0"`
	IsPercentage      bool                 `gorm:"column:is_percentage;not null;default:false"`
	WeightAdjustment  decimal.Decimal      `gorm:"column:weight_adjustment;type:numeric(12,4);not null;default:0"`
	LengthAdjustment  decimal.Decimal      `gorm:"column:length_adjustment;type:numeric(12,4);not null;default:0"`
	WidthAdjustment   decimal.Decimal      `gorm:"column:width_adjustment;type:numeric(12,4);not null;default:0"`
	HeightAdjustment  decimal.Decimal      `gorm:"column:height_adjustment;type:numeric(12,4);not null;default:0"`
	UseTierAdjustment bool                 `gorm:"column:use_tier_adjustment;not null;default:false"`
	Position          int                  `gorm:"column:position;not null;default:0"`
	Tiers             []AttributeValueTier `gorm:"foreignKey:ValueID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// AttributeValueTier is a quantity breakpoint for a tiered attribute
// adjustment, scoped the same way as product price tiers.
type AttributeValueTier struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ValueID      uuid.UUID       `gorm:"column:value_id;type:uuid;not null;index"`
	MinQty       int             `gorm:"column:min_qty;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,4);not null"`
	CustomerRole string          `gorm:"column:customer_role;not null;default:''"`
	Position     int             `gorm:"column:position;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
