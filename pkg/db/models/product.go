package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvasquez/pricegrid-backend/pkg/enums"
)

// Product is the canonical priced listing plus its pricing configuration.
type Product struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU         string             `gorm:"column:sku;not null;uniqueIndex"`
	Title       string             `gorm:"column:title;not null"`
	Description *string            `gorm:"column:description"`
	BasePrice   decimal.Decimal    `gorm:"column:base_price;type:numeric(12,4);not null"`
	PricingMode enums.PricingMode  `gorm:"column:pricing_mode;not null;default:tier"`
	MOQ         int                `gorm:"column:moq;not null;default:1"`
	IsActive    bool               `gorm:"column:is_active;not null;default:true"`
	Tiers       []PriceTier        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Attributes  []ProductAttribute `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
