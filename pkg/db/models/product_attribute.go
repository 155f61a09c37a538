package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductAttribute is a configurable option on a priced product.
type ProductAttribute struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	Key        string           `gorm:"column:key;not null"`
	Name       string           `gorm:"column:name;not null"`
	IsRequired bool             `gorm:"column:is_required;not null;default:false"`
	Position   int              `gorm:"column:position;not null;default:0"`
	Values     []AttributeValue `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
