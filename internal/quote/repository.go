package quote

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvasquez/pricegrid-backend/pkg/db/models"
)

// Repository persists computed quote records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a computed quote.
func (r *Repository) Insert(ctx context.Context, record *models.Quote) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListRecent returns the latest quotes for a product, newest first.
func (r *Repository) ListRecent(ctx context.Context, productID uuid.UUID, limit int) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&quotes).
		Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}
