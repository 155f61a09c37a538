package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvasquez/pricegrid-backend/pkg/db/models"
)

// Repository wires together product pricing persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindWithPricing loads the product with its full pricing configuration:
// tier schedule, attributes, attribute values and their adjustment tiers.
func (r *Repository) FindWithPricing(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, min_qty ASC")
		}).
		Preload("Attributes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Attributes.Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Attributes.Values.Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, min_qty ASC")
		}).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row with its associations.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ReplaceTiers replaces the product's full tier schedule.
func (r *Repository) ReplaceTiers(ctx context.Context, productID uuid.UUID, tiers []models.PriceTier) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.PriceTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	return tx.Create(&tiers).Error
}

// ReplaceAttributes replaces the product's attributes and their values.
// Child rows are removed explicitly so the swap works on engines that do
// not enforce the cascade.
func (r *Repository) ReplaceAttributes(ctx context.Context, productID uuid.UUID, attrs []models.ProductAttribute) error {
	tx := r.db.WithContext(ctx)

	attrIDs := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.ProductAttribute{}).
		Select("id").
		Where("product_id = ?", productID)
	valueIDs := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.AttributeValue{}).
		Select("id").
		Where("attribute_id IN (?)", attrIDs)

	if err := tx.Where("value_id IN (?)", valueIDs).Delete(&models.AttributeValueTier{}).Error; err != nil {
		return err
	}
	if err := tx.Where("attribute_id IN (?)", attrIDs).Delete(&models.AttributeValue{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductAttribute{}).Error; err != nil {
		return err
	}
	if len(attrs) == 0 {
		return nil
	}
	return tx.Create(&attrs).Error
}
