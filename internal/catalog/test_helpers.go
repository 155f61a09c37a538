package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mvasquez/pricegrid-backend/pkg/db/models"
	"github.com/mvasquez/pricegrid-backend/pkg/enums"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DSN keeps every pooled connection on the same
	// in-memory database while isolating tests from each other.
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  description TEXT,
  base_price TEXT NOT NULL DEFAULT '0',
  pricing_mode TEXT NOT NULL DEFAULT 'tier',
  moq INTEGER NOT NULL DEFAULT 1,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS price_tiers (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  min_qty INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  customer_role TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_attributes (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  key TEXT NOT NULL,
  name TEXT NOT NULL,
  is_required INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS attribute_values (
  id TEXT PRIMARY KEY,
  attribute_id TEXT NOT NULL,
  value TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  price_adjustment TEXT NOT NULL DEFAULT '0',
  is_percentage INTEGER NOT NULL DEFAULT 0,
  weight_adjustment TEXT NOT NULL DEFAULT '0',
  length_adjustment TEXT NOT NULL DEFAULT '0',
  width_adjustment TEXT NOT NULL DEFAULT '0',
  height_adjustment TEXT NOT NULL DEFAULT '0',
  use_tier_adjustment INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS attribute_value_tiers (
  id TEXT PRIMARY KEY,
  value_id TEXT NOT NULL,
  min_qty INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  customer_role TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`}

	for _, stmt := range statements {
		require.NoError(t, gdb.Exec(stmt).Error)
	}

	return gdb
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, mode enums.PricingMode) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		SKU:         "sku-" + uuid.NewString(),
		Title:       "Business Cards",
		BasePrice:   decimal.RequireFromString("5.00"),
		PricingMode: mode,
		MOQ:         1,
		IsActive:    true,
	}
	require.NoError(t, tx.Create(product).Error)
	return product
}
