package quote

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mvasquez/pricegrid-backend/internal/catalog"
	"github.com/mvasquez/pricegrid-backend/pkg/db"
	"github.com/mvasquez/pricegrid-backend/pkg/db/models"
	"github.com/mvasquez/pricegrid-backend/pkg/enums"
	pkgerrors "github.com/mvasquez/pricegrid-backend/pkg/errors"
)

func setupQuoteTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:quote_" + uuid.NewString() + "?mode=memory&cache=shared"
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
);`, `
CREATE TABLE IF NOT EXISTS quotes (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  requested_qty INTEGER NOT NULL,
  priced_qty INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  attribute_adjustment TEXT NOT NULL DEFAULT '0',
  total_price TEXT NOT NULL,
  customer_roles TEXT NOT NULL DEFAULT '',
  applied_tier TEXT,
  warnings TEXT,
  created_at DATETIME
);`}

	for _, stmt := range statements {
		require.NoError(t, gdb.Exec(stmt).Error)
	}
	return gdb
}

type fakeCache struct {
	data map[string]string
	sets int
	gets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.gets++
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", assertCacheMissErr
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.sets++
	f.data[key] = value.(string)
	return nil
}

func (f *fakeCache) QuoteKey(parts ...string) string {
	key := "pg:quote"
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

var assertCacheMissErr = errMiss{}

type errMiss struct{}

func (errMiss) Error() string { return "cache miss" }

type fakeSink struct {
	events []QuoteComputedEvent
}

func (f *fakeSink) PublishQuoteComputed(ctx context.Context, event QuoteComputedEvent) error {
	f.events = append(f.events, event)
	return nil
}

type quoteFixture struct {
	svc     Service
	gdb     *gorm.DB
	cache   *fakeCache
	sink    *fakeSink
	catalog catalog.Service
}

func newQuoteFixture(t *testing.T) *quoteFixture {
	t.Helper()
	gdb := setupQuoteTestDB(t)
	client := db.NewFromGorm(gdb)
	catalogSvc := catalog.NewService(client)
	cache := newFakeCache()
	sink := &fakeSink{}
	svc := NewService(catalogSvc, Options{
		Repo:     NewRepository(gdb),
		Cache:    cache,
		CacheTTL: time.Minute,
		Events:   sink,
	})
	return &quoteFixture{svc: svc, gdb: gdb, cache: cache, sink: sink, catalog: catalogSvc}
}

func (f *quoteFixture) createProduct(t *testing.T, input catalog.CreateProductInput) *models.Product {
	t.Helper()
	product, err := f.catalog.CreateProduct(context.Background(), input)
	require.NoError(t, err)
	return product
}

func tierInput(qty int, price, role string) catalog.TierInput {
	return catalog.TierInput{MinQty: qty, UnitPrice: decimal.RequireFromString(price), CustomerRole: role}
}

func TestQuoteProductTierMode(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "cards",
		Title:     "Business Cards",
		BasePrice: decimal.RequireFromString("5.00"),
		MOQ:       1,
		IsActive:  true,
		Tiers: []catalog.TierInput{
			tierInput(1, "5", ""),
			tierInput(50, "4", ""),
			tierInput(250, "3", ""),
		},
	})

	result, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: product.ID,
		Quantity:  100,
	})
	require.NoError(t, err)
	require.NotNil(t, result.AppliedTier)
	assert.Equal(t, 50, result.AppliedTier.MinQty)
	assert.True(t, result.UnitPrice.Equal(decimal.RequireFromString("4")))
	assert.True(t, result.LineSubtotal.Equal(decimal.RequireFromString("400")))
	assert.Empty(t, result.Warnings)
}

func TestQuoteProductRoleSpecificTierWins(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "flyers",
		Title:     "Flyers",
		BasePrice: decimal.RequireFromString("8.00"),
		MOQ:       1,
		IsActive:  true,
		Tiers: []catalog.TierInput{
			tierInput(50, "8", "Reg"),
			tierInput(50, "6", "VIP"),
			tierInput(50, "6", ""),
		},
	})

	result, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: product.ID,
		Quantity:  60,
		Roles:     []string{"VIP"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.AppliedTier)
	assert.Equal(t, "VIP", result.AppliedTier.CustomerRole)
	assert.True(t, result.UnitPrice.Equal(decimal.RequireFromString("6")))
}

func TestQuoteProductSessionRolesFallback(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "posters",
		Title:     "Posters",
		BasePrice: decimal.RequireFromString("10.00"),
		MOQ:       1,
		IsActive:  true,
		Tiers: []catalog.TierInput{
			tierInput(1, "10", ""),
			tierInput(1, "7", "wholesale"),
		},
	})

	result, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID:    product.ID,
		Quantity:     10,
		SessionRoles: []string{"wholesale"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.AppliedTier)
	assert.Equal(t, "wholesale", result.AppliedTier.CustomerRole)
}

func TestQuoteProductInterpolateMode(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:         "banners",
		Title:       "Banners",
		BasePrice:   decimal.RequireFromString("5.00"),
		PricingMode: "interpolate",
		MOQ:         1,
		IsActive:    true,
		Tiers: []catalog.TierInput{
			tierInput(1, "5", ""),
			tierInput(50, "17", ""),
			tierInput(250, "60", ""),
		},
	})

	result, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: product.ID,
		Quantity:  25,
	})
	require.NoError(t, err)
	assert.Nil(t, result.AppliedTier)
	assert.Equal(t, "10.88", result.UnitPrice.StringFixed(2))
}

func TestQuoteProductClampsToMOQ(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "stickers",
		Title:     "Stickers",
		BasePrice: decimal.RequireFromString("2.00"),
		MOQ:       25,
		IsActive:  true,
		Tiers:     []catalog.TierInput{tierInput(25, "1.50", "")},
	})

	result, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: product.ID,
		Quantity:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.RequestedQty)
	assert.Equal(t, 25, result.PricedQty)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, enums.QuoteWarningTypeClampedToMOQ, result.Warnings[0].Type)
	require.NotNil(t, result.AppliedTier)
}

func TestQuoteProductNoTierMatchFallsBackToBasePrice(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "magnets",
		Title:     "Magnets",
		BasePrice: decimal.RequireFromString("3.00"),
		MOQ:       1,
		IsActive:  true,
		Tiers:     []catalog.TierInput{tierInput(100, "2.00", "")},
	})

	result, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: product.ID,
		Quantity:  10,
	})
	require.NoError(t, err)
	assert.Nil(t, result.AppliedTier)
	assert.True(t, result.UnitPrice.Equal(decimal.RequireFromString("3.00")))
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, enums.QuoteWarningTypeNoTierMatch, result.Warnings[0].Type)
}

func TestQuoteProductAttributeAdjustments(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "brochures",
		Title:     "Brochures",
		BasePrice: decimal.RequireFromString("100.00"),
		MOQ:       1,
		IsActive:  true,
		Tiers:     []catalog.TierInput{tierInput(1, "100", "")},
		Attributes: []catalog.AttributeInput{
			{
				Key:  "finish",
				Name: "Finish",
				Values: []catalog.AttributeValueInput{
					{Value: "matte"},
					{Value: "gloss", PriceAdjustment: decimal.RequireFromString("25")},
				},
			},
			{
				Key:  "rush",
				Name: "Rush",
				Values: []catalog.AttributeValueInput{
					{Value: "next-day", PriceAdjustment: decimal.RequireFromString("10"), IsPercentage: true},
				},
			},
		},
	})

	result, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: product.ID,
		Quantity:  2,
		Selections: map[string]string{
			"finish": "gloss",
			"rush":   "next-day",
		},
	})
	require.NoError(t, err)
	// 25 flat + 10% of base 100
	assert.True(t, result.AttributeAdjustment.Equal(decimal.RequireFromString("35")))
	assert.True(t, result.EffectiveUnitPrice.Equal(decimal.RequireFromString("135")))
	assert.True(t, result.LineSubtotal.Equal(decimal.RequireFromString("270")))
}

func TestQuoteProductRequiredAttributeMissing(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "signs",
		Title:     "Signs",
		BasePrice: decimal.RequireFromString("50.00"),
		MOQ:       1,
		IsActive:  true,
		Tiers:     []catalog.TierInput{tierInput(1, "50", "")},
		Attributes: []catalog.AttributeInput{{
			Key:        "material",
			Name:       "Material",
			IsRequired: true,
			Values:     []catalog.AttributeValueInput{{Value: "vinyl"}},
		}},
	})

	_, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: product.ID,
		Quantity:  1,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestQuoteProductUnknownSelectionRejected(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "labels",
		Title:     "Labels",
		BasePrice: decimal.RequireFromString("1.00"),
		MOQ:       1,
		IsActive:  true,
		Tiers:     []catalog.TierInput{tierInput(1, "1", "")},
	})

	_, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID:  product.ID,
		Quantity:   1,
		Selections: map[string]string{"finish": "gloss"},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestQuoteProductNegativeQuantity(t *testing.T) {
	f := newQuoteFixture(t)

	_, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: uuid.New(),
		Quantity:  -1,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestQuoteProductInactiveProduct(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "retired",
		Title:     "Retired",
		BasePrice: decimal.RequireFromString("1.00"),
		MOQ:       1,
		IsActive:  false,
		Tiers:     []catalog.TierInput{tierInput(1, "1", "")},
	})

	_, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: product.ID,
		Quantity:  1,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestQuoteProductCacheRoundTrip(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "cards-cached",
		Title:     "Cards",
		BasePrice: decimal.RequireFromString("5.00"),
		MOQ:       1,
		IsActive:  true,
		Tiers:     []catalog.TierInput{tierInput(1, "5", ""), tierInput(50, "4", "")},
	})

	input := QuoteInput{ProductID: product.ID, Quantity: 75}

	first, err := f.svc.QuoteProduct(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, f.cache.sets)

	second, err := f.svc.QuoteProduct(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, f.cache.sets, "cache hit must not rewrite")
	assert.True(t, second.UnitPrice.Equal(first.UnitPrice))

	// Different roles hash to a different key.
	_, err = f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: product.ID, Quantity: 75, Roles: []string{"vip"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.cache.sets)
}

func TestQuoteProductPersistsAndPublishes(t *testing.T) {
	f := newQuoteFixture(t)
	product := f.createProduct(t, catalog.CreateProductInput{
		SKU:       "cards-evt",
		Title:     "Cards",
		BasePrice: decimal.RequireFromString("5.00"),
		MOQ:       1,
		IsActive:  true,
		Tiers:     []catalog.TierInput{tierInput(1, "5", "")},
	})

	result, err := f.svc.QuoteProduct(context.Background(), QuoteInput{
		ProductID: product.ID,
		Quantity:  10,
	})
	require.NoError(t, err)

	var stored []models.Quote
	require.NoError(t, f.gdb.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, result.QuoteID, stored[0].ID)
	assert.Equal(t, 10, stored[0].PricedQty)

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, result.QuoteID.String(), f.sink.events[0].QuoteID)
	assert.Equal(t, "tier", f.sink.events[0].PricingMode)
}
