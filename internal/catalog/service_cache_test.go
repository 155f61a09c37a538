package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvasquez/pricegrid-backend/pkg/db"
	"github.com/mvasquez/pricegrid-backend/pkg/db/models"
)

type fakeConfigCache struct {
	entries map[string]string
	gets    int
	sets    int
	dels    []string
}

func newFakeConfigCache() *fakeConfigCache {
	return &fakeConfigCache{entries: map[string]string{}}
}

func (f *fakeConfigCache) Get(ctx context.Context, key string) (string, error) {
	f.gets++
	value, ok := f.entries[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return value, nil
}

func (f *fakeConfigCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.sets++
	f.entries[key] = value.(string)
	return nil
}

func (f *fakeConfigCache) Del(ctx context.Context, keys ...string) error {
	f.dels = append(f.dels, keys...)
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func (f *fakeConfigCache) CatalogKey(productID string) string {
	return "pg:catalog:" + productID
}

type fakeCatalogSink struct {
	events []ProductUpdatedEvent
}

func (f *fakeCatalogSink) PublishProductUpdated(ctx context.Context, event ProductUpdatedEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newCachedTestService(t *testing.T) (Service, *fakeConfigCache, *fakeCatalogSink) {
	t.Helper()
	client := db.NewFromGorm(setupCatalogTestDB(t))
	cache := newFakeConfigCache()
	sink := &fakeCatalogSink{}
	svc := NewServiceWithOptions(client, Options{
		Cache:    cache,
		CacheTTL: time.Minute,
		Events:   sink,
	})
	return svc, cache, sink
}

func TestServiceCachesPricingConfig(t *testing.T) {
	svc, cache, _ := newCachedTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		SKU:       "cards",
		Title:     "Business Cards",
		BasePrice: decimal.RequireFromString("5.00"),
		MOQ:       1,
		IsActive:  true,
	})
	require.NoError(t, err)

	first, err := svc.GetPricingConfig(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	raw, ok := cache.entries[cache.CatalogKey(product.ID.String())]
	require.True(t, ok, "snapshot should be cached after a read")
	var snapshot models.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &snapshot))
	assert.Equal(t, first.SKU, snapshot.SKU)

	second, err := svc.GetPricingConfig(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, first.SKU, second.SKU)
	assert.Equal(t, 1, cache.sets, "cache hit should not rewrite the snapshot")
}

func TestServiceInvalidatesCacheOnMutation(t *testing.T) {
	svc, cache, _ := newCachedTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		SKU:       "flyers",
		Title:     "Flyers",
		BasePrice: decimal.RequireFromString("2.00"),
		MOQ:       1,
		IsActive:  true,
	})
	require.NoError(t, err)

	_, err = svc.GetPricingConfig(ctx, product.ID)
	require.NoError(t, err)

	updated, err := svc.ReplaceTierSchedule(ctx, product.ID, []TierInput{
		{MinQty: 1, UnitPrice: decimal.RequireFromString("2")},
		{MinQty: 100, UnitPrice: decimal.RequireFromString("1.50")},
	})
	require.NoError(t, err)
	assert.Len(t, updated.Tiers, 2)
	assert.Contains(t, cache.dels, cache.CatalogKey(product.ID.String()))

	// The reload inside the mutation repopulates the cache with fresh tiers.
	raw, ok := cache.entries[cache.CatalogKey(product.ID.String())]
	require.True(t, ok)
	var snapshot models.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &snapshot))
	assert.Len(t, snapshot.Tiers, 2)
}

func TestServicePublishesProductUpdatedEvents(t *testing.T) {
	svc, _, sink := newCachedTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		SKU:       "posters",
		Title:     "Posters",
		BasePrice: decimal.RequireFromString("10.00"),
		MOQ:       1,
		IsActive:  true,
	})
	require.NoError(t, err)
	require.Len(t, sink.events, 1)
	assert.Equal(t, product.ID.String(), sink.events[0].ProductID)
	assert.Equal(t, "posters", sink.events[0].SKU)

	_, err = svc.ReplaceAttributes(ctx, product.ID, []AttributeInput{{
		Key:    "size",
		Name:   "Size",
		Values: []AttributeValueInput{{Value: "a2"}},
	}})
	require.NoError(t, err)
	require.Len(t, sink.events, 2)
	assert.Equal(t, "tier", sink.events[1].PricingMode)

	_, parseErr := uuid.Parse(sink.events[1].ProductID)
	assert.NoError(t, parseErr)
}
