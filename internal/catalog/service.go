package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/mvasquez/pricegrid-backend/pkg/db"
	"github.com/mvasquez/pricegrid-backend/pkg/db/models"
	"github.com/mvasquez/pricegrid-backend/pkg/enums"
	pkgerrors "github.com/mvasquez/pricegrid-backend/pkg/errors"
	"github.com/mvasquez/pricegrid-backend/pkg/logger"
)

// Service exposes product pricing-configuration management.
type Service interface {
	GetPricingConfig(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	ReplaceTierSchedule(ctx context.Context, productID uuid.UUID, tiers []TierInput) (*models.Product, error)
	ReplaceAttributes(ctx context.Context, productID uuid.UUID, attrs []AttributeInput) (*models.Product, error)
}

// TierInput defines one quantity breakpoint of a tier schedule.
type TierInput struct {
	MinQty       int
	UnitPrice    decimal.Decimal
	CustomerRole string
}

// AttributeValueInput defines one selectable option and its adjustments.
type AttributeValueInput struct {
	Value             string
	Name              string
	PriceAdjustment   decimal.Decimal
	IsPercentage      bool
	WeightAdjustment  decimal.Decimal
	LengthAdjustment  decimal.Decimal
	WidthAdjustment   decimal.Decimal
	HeightAdjustment  decimal.Decimal
	UseTierAdjustment bool
	Tiers             []TierInput
}

// AttributeInput defines a configurable option and its value set.
type AttributeInput struct {
	Key        string
	Name       string
	IsRequired bool
	Values     []AttributeValueInput
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU         string
	Title       string
	Description *string
	BasePrice   decimal.Decimal
	PricingMode string
	MOQ         int
	IsActive    bool
	Tiers       []TierInput
	Attributes  []AttributeInput
}

// ConfigCache is the subset of the redis client used for pricing-config
// snapshots.
type ConfigCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CatalogKey(productID string) string
}

// Options bundles the optional collaborators of the catalog service. Nil
// fields disable the corresponding side channel.
type Options struct {
	Cache    ConfigCache
	CacheTTL time.Duration
	Events   EventSink
	Logger   *logger.Logger
}

type service struct {
	client   *db.Client
	repo     *Repository
	cache    ConfigCache
	cacheTTL time.Duration
	events   EventSink
	logg     *logger.Logger
}

// NewService builds the catalog service on top of the shared DB client.
func NewService(client *db.Client) Service {
	return NewServiceWithOptions(client, Options{})
}

// NewServiceWithOptions builds the catalog service with cache and event
// side channels attached.
func NewServiceWithOptions(client *db.Client, opts Options) Service {
	return &service{
		client:   client,
		repo:     NewRepository(client.DB()),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		events:   opts.Events,
		logg:     opts.Logger,
	}
}

func (s *service) GetPricingConfig(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if cached := s.readCache(ctx, productID); cached != nil {
		return cached, nil
	}

	product, err := s.repo.FindWithPricing(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product pricing")
	}

	s.writeCache(ctx, product)
	return product, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	// Mint the id application-side so the sqlite path works too; the
	// Postgres column default only covers rows inserted without one.
	productID := uuid.New()
	product := &models.Product{
		ID:          productID,
		SKU:         strings.TrimSpace(input.SKU),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		BasePrice:   input.BasePrice,
		PricingMode: parsePricingMode(input.PricingMode),
		MOQ:         input.MOQ,
		IsActive:    input.IsActive,
		Tiers:       buildTiers(productID, input.Tiers),
		Attributes:  buildAttributes(productID, input.Attributes),
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).CreateProduct(ctx, product)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}

	s.afterMutation(ctx, product)
	return product, nil
}

func (s *service) ReplaceTierSchedule(ctx context.Context, productID uuid.UUID, tiers []TierInput) (*models.Product, error) {
	if err := validateTierSchedule(tiers); err != nil {
		return nil, err
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, productID); err != nil {
			return err
		}
		return repo.ReplaceTiers(ctx, productID, buildTiers(productID, tiers))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing tier schedule")
	}

	s.invalidateCache(ctx, productID)
	product, err := s.GetPricingConfig(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, product)
	return product, nil
}

func (s *service) ReplaceAttributes(ctx context.Context, productID uuid.UUID, attrs []AttributeInput) (*models.Product, error) {
	if err := validateAttributes(attrs); err != nil {
		return nil, err
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, productID); err != nil {
			return err
		}
		return repo.ReplaceAttributes(ctx, productID, buildAttributes(productID, attrs))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing attributes")
	}

	s.invalidateCache(ctx, productID)
	product, err := s.GetPricingConfig(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, product)
	return product, nil
}

// readCache returns the cached snapshot, or nil on any miss or decode
// problem.
func (s *service) readCache(ctx context.Context, productID uuid.UUID) *models.Product {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.CatalogKey(productID.String()))
	if err != nil {
		return nil
	}
	var cached models.Product
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil
	}
	return &cached
}

func (s *service) writeCache(ctx context.Context, product *models.Product) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(product)
	if err != nil {
		return
	}
	key := s.cache.CatalogKey(product.ID.String())
	if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithProductID(ctx, product.ID.String()), "catalog cache write failed")
	}
}

func (s *service) invalidateCache(ctx context.Context, productID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.CatalogKey(productID.String())); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithProductID(ctx, productID.String()), "catalog cache invalidation failed")
	}
}

func (s *service) afterMutation(ctx context.Context, product *models.Product) {
	s.invalidateCache(ctx, product.ID)
	s.publishUpdated(ctx, product)
}

func (s *service) publishUpdated(ctx context.Context, product *models.Product) {
	if s.events == nil {
		return
	}
	event := ProductUpdatedEvent{
		ProductID:   product.ID.String(),
		SKU:         product.SKU,
		PricingMode: product.PricingMode.String(),
		UpdatedAt:   product.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishProductUpdated(ctx, event); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithProductID(ctx, product.ID.String()), "catalog event publish failed")
	}
}

func validateProductInput(input CreateProductInput) error {
	var errs []error
	if strings.TrimSpace(input.SKU) == "" {
		errs = append(errs, errors.New("sku is required"))
	}
	if strings.TrimSpace(input.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if input.BasePrice.IsNegative() {
		errs = append(errs, errors.New("base price cannot be negative"))
	}
	if input.MOQ < 1 {
		errs = append(errs, errors.New("moq must be at least 1"))
	}
	if input.PricingMode != "" && !parsePricingMode(input.PricingMode).IsValid() {
		errs = append(errs, fmt.Errorf("unknown pricing mode %q", input.PricingMode))
	}
	if combined := multierr.Combine(errs...); combined != nil {
		details := make([]string, 0, len(multierr.Errors(combined)))
		for _, err := range multierr.Errors(combined) {
			details = append(details, err.Error())
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}
	if err := validateTierSchedule(input.Tiers); err != nil {
		return err
	}
	return validateAttributes(input.Attributes)
}

func validateTierSchedule(tiers []TierInput) error {
	var errs []error
	seen := map[string]int{}
	for i, tier := range tiers {
		if tier.MinQty < 0 {
			errs = append(errs, fmt.Errorf("tier %d: quantity cannot be negative", i))
		}
		if tier.UnitPrice.IsNegative() {
			errs = append(errs, fmt.Errorf("tier %d: unit price cannot be negative", i))
		}
		key := fmt.Sprintf("%s|%d", tier.CustomerRole, tier.MinQty)
		if prev, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("tier %d: duplicates tier %d (role %q, qty %d)", i, prev, tier.CustomerRole, tier.MinQty))
			continue
		}
		seen[key] = i
	}
	if combined := multierr.Combine(errs...); combined != nil {
		details := make([]string, 0, len(multierr.Errors(combined)))
		for _, err := range multierr.Errors(combined) {
			details = append(details, err.Error())
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid tier schedule").WithDetails(details)
	}
	return nil
}

func validateAttributes(attrs []AttributeInput) error {
	var errs []error
	seenKeys := map[string]int{}
	for i, attr := range attrs {
		if strings.TrimSpace(attr.Key) == "" {
			errs = append(errs, fmt.Errorf("attribute %d: key is required", i))
		}
		if prev, dup := seenKeys[attr.Key]; dup {
			errs = append(errs, fmt.Errorf("attribute %d: duplicates key of attribute %d", i, prev))
		} else {
			seenKeys[attr.Key] = i
		}
		seenValues := map[string]int{}
		for j, value := range attr.Values {
			if strings.TrimSpace(value.Value) == "" {
				errs = append(errs, fmt.Errorf("attribute %d value %d: value is required", i, j))
			}
			if prev, dup := seenValues[value.Value]; dup {
				errs = append(errs, fmt.Errorf("attribute %d value %d: duplicates value %d", i, j, prev))
			} else {
				seenValues[value.Value] = j
			}
			if value.UseTierAdjustment {
				if err := validateTierSchedule(value.Tiers); err != nil {
					errs = append(errs, fmt.Errorf("attribute %d value %d: %w", i, j, err))
				}
			}
		}
	}
	if combined := multierr.Combine(errs...); combined != nil {
		details := make([]string, 0, len(multierr.Errors(combined)))
		for _, err := range multierr.Errors(combined) {
			details = append(details, err.Error())
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid attributes").WithDetails(details)
	}
	return nil
}

func buildTiers(productID uuid.UUID, inputs []TierInput) []models.PriceTier {
	tiers := make([]models.PriceTier, 0, len(inputs))
	for i, input := range inputs {
		tiers = append(tiers, models.PriceTier{
			ID:           uuid.New(),
			ProductID:    productID,
			MinQty:       input.MinQty,
			UnitPrice:    input.UnitPrice,
			CustomerRole: strings.TrimSpace(input.CustomerRole),
			Position:     i,
		})
	}
	return tiers
}

func buildAttributes(productID uuid.UUID, inputs []AttributeInput) []models.ProductAttribute {
	attrs := make([]models.ProductAttribute, 0, len(inputs))
	for i, input := range inputs {
		attr := models.ProductAttribute{
			ID:         uuid.New(),
			ProductID:  productID,
			Key:        strings.TrimSpace(input.Key),
			Name:       strings.TrimSpace(input.Name),
			IsRequired: input.IsRequired,
			Position:   i,
		}
		for j, value := range input.Values {
			attrValue := models.AttributeValue{
				ID:                uuid.New(),
				Value:             strings.TrimSpace(value.Value),
				Name:              strings.TrimSpace(value.Name),
				PriceAdjustment:   value.PriceAdjustment,
				IsPercentage:      value.IsPercentage,
				WeightAdjustment:  value.WeightAdjustment,
				LengthAdjustment:  value.LengthAdjustment,
				WidthAdjustment:   value.WidthAdjustment,
				HeightAdjustment:  value.HeightAdjustment,
				UseTierAdjustment: value.UseTierAdjustment,
				Position:          j,
			}
			for k, tier := range value.Tiers {
				attrValue.Tiers = append(attrValue.Tiers, models.AttributeValueTier{
					ID:           uuid.New(),
					MinQty:       tier.MinQty,
					UnitPrice:    tier.UnitPrice,
					CustomerRole: strings.TrimSpace(tier.CustomerRole),
					Position:     k,
				})
			}
			attr.Values = append(attr.Values, attrValue)
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func parsePricingMode(value string) enums.PricingMode {
	if value == "" {
		return enums.PricingModeTier
	}
	mode, err := enums.ParsePricingMode(value)
	if err != nil {
		return enums.PricingMode(value)
	}
	return mode
}
