package quote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvasquez/pricegrid-backend/internal/catalog"
	"github.com/mvasquez/pricegrid-backend/internal/pricing"
	"github.com/mvasquez/pricegrid-backend/pkg/db/models"
	"github.com/mvasquez/pricegrid-backend/pkg/enums"
	pkgerrors "github.com/mvasquez/pricegrid-backend/pkg/errors"
	"github.com/mvasquez/pricegrid-backend/pkg/logger"
	"github.com/mvasquez/pricegrid-backend/pkg/metrics"
	"github.com/mvasquez/pricegrid-backend/pkg/types"
)

// QuoteCache is the subset of the redis client the service needs.
type QuoteCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	QuoteKey(parts ...string) string
}

// QuoteInput describes one pricing request. Roles overrides the session
// role set when non-empty; SessionRoles carries the authenticated
// caller's own roles as the fallback.
type QuoteInput struct {
	ProductID    uuid.UUID
	Quantity     int
	Roles        []string
	SessionRoles []string
	Selections   map[string]string
}

// Quote is the computed result returned to callers.
type Quote struct {
	QuoteID             uuid.UUID           `json:"quote_id"`
	ProductID           uuid.UUID           `json:"product_id"`
	PricingMode         enums.PricingMode   `json:"pricing_mode"`
	RequestedQty        int                 `json:"requested_qty"`
	PricedQty           int                 `json:"priced_qty"`
	UnitPrice           decimal.Decimal     `json:"unit_price"`
	AppliedTier         *types.AppliedTier  `json:"applied_tier,omitempty"`
	AttributeAdjustment decimal.Decimal     `json:"attribute_adjustment"`
	EffectiveUnitPrice  decimal.Decimal     `json:"effective_unit_price"`
	LineSubtotal        decimal.Decimal     `json:"line_subtotal"`
	Warnings            types.QuoteWarnings `json:"warnings"`
	FromCache           bool                `json:"-"`
}

// Service computes price quotes for catalog products.
type Service interface {
	QuoteProduct(ctx context.Context, input QuoteInput) (*Quote, error)
}

type service struct {
	catalog  catalog.Service
	repo     *Repository
	cache    QuoteCache
	cacheTTL time.Duration
	events   EventSink
	metrics  *metrics.QuoteMetrics
	logg     *logger.Logger
}

// Options bundles the optional collaborators of the quote service. Nil
// fields disable the corresponding side channel.
type Options struct {
	Repo     *Repository
	Cache    QuoteCache
	CacheTTL time.Duration
	Events   EventSink
	Metrics  *metrics.QuoteMetrics
	Logger   *logger.Logger
}

// NewService builds the quote service around the catalog.
func NewService(catalogSvc catalog.Service, opts Options) Service {
	return &service{
		catalog:  catalogSvc,
		repo:     opts.Repo,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		events:   opts.Events,
		metrics:  opts.Metrics,
		logg:     opts.Logger,
	}
}

func (s *service) QuoteProduct(ctx context.Context, input QuoteInput) (*Quote, error) {
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	roles := resolveRoles(input)

	cacheKey := s.cacheKeyFor(input, roles)
	if cached := s.readCache(ctx, cacheKey); cached != nil {
		s.metrics.IncCacheHit(cached.PricingMode.String())
		return cached, nil
	}

	product, err := s.catalog.GetPricingConfig(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not active")
	}

	mode := product.PricingMode.String()
	started := time.Now()
	result, err := s.compute(ctx, product, input, roles)
	s.metrics.ObserveDuration(mode, time.Since(started))
	if err != nil {
		s.metrics.IncFailure(mode)
		return nil, err
	}
	s.metrics.IncSuccess(mode)
	if result.AppliedTier == nil && product.PricingMode == enums.PricingModeTier {
		s.metrics.IncTierMiss(mode)
	}

	s.persist(ctx, result, roles)
	s.writeCache(ctx, cacheKey, result)
	s.publish(ctx, result, roles)

	return result, nil
}

func (s *service) compute(ctx context.Context, product *models.Product, input QuoteInput, roles []string) (*Quote, error) {
	pricedQty, warnings := normalizeQuantity(input.Quantity, product.MOQ)

	tiers := toPricingTiers(product.Tiers)

	var (
		unitPrice   decimal.Decimal
		appliedTier *types.AppliedTier
	)
	switch product.PricingMode {
	case enums.PricingModeInterpolate:
		price, err := pricing.InterpolatePrice(pricedQty, tiers)
		if err != nil {
			return nil, err
		}
		unitPrice = price
	default:
		tier, err := pricing.FindTier(pricedQty, tiers, roles)
		if err != nil {
			return nil, err
		}
		if tier == nil {
			unitPrice = product.BasePrice
			warnings = appendWarning(warnings, enums.QuoteWarningTypeNoTierMatch, "no pricing tier matched, using base price")
		} else {
			unitPrice = tier.UnitPrice
			appliedTier = &types.AppliedTier{
				Label:        fmt.Sprintf("tier %d+", tier.MinQty),
				MinQty:       tier.MinQty,
				UnitPrice:    tier.UnitPrice,
				CustomerRole: tier.CustomerRole,
			}
		}
	}

	attrs, err := applySelections(product.Attributes, input.Selections)
	if err != nil {
		return nil, err
	}
	adjustment, err := pricing.AttributeAdjustment(pricedQty, product.BasePrice, attrs, roles)
	if err != nil {
		return nil, err
	}

	effective := unitPrice.Add(adjustment)
	return &Quote{
		QuoteID:             uuid.New(),
		ProductID:           product.ID,
		PricingMode:         product.PricingMode,
		RequestedQty:        input.Quantity,
		PricedQty:           pricedQty,
		UnitPrice:           unitPrice,
		AppliedTier:         appliedTier,
		AttributeAdjustment: adjustment,
		EffectiveUnitPrice:  effective,
		LineSubtotal:        effective.Mul(decimal.NewFromInt(int64(pricedQty))),
		Warnings:            warnings,
	}, nil
}

// resolveRoles makes the duck-typed role fallback explicit: the request's
// roles when present, otherwise the session's own role set.
func resolveRoles(input QuoteInput) []string {
	if len(input.Roles) > 0 {
		return input.Roles
	}
	return input.SessionRoles
}

func normalizeQuantity(requested, moq int) (int, types.QuoteWarnings) {
	warnings := types.QuoteWarnings{}
	if requested < moq {
		warnings = appendWarning(warnings, enums.QuoteWarningTypeClampedToMOQ, fmt.Sprintf("quantity raised to MOQ (%d)", moq))
		return moq, warnings
	}
	return requested, warnings
}

func appendWarning(warnings types.QuoteWarnings, warningType enums.QuoteWarningType, message string) types.QuoteWarnings {
	return append(warnings, types.QuoteWarning{
		Type:    warningType,
		Message: message,
	})
}

// applySelections maps persisted attribute config plus the request's
// selections into resolver inputs. Required attributes must be selected;
// selections naming an unknown attribute are rejected.
func applySelections(attrs []models.ProductAttribute, selections map[string]string) ([]pricing.Attribute, error) {
	known := make(map[string]struct{}, len(attrs))
	resolved := make([]pricing.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		known[attr.Key] = struct{}{}
		selected := selections[attr.Key]
		if attr.IsRequired && selected == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("attribute %q requires a selection", attr.Key))
		}
		values := make([]pricing.AttributeValue, 0, len(attr.Values))
		for _, value := range attr.Values {
			values = append(values, pricing.AttributeValue{
				Value:                       value.Value,
				PriceAdjustment:             value.PriceAdjustment,
				PriceAdjustmentIsPercentage: value.IsPercentage,
				WeightAdjustment:            value.WeightAdjustment,
				LengthAdjustment:            value.LengthAdjustment,
				WidthAdjustment:             value.WidthAdjustment,
				HeightAdjustment:            value.HeightAdjustment,
				UseTierAdjustment:           value.UseTierAdjustment,
				TierAdjustments:             toPricingTiersFromValue(value.Tiers),
			})
		}
		resolved = append(resolved, pricing.Attribute{
			Key:           attr.Key,
			IsRequired:    attr.IsRequired,
			SelectedValue: selected,
			Values:        values,
		})
	}
	for key := range selections {
		if _, ok := known[key]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown attribute %q", key))
		}
	}
	return resolved, nil
}

func toPricingTiers(tiers []models.PriceTier) []pricing.Tier {
	out := make([]pricing.Tier, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, pricing.Tier{
			MinQty:       tier.MinQty,
			UnitPrice:    tier.UnitPrice,
			CustomerRole: tier.CustomerRole,
		})
	}
	return out
}

func toPricingTiersFromValue(tiers []models.AttributeValueTier) []pricing.Tier {
	out := make([]pricing.Tier, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, pricing.Tier{
			MinQty:       tier.MinQty,
			UnitPrice:    tier.UnitPrice,
			CustomerRole: tier.CustomerRole,
		})
	}
	return out
}

// cacheKeyFor hashes the full request so any input change misses.
func (s *service) cacheKeyFor(input QuoteInput, roles []string) string {
	if s.cache == nil {
		return ""
	}
	selectionKeys := make([]string, 0, len(input.Selections))
	for key := range input.Selections {
		selectionKeys = append(selectionKeys, key)
	}
	sort.Strings(selectionKeys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%s|", input.ProductID, input.Quantity, strings.Join(roles, ","))
	for _, key := range selectionKeys {
		fmt.Fprintf(&b, "%s=%s;", key, input.Selections[key])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return s.cache.QuoteKey(input.ProductID.String(), hex.EncodeToString(sum[:16]))
}

func (s *service) readCache(ctx context.Context, key string) *Quote {
	if s.cache == nil || key == "" {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil
	}
	var cached Quote
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil
	}
	cached.FromCache = true
	return &cached
}

func (s *service) writeCache(ctx context.Context, key string, result *Quote) {
	if s.cache == nil || key == "" {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "quote_id", result.QuoteID.String()), "quote cache write failed")
	}
}

func (s *service) persist(ctx context.Context, result *Quote, roles []string) {
	if s.repo == nil {
		return
	}
	record := &models.Quote{
		ID:                  result.QuoteID,
		ProductID:           result.ProductID,
		RequestedQty:        result.RequestedQty,
		PricedQty:           result.PricedQty,
		UnitPrice:           result.UnitPrice,
		AttributeAdjustment: result.AttributeAdjustment,
		TotalPrice:          result.LineSubtotal,
		CustomerRoles:       strings.Join(roles, ","),
		AppliedTier:         result.AppliedTier,
		Warnings:            result.Warnings,
	}
	if err := s.repo.Insert(ctx, record); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithProductID(ctx, result.ProductID.String()), "persisting quote failed", err)
	}
}

func (s *service) publish(ctx context.Context, result *Quote, roles []string) {
	if s.events == nil {
		return
	}
	event := QuoteComputedEvent{
		QuoteID:             result.QuoteID.String(),
		ProductID:           result.ProductID.String(),
		RequestedQty:        result.RequestedQty,
		PricedQty:           result.PricedQty,
		PricingMode:         result.PricingMode.String(),
		UnitPrice:           result.UnitPrice.String(),
		AttributeAdjustment: result.AttributeAdjustment.String(),
		TotalPrice:          result.LineSubtotal.String(),
		Roles:               roles,
		WarningCount:        len(result.Warnings),
		ComputedAt:          time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishQuoteComputed(ctx, event); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithProductID(ctx, result.ProductID.String()), "quote event publish failed")
	}
}
