package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mvasquez/pricegrid-backend/api/responses"
	"github.com/mvasquez/pricegrid-backend/api/validators"
	"github.com/mvasquez/pricegrid-backend/internal/catalog"
	quotesvc "github.com/mvasquez/pricegrid-backend/internal/quote"
	pkgerrors "github.com/mvasquez/pricegrid-backend/pkg/errors"
	"github.com/mvasquez/pricegrid-backend/pkg/logger"
)

type tierPayload struct {
	MinQty       int             `json:"min_qty" validate:"min=0"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CustomerRole string          `json:"customer_role,omitempty"`
}

type attributeValuePayload struct {
	Value             string          `json:"value" validate:"required"`
	Name              string          `json:"name,omitempty"`
	PriceAdjustment   decimal.Decimal `json:"price_adjustment"`
	IsPercentage      bool            `json:"is_percentage"`
	WeightAdjustment  decimal.Decimal `json:"weight_adjustment"`
	LengthAdjustment  decimal.Decimal `json:"length_adjustment"`
	WidthAdjustment   decimal.Decimal `json:"width_adjustment"`
	HeightAdjustment  decimal.Decimal `json:"height_adjustment"`
	UseTierAdjustment bool            `json:"use_tier_adjustment"`
	Tiers             []tierPayload   `json:"tiers,omitempty"`
}

type attributePayload struct {
	Key        string                  `json:"key" validate:"required"`
	Name       string                  `json:"name,omitempty"`
	IsRequired bool                    `json:"is_required"`
	Values     []attributeValuePayload `json:"values" validate:"required,dive"`
}

type createProductRequest struct {
	SKU         string             `json:"sku" validate:"required"`
	Title       string             `json:"title" validate:"required"`
	Description *string            `json:"description,omitempty"`
	BasePrice   decimal.Decimal    `json:"base_price"`
	PricingMode string             `json:"pricing_mode,omitempty"`
	MOQ         int                `json:"moq" validate:"min=1"`
	IsActive    bool               `json:"is_active"`
	Tiers       []tierPayload      `json:"tiers,omitempty" validate:"dive"`
	Attributes  []attributePayload `json:"attributes,omitempty" validate:"dive"`
}

type replaceTiersRequest struct {
	Tiers []tierPayload `json:"tiers" validate:"required,dive"`
}

type replaceAttributesRequest struct {
	Attributes []attributePayload `json:"attributes" validate:"required,dive"`
}

func toTierInputs(payloads []tierPayload) []catalog.TierInput {
	tiers := make([]catalog.TierInput, 0, len(payloads))
	for _, payload := range payloads {
		tiers = append(tiers, catalog.TierInput{
			MinQty:       payload.MinQty,
			UnitPrice:    payload.UnitPrice,
			CustomerRole: payload.CustomerRole,
		})
	}
	return tiers
}

func toAttributeInputs(payloads []attributePayload) []catalog.AttributeInput {
	attrs := make([]catalog.AttributeInput, 0, len(payloads))
	for _, payload := range payloads {
		values := make([]catalog.AttributeValueInput, 0, len(payload.Values))
		for _, value := range payload.Values {
			values = append(values, catalog.AttributeValueInput{
				Value:             validators.SanitizeString(value.Value, 120),
				Name:              validators.SanitizeString(value.Name, 120),
				PriceAdjustment:   value.PriceAdjustment,
				IsPercentage:      value.IsPercentage,
				WeightAdjustment:  value.WeightAdjustment,
				LengthAdjustment:  value.LengthAdjustment,
				WidthAdjustment:   value.WidthAdjustment,
				HeightAdjustment:  value.HeightAdjustment,
				UseTierAdjustment: value.UseTierAdjustment,
				Tiers:             toTierInputs(value.Tiers),
			})
		}
		attrs = append(attrs, catalog.AttributeInput{
			Key:        validators.SanitizeString(payload.Key, 64),
			Name:       validators.SanitizeString(payload.Name, 120),
			IsRequired: payload.IsRequired,
			Values:     values,
		})
	}
	return attrs
}

// AdminCreateProduct registers a product with its pricing configuration.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), catalog.CreateProductInput{
			SKU:         payload.SKU,
			Title:       payload.Title,
			Description: payload.Description,
			BasePrice:   payload.BasePrice,
			PricingMode: payload.PricingMode,
			MOQ:         payload.MOQ,
			IsActive:    payload.IsActive,
			Tiers:       toTierInputs(payload.Tiers),
			Attributes:  toAttributeInputs(payload.Attributes),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newPricingConfigView(product))
	}
}

// AdminReplaceTiers swaps a product's tier schedule atomically.
func AdminReplaceTiers(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload replaceTiersRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.ReplaceTierSchedule(r.Context(), productID, toTierInputs(payload.Tiers))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPricingConfigView(product))
	}
}

// AdminReplaceAttributes swaps a product's attribute configuration atomically.
func AdminReplaceAttributes(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload replaceAttributesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.ReplaceAttributes(r.Context(), productID, toAttributeInputs(payload.Attributes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPricingConfigView(product))
	}
}

// AdminQuoteHistory lists recently computed quotes for a product.
func AdminQuoteHistory(repo *quotesvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote history unavailable"))
			return
		}

		productID, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotes, err := repo.ListRecent(r.Context(), productID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes"))
			return
		}

		responses.WriteSuccess(w, map[string]any{"quotes": quotes})
	}
}
