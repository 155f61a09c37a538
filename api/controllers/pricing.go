package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvasquez/pricegrid-backend/api/responses"
	"github.com/mvasquez/pricegrid-backend/internal/catalog"
	"github.com/mvasquez/pricegrid-backend/pkg/db/models"
	pkgerrors "github.com/mvasquez/pricegrid-backend/pkg/errors"
	"github.com/mvasquez/pricegrid-backend/pkg/logger"
)

type tierView struct {
	MinQty       int             `json:"min_qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CustomerRole string          `json:"customer_role,omitempty"`
}

type attributeValueView struct {
	Value             string          `json:"value"`
	Name              string          `json:"name,omitempty"`
	PriceAdjustment   decimal.Decimal `json:"price_adjustment"`
	IsPercentage      bool            `json:"is_percentage"`
	UseTierAdjustment bool            `json:"use_tier_adjustment"`
	Tiers             []tierView      `json:"tiers,omitempty"`
}

type attributeView struct {
	Key        string               `json:"key"`
	Name       string               `json:"name"`
	IsRequired bool                 `json:"is_required"`
	Values     []attributeValueView `json:"values"`
}

type pricingConfigView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	SKU         string          `json:"sku"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	PricingMode string          `json:"pricing_mode"`
	MOQ         int             `json:"moq"`
	IsActive    bool            `json:"is_active"`
	Tiers       []tierView      `json:"tiers"`
	Attributes  []attributeView `json:"attributes"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func newPricingConfigView(product *models.Product) pricingConfigView {
	view := pricingConfigView{
		ProductID:   product.ID,
		SKU:         product.SKU,
		Title:       product.Title,
		Description: product.Description,
		BasePrice:   product.BasePrice,
		PricingMode: product.PricingMode.String(),
		MOQ:         product.MOQ,
		IsActive:    product.IsActive,
		Tiers:       make([]tierView, 0, len(product.Tiers)),
		Attributes:  make([]attributeView, 0, len(product.Attributes)),
		UpdatedAt:   product.UpdatedAt,
	}
	for _, tier := range product.Tiers {
		view.Tiers = append(view.Tiers, tierView{
			MinQty:       tier.MinQty,
			UnitPrice:    tier.UnitPrice,
			CustomerRole: tier.CustomerRole,
		})
	}
	for _, attr := range product.Attributes {
		attrView := attributeView{
			Key:        attr.Key,
			Name:       attr.Name,
			IsRequired: attr.IsRequired,
			Values:     make([]attributeValueView, 0, len(attr.Values)),
		}
		for _, value := range attr.Values {
			valueView := attributeValueView{
				Value:             value.Value,
				Name:              value.Name,
				PriceAdjustment:   value.PriceAdjustment,
				IsPercentage:      value.IsPercentage,
				UseTierAdjustment: value.UseTierAdjustment,
			}
			for _, tier := range value.Tiers {
				valueView.Tiers = append(valueView.Tiers, tierView{
					MinQty:       tier.MinQty,
					UnitPrice:    tier.UnitPrice,
					CustomerRole: tier.CustomerRole,
				})
			}
			attrView.Values = append(attrView.Values, valueView)
		}
		view.Attributes = append(view.Attributes, attrView)
	}
	return view
}

// ProductPricing returns the full pricing configuration of one product.
func ProductPricing(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		product, err := svc.GetPricingConfig(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPricingConfigView(product))
	}
}

func productIDFromURL(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "productId")
	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}
