package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mvasquez/pricegrid-backend/api/middleware"
	"github.com/mvasquez/pricegrid-backend/api/responses"
	"github.com/mvasquez/pricegrid-backend/api/validators"
	quotesvc "github.com/mvasquez/pricegrid-backend/internal/quote"
	pkgerrors "github.com/mvasquez/pricegrid-backend/pkg/errors"
	"github.com/mvasquez/pricegrid-backend/pkg/logger"
)

type quoteRequest struct {
	ProductID  uuid.UUID         `json:"product_id" validate:"required"`
	Quantity   int               `json:"quantity" validate:"min=0"`
	Roles      []string          `json:"roles,omitempty"`
	Selections map[string]string `json:"selections,omitempty"`
}

// QuoteCompute resolves a price quote for a product. Roles in the payload
// override the authenticated session's roles.
func QuoteCompute(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.QuoteProduct(r.Context(), quotesvc.QuoteInput{
			ProductID:    payload.ProductID,
			Quantity:     payload.Quantity,
			Roles:        payload.Roles,
			SessionRoles: middleware.RolesFromContext(r.Context()),
			Selections:   payload.Selections,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
