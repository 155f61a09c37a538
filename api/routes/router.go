package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvasquez/pricegrid-backend/api/controllers"
	"github.com/mvasquez/pricegrid-backend/api/middleware"
	"github.com/mvasquez/pricegrid-backend/internal/catalog"
	quotesvc "github.com/mvasquez/pricegrid-backend/internal/quote"
	"github.com/mvasquez/pricegrid-backend/pkg/config"
	"github.com/mvasquez/pricegrid-backend/pkg/logger"
	pkgredis "github.com/mvasquez/pricegrid-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers. Nil entries
// disable the corresponding endpoint or middleware.
type Deps struct {
	Health      map[string]controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	Catalog     catalog.Service
	Quotes      quotesvc.Service
	QuoteRepo   *quotesvc.Repository
	Registry    *prometheus.Registry
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/ping", controllers.PrivatePing())
		r.Post("/quotes", controllers.QuoteCompute(deps.Quotes, logg))
		r.Get("/products/{productId}/pricing", controllers.ProductPricing(deps.Catalog, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))
		r.Get("/ping", controllers.AdminPing())
		r.Route("/v1/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
			r.Put("/{productId}/tiers", controllers.AdminReplaceTiers(deps.Catalog, logg))
			r.Put("/{productId}/attributes", controllers.AdminReplaceAttributes(deps.Catalog, logg))
			r.Get("/{productId}/quotes", controllers.AdminQuoteHistory(deps.QuoteRepo, logg))
		})
	})

	return r
}
