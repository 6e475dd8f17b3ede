package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/seller"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	registry *session.Registry,
	sellerService seller.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	// a nil *redis.Client must reach the middleware as a nil interface
	var (
		pinger      redis.Pinger
		idemStore   redis.IdempotencyStore
		rateLimiter redis.RateLimitStore
	)
	if redisClient != nil {
		pinger, idemStore, rateLimiter = redisClient, redisClient, redisClient
	}
	idempotent := middleware.Idempotency(idemStore, cfg.Redis.IdempotencyTTL, logg)

	sellerPolicy := middleware.NewRateLimitPolicy(
		"seller-register",
		cfg.Seller.RateLimitWindow,
		cfg.Seller.RateLimitPerIP,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pinger))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", controllers.SessionCreate(registry))

		r.Route("/{"+middleware.SessionParam+"}", func(r chi.Router) {
			r.Use(middleware.SessionContext(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(registry, logg))
				r.Delete("/", controllers.CartClear(registry, logg))
				r.Post("/items", controllers.CartAddItem(registry, logg))
				r.Patch("/items/{lineId}", controllers.CartUpdateItem(registry, logg))
				r.Delete("/items/{lineId}", controllers.CartRemoveItem(registry, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.CheckoutFetch(registry, logg))
				r.Post("/", controllers.CheckoutBegin(registry, logg))
				r.Delete("/", controllers.CheckoutAbandon(registry, logg))
				r.Put("/shipping", controllers.CheckoutSetShipping(registry, logg))
				r.Put("/payment", controllers.CheckoutSetPayment(registry, logg))
				r.Patch("/field", controllers.CheckoutSetField(registry, logg))
				r.Post("/next", controllers.CheckoutNext(registry, logg))
				r.Post("/back", controllers.CheckoutBack(registry, logg))
				r.With(idempotent).Post("/place-order", controllers.CheckoutPlaceOrder(registry, logg))
			})
		})
	})

	r.Route("/api/v1/sellers", func(r chi.Router) {
		r.Get("/plans", controllers.SellerPlans(sellerService))
		r.With(
			middleware.RateLimit(sellerPolicy, rateLimiter, logg),
			idempotent,
		).Post("/", controllers.SellerRegister(sellerService, logg))
	})

	return r
}
