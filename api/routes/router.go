package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	webhookcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/webhooks"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/blog"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// NewRouter wires the storefront HTTP surface. Nil Redis-backed stores
// disable replay protection and rate limiting.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	idempotencyStore redis.IdempotencyStore,
	rateLimitStore middleware.RateLimitStore,
	checkoutService controllers.CheckoutService,
	cartService cart.Service,
	blogService blog.Service,
	stripeClient webhookcontrollers.SigningClient,
	stripeWebhookService webhookcontrollers.StripeWebhookService,
	stripeWebhookGuard webhookcontrollers.EventGuard,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutIPLimit,
		cfg.RateLimit.CheckoutSessionLimit,
		cfg.RateLimit.CheckoutEmailLimit,
	)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ShopSession(cfg.Session, logg))
		r.Use(middleware.Authenticate(cfg.JWT, logg))
		idem := middleware.NewIdempotency(idempotencyStore, logg)
		idempotent := idem.Require(middleware.DefaultIdempotencyTTL)

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutView(checkoutService, logg))
			r.With(
				middleware.RateLimit(checkoutPolicy, rateLimitStore, logg),
				idem.Require(middleware.CheckoutIdempotencyTTL),
			).Post("/", controllers.CheckoutSubmit(checkoutService, logg))
			r.Get("/success", controllers.CheckoutSuccess(checkoutService, logg))
			r.Get("/cancel", controllers.CheckoutCancel(checkoutService, logg))
			r.Get("/receipt", controllers.CheckoutReceipt(checkoutService, logg))
			r.Get("/receipts", controllers.CheckoutReceipts(checkoutService, logg))
			r.Get("/tracking", controllers.CheckoutTracking(checkoutService, logg))
			r.Get("/track-external", controllers.CheckoutTrackExternal(logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, logg))
			r.With(idempotent).Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(cartService, logg))
		})

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", controllers.BlogList(blogService, logg))
			r.With(
				middleware.RequireCapability(auth.CapabilityBlogCreate, logg),
				idempotent,
			).Post("/", controllers.BlogCreate(blogService, logg))
			r.Get("/{entryId}", controllers.BlogEntry(blogService, logg))
			r.With(idempotent).Post("/{entryId}/replies", controllers.BlogReply(blogService, logg))
		})
	})

	return r
}
