package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kofiasare/sewshop-backend/api/controllers"
	cartctl "github.com/kofiasare/sewshop-backend/api/controllers/cart"
	"github.com/kofiasare/sewshop-backend/api/controllers/webhooks"
	"github.com/kofiasare/sewshop-backend/api/middleware"
	cartsvc "github.com/kofiasare/sewshop-backend/internal/cart"
	"github.com/kofiasare/sewshop-backend/internal/catalog"
	"github.com/kofiasare/sewshop-backend/internal/checkout"
	"github.com/kofiasare/sewshop-backend/internal/orders"
	"github.com/kofiasare/sewshop-backend/internal/payments"
	"github.com/kofiasare/sewshop-backend/pkg/config"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	pkgredis "github.com/kofiasare/sewshop-backend/pkg/redis"
)

// Deps carries everything the HTTP surface is wired from. Nil optional
// members (redis, registry, payments) degrade the related routes rather
// than panicking, which keeps local setups light.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DBPinger controllers.Pinger
	Redis    *pkgredis.Client
	Registry *prometheus.Registry

	Catalog  catalog.Service
	Cart     cartsvc.Service
	Checkout checkout.Service
	Orders   orders.Service
	Payments payments.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS(cfg.CORS))

	var redisPinger controllers.Pinger
	var idempotencyStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		redisPinger = deps.Redis
		idempotencyStore = deps.Redis
	}

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, redisPinger))

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/products", controllers.CatalogProducts(deps.Catalog, logg))
		api.Get("/products/{slug}", controllers.CatalogProductDetail(deps.Catalog, logg))
		api.Get("/services", controllers.CatalogServices(deps.Catalog, logg))
		api.Get("/services/{slug}", controllers.CatalogServiceDetail(deps.Catalog, logg))

		api.Group(func(cart chi.Router) {
			cart.Use(middleware.CartToken())
			cart.Use(middleware.Idempotency(idempotencyStore, logg))

			cart.Get("/cart", cartctl.CartFetch(deps.Cart, logg))
			cart.Post("/cart/items", cartctl.CartAddProductItem(deps.Cart, logg))
			cart.Post("/cart/service-items", cartctl.CartAddServiceItem(deps.Cart, logg))
			cart.Patch("/cart/items/{itemId}", cartctl.CartUpdateItemQuantity(deps.Cart, logg))
			cart.Delete("/cart/items/{itemId}", cartctl.CartRemoveItem(deps.Cart, logg))
			cart.Post("/cart/items/{itemId}/addons", cartctl.CartSetItemAddon(deps.Cart, logg))

			cart.Post("/checkout", controllers.CheckoutSubmit(deps.Checkout, logg))
		})

		api.Get("/orders/{orderNumber}", controllers.OrderConfirmation(deps.Orders, logg))

		if deps.Payments != nil {
			api.Get("/payments/callback", controllers.PaymentCallback(deps.Payments, logg))
			api.Post("/webhooks/paystack", webhooks.Paystack(deps.Payments, logg))
		}
	})

	return r
}
