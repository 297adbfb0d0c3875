package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	promocontrollers "github.com/angelmondragon/storefront-backend/api/controllers/promotions"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/promotions"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers. Redis, Idempotency and
// Registry are optional.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	Registry    *prometheus.Registry
	Pricing     pricing.Service
	Cart        cart.Service
	Promotions  promotions.AdminService
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})

	if cfg.Metrics.Enabled && deps.Registry != nil {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/variants/{variantID}/price", controllers.VariantPrice(deps.Pricing, logg))
		r.Get("/products/{productID}/prices", controllers.ProductPrices(deps.Pricing, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.Idempotency, cfg.Cart.IdempotencyTTL, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
				r.Delete("/", cartcontrollers.CartClear(deps.Cart, logg))
				r.Post("/items", cartcontrollers.CartAddItem(deps.Cart, logg))
				r.Patch("/items/{itemID}", cartcontrollers.CartUpdateItem(deps.Cart, logg))
				r.Delete("/items/{itemID}", cartcontrollers.CartRemoveItem(deps.Cart, logg))
			})

			r.Route("/admin/promotions", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
				r.Get("/", promocontrollers.AdminListPromotions(deps.Promotions, logg))
				r.Post("/", promocontrollers.AdminCreatePromotion(deps.Promotions, logg))
				r.Route("/{promotionID}", func(r chi.Router) {
					r.Get("/", promocontrollers.AdminGetPromotion(deps.Promotions, logg))
					r.Put("/", promocontrollers.AdminUpdatePromotion(deps.Promotions, logg))
					r.Delete("/", promocontrollers.AdminDeletePromotion(deps.Promotions, logg))
					r.Post("/links", promocontrollers.AdminLinkPromotion(deps.Promotions, logg))
					r.Delete("/links/{linkID}", promocontrollers.AdminUnlinkPromotion(deps.Promotions, logg))
				})
			})
		})
	})

	return r
}
