package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pousadahub/ordering-backend/api/controllers"
	"github.com/pousadahub/ordering-backend/api/middleware"
	cartsvc "github.com/pousadahub/ordering-backend/internal/cart"
	"github.com/pousadahub/ordering-backend/internal/ordering"
	"github.com/pousadahub/ordering-backend/internal/orders"
	"github.com/pousadahub/ordering-backend/internal/partners"
	"github.com/pousadahub/ordering-backend/internal/pricing"
	"github.com/pousadahub/ordering-backend/pkg/config"
	"github.com/pousadahub/ordering-backend/pkg/db"
	"github.com/pousadahub/ordering-backend/pkg/logger"
	"github.com/pousadahub/ordering-backend/pkg/redis"
)

type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     redis.Pinger
	Directory *partners.Directory
	Resolver  *ordering.Resolver
	Carts     *cartsvc.Service
	Pricer    *pricing.Engine
	Orders    *orders.Service
	OrderRepo *orders.Repository
	Registry  *prometheus.Registry
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(p.Config.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DB, p.Redis, p.Directory))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.GuestSession(p.Logger))

		r.Route("/partners", func(r chi.Router) {
			r.Get("/", controllers.PartnersList(p.Directory, p.Logger))
			r.Post("/refresh", controllers.PartnersRefresh(p.Directory, p.Logger))
		})

		r.Route("/context", func(r chi.Router) {
			r.Get("/", controllers.ContextShow(p.Resolver, p.Logger))
			r.Post("/resolve", controllers.ContextResolve(p.Resolver, p.Logger))
			r.Put("/", controllers.ContextSet(p.Resolver, p.Logger))
			r.Delete("/", controllers.ContextReset(p.Resolver, p.Logger))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartShow(p.Carts, p.Logger))
			r.Delete("/", controllers.CartClear(p.Carts, p.Logger))
			r.Post("/lines", controllers.CartAddLine(p.Carts, p.Logger))
			r.Patch("/lines/{lineId}", controllers.CartAdjustLine(p.Carts, p.Logger))
			r.Delete("/lines/{lineId}", controllers.CartRemoveLine(p.Carts, p.Logger))
		})

		r.Post("/checkout/quote", controllers.CheckoutQuote(p.Carts, p.Pricer, p.Resolver, p.Logger))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrdersSubmit(p.Orders, p.Logger))
			r.Get("/", controllers.OrdersList(p.OrderRepo, p.Logger))
			r.Get("/{orderId}", controllers.OrdersDetail(p.OrderRepo, p.Logger))
		})
	})

	return r
}
