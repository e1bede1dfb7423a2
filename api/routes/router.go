package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidmarceau/dishpatch-backend/api/controllers"
	"github.com/davidmarceau/dishpatch-backend/api/middleware"
	"github.com/davidmarceau/dishpatch-backend/internal/cart"
	checkoutsvc "github.com/davidmarceau/dishpatch-backend/internal/checkout"
	"github.com/davidmarceau/dishpatch-backend/pkg/config"
	"github.com/davidmarceau/dishpatch-backend/pkg/logger"
	"github.com/davidmarceau/dishpatch-backend/pkg/metrics"
)

// RouterParams bundles the dependencies the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Probe    controllers.Pinger
	Carts    *cart.Manager
	Menu     controllers.MenuResolver
	Checkout checkoutsvc.Service
	Metrics  *metrics.CartMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, params.Probe, logg))
	})

	if params.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SessionContext(logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(params.Carts, logg))
			r.Delete("/", controllers.CartClear(params.Carts, params.Metrics, logg))
			r.Post("/items", controllers.CartAddItem(params.Carts, params.Menu, params.Metrics, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(params.Carts, params.Metrics, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(params.Carts, params.Metrics, logg))
		})

		r.Post("/checkout", controllers.Checkout(params.Checkout, logg))
		r.Delete("/session", controllers.SessionDrop(params.Carts, logg))
	})

	return r
}
