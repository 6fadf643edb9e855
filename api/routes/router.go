package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackwater-gg/craftworks/api/controllers"
	ordercontrollers "github.com/blackwater-gg/craftworks/api/controllers/orders"
	"github.com/blackwater-gg/craftworks/api/middleware"
	"github.com/blackwater-gg/craftworks/internal/ledger"
	"github.com/blackwater-gg/craftworks/internal/orders"
	"github.com/blackwater-gg/craftworks/internal/reconcile"
	"github.com/blackwater-gg/craftworks/internal/stats"
	"github.com/blackwater-gg/craftworks/pkg/config"
	"github.com/blackwater-gg/craftworks/pkg/db"
	"github.com/blackwater-gg/craftworks/pkg/enums"
	"github.com/blackwater-gg/craftworks/pkg/logger"
	"github.com/blackwater-gg/craftworks/pkg/pubsub"
	"github.com/blackwater-gg/craftworks/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	pubsubClient *pubsub.Client,
	ordersSvc orders.Service,
	ledgerSvc ledger.Service,
	statsSvc stats.Service,
	reconcileSvc reconcile.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, pubsubClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RateLimit(cfg.RateLimit, redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.ListActive(ordersSvc, logg))
			r.Post("/", ordercontrollers.Create(ordersSvc, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", ordercontrollers.Detail(ordersSvc, logg))
				r.Post("/progress", ordercontrollers.AdjustProgress(ordersSvc, logg))
				r.Get("/history", ordercontrollers.History(ledgerSvc, logg))
				r.Get("/snapshot", ordercontrollers.Snapshot(ledgerSvc, logg))
				r.Get("/contributions", ordercontrollers.Contributions(ledgerSvc, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(enums.ActorRoleHandler, logg))
					r.Post("/complete", ordercontrollers.Complete(ordersSvc, logg))
					r.Delete("/", ordercontrollers.Remove(ordersSvc, logg))
					r.Put("/surface", ordercontrollers.SetSurfaceRef(ordersSvc, logg))
				})
			})
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", controllers.StatsOverview(statsSvc, logg))
			r.Get("/users/{userId}", controllers.UserStats(statsSvc, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.ActorRoleAdmin, logg))
		r.Post("/reconcile", controllers.AdminReconcile(reconcileSvc, logg))
	})

	return r
}
