package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blackwater-gg/craftworks/api/routes"
	"github.com/blackwater-gg/craftworks/internal/ledger"
	"github.com/blackwater-gg/craftworks/internal/notify"
	"github.com/blackwater-gg/craftworks/internal/orders"
	"github.com/blackwater-gg/craftworks/internal/reconcile"
	"github.com/blackwater-gg/craftworks/internal/stats"
	"github.com/blackwater-gg/craftworks/internal/surface"
	"github.com/blackwater-gg/craftworks/pkg/config"
	"github.com/blackwater-gg/craftworks/pkg/db"
	"github.com/blackwater-gg/craftworks/pkg/logger"
	"github.com/blackwater-gg/craftworks/pkg/metrics"
	"github.com/blackwater-gg/craftworks/pkg/migrate"
	"github.com/blackwater-gg/craftworks/pkg/pubsub"
	"github.com/blackwater-gg/craftworks/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	publisher, err := notify.NewPublisher(pubsubClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire event publisher", err)
		os.Exit(1)
	}

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		ledgerSvc,
		dbClient,
		orders.NewGuard(),
		publisher,
		logg,
		cfg.Orders,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	statsSvc, err := stats.NewService(stats.NewRepository(dbClient.DB()), ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	orderSurface, err := surface.NewDiscord(cfg.Surface, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire surface client", err)
		os.Exit(1)
	}

	reconcileLock, err := reconcile.NewRedisLock(redisClient, cfg.Reconcile.LockKey, cfg.Reconcile.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile lock", err)
		os.Exit(1)
	}

	reconcileSvc, err := reconcile.NewService(reconcile.ServiceParams{
		Logger:  logg,
		Repo:    orders.NewRepository(dbClient.DB()),
		Surface: orderSurface,
		Lock:    reconcileLock,
		Metrics: metrics.NewReconcileMetrics(registry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile service", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.ReconcileOnStartup {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			result, err := reconcileSvc.Run(ctx, "startup")
			if err != nil {
				logg.Error(ctx, "startup reconciliation failed", err)
				return
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"reconciled": result.Reconciled,
				"failed":     result.Failed,
				"total":      result.Total,
			})
			logg.Info(ctx, "startup reconciliation finished")
		}()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			pubsubClient,
			ordersSvc,
			ledgerSvc,
			statsSvc,
			reconcileSvc,
			registry,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		graceCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(graceCtx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
