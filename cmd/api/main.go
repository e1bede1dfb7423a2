package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/davidmarceau/dishpatch-backend/api/routes"
	"github.com/davidmarceau/dishpatch-backend/internal/cart"
	"github.com/davidmarceau/dishpatch-backend/internal/catalog"
	"github.com/davidmarceau/dishpatch-backend/internal/checkout"
	"github.com/davidmarceau/dishpatch-backend/internal/orders"
	"github.com/davidmarceau/dishpatch-backend/pkg/config"
	"github.com/davidmarceau/dishpatch-backend/pkg/logger"
	"github.com/davidmarceau/dishpatch-backend/pkg/metrics"
	"github.com/davidmarceau/dishpatch-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	carts := cart.NewManager(cart.ManagerOptions{
		Persistence: redisClient,
		Keyer:       redisClient,
		Logger:      logg,
	})

	catalogClient := catalog.NewClient(cfg.Catalog)
	ordersClient := orders.NewClient(cfg.Orders)

	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	composer, err := checkout.NewComposer(cfg.Order.Rate())
	if err != nil {
		logg.Error(context.Background(), "invalid tax rate", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:     carts,
		Catalog:   catalogClient,
		Submitter: ordersClient,
		Composer:  composer,
		Metrics:   cartMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			Probe:    redisClient,
			Carts:    carts,
			Menu:     catalogClient,
			Checkout: checkoutService,
			Metrics:  cartMetrics,
			Gatherer: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
