package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pousadahub/ordering-backend/api/routes"
	cartsvc "github.com/pousadahub/ordering-backend/internal/cart"
	"github.com/pousadahub/ordering-backend/internal/ordering"
	"github.com/pousadahub/ordering-backend/internal/orders"
	"github.com/pousadahub/ordering-backend/internal/partners"
	"github.com/pousadahub/ordering-backend/internal/pricing"
	"github.com/pousadahub/ordering-backend/internal/selection"
	"github.com/pousadahub/ordering-backend/pkg/config"
	"github.com/pousadahub/ordering-backend/pkg/db"
	"github.com/pousadahub/ordering-backend/pkg/logger"
	"github.com/pousadahub/ordering-backend/pkg/metrics"
	"github.com/pousadahub/ordering-backend/pkg/migrate"
	"github.com/pousadahub/ordering-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderingMetrics := metrics.NewOrderingMetrics(registry)

	directory := partners.NewDirectory(partners.NewRepository(dbClient.DB()), logg)
	if err := directory.Refresh(context.Background()); err != nil {
		// Requests report directory_pending until a refresh succeeds.
		logg.Error(context.Background(), "initial partner directory load failed", err)
	}
	go refreshDirectory(directory, cfg.Directory.RefreshInterval, logg)

	selectionStore := selection.NewStore(redisClient, logg)

	resolver, err := ordering.NewResolver(directory, selectionStore, cfg.Resolver, orderingMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create resolver", err)
		os.Exit(1)
	}
	carts, err := cartsvc.NewService(selectionStore, orderingMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	pricer, err := pricing.NewEngine(directory, orderingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing engine", err)
		os.Exit(1)
	}
	orderRepo := orders.NewRepository(dbClient)
	orderService, err := orders.NewService(carts, pricer, resolver, orderRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
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
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Directory: directory,
			Resolver:  resolver,
			Carts:     carts,
			Pricer:    pricer,
			Orders:    orderService,
			OrderRepo: orderRepo,
			Registry:  registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func refreshDirectory(directory *partners.Directory, interval time.Duration, logg *logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := directory.Refresh(ctx); err != nil {
			logg.Error(ctx, "partner directory refresh failed", err)
		}
		cancel()
	}
}
