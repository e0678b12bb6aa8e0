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

	"github.com/vancetran/medisupply-backend/api/routes"
	"github.com/vancetran/medisupply-backend/internal/analytics"
	"github.com/vancetran/medisupply-backend/internal/authn"
	"github.com/vancetran/medisupply-backend/internal/catalog"
	"github.com/vancetran/medisupply-backend/internal/categories"
	"github.com/vancetran/medisupply-backend/internal/coupons"
	"github.com/vancetran/medisupply-backend/internal/customers"
	"github.com/vancetran/medisupply-backend/internal/inventory"
	"github.com/vancetran/medisupply-backend/internal/orders"
	"github.com/vancetran/medisupply-backend/internal/payments"
	"github.com/vancetran/medisupply-backend/pkg/auth/session"
	"github.com/vancetran/medisupply-backend/pkg/cache"
	"github.com/vancetran/medisupply-backend/pkg/config"
	"github.com/vancetran/medisupply-backend/pkg/db"
	"github.com/vancetran/medisupply-backend/pkg/logger"
	"github.com/vancetran/medisupply-backend/pkg/metrics"
	"github.com/vancetran/medisupply-backend/pkg/migrate"
	"github.com/vancetran/medisupply-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	cacheStore := cache.New(redisClient, redis.IsNil, cfg.Cache, logg)
	defer cacheStore.Close()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	customersRepo := customers.NewRepository(dbClient.DB())
	couponsRepo := coupons.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())

	authService, err := authn.NewService(
		authn.NewRepository(dbClient.DB()),
		customersRepo,
		sessionManager,
		cfg.JWT,
		cfg.Password,
		logg,
	)
	requireService(logg, "auth", err)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), cacheStore)
	requireService(logg, "catalog", err)

	categoriesService, err := categories.NewService(categories.NewRepository(dbClient.DB()))
	requireService(logg, "categories", err)

	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, logg)
	requireService(logg, "inventory", err)

	couponsService, err := coupons.NewService(couponsRepo)
	requireService(logg, "coupons", err)

	customersService, err := customers.NewService(customersRepo)
	requireService(logg, "customers", err)

	paymentsService, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		dbClient,
		payments.NewVNPayGateway(cfg.VNPay),
		payments.NewMoMoGateway(cfg.MoMo),
		logg,
	)
	requireService(logg, "payments", err)

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		couponsService,
		couponsRepo,
		customersRepo,
		inventoryRepo,
		paymentsService,
		cfg.Checkout,
		logg,
	)
	requireService(logg, "orders", err)

	analyticsService, err := analytics.NewService(dbClient, cacheStore)
	requireService(logg, "analytics", err)

	requestMetrics := metrics.NewRequestMetrics(prometheus.DefaultRegisterer)

	router := routes.NewRouter(routes.Deps{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Redis:      redisClient,
		Sessions:   sessionManager,
		Metrics:    requestMetrics,
		Auth:       authService,
		Catalog:    catalogService,
		Categories: categoriesService,
		Inventory:  inventoryService,
		Orders:     ordersService,
		Coupons:    couponsService,
		Customers:  customersService,
		Payments:   paymentsService,
		Analytics:  analyticsService,
	})

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
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err != nil {
		ctx := logg.WithField(context.Background(), "service", name)
		logg.Error(ctx, "failed to create service", err)
		os.Exit(1)
	}
}
