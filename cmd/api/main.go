package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kofiasare/sewshop-backend/api/routes"
	"github.com/kofiasare/sewshop-backend/internal/cart"
	"github.com/kofiasare/sewshop-backend/internal/catalog"
	"github.com/kofiasare/sewshop-backend/internal/checkout"
	"github.com/kofiasare/sewshop-backend/internal/orders"
	"github.com/kofiasare/sewshop-backend/internal/payments"
	"github.com/kofiasare/sewshop-backend/internal/pricing"
	"github.com/kofiasare/sewshop-backend/pkg/config"
	"github.com/kofiasare/sewshop-backend/pkg/db"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
	"github.com/kofiasare/sewshop-backend/pkg/metrics"
	"github.com/kofiasare/sewshop-backend/pkg/migrate"
	"github.com/kofiasare/sewshop-backend/pkg/paystack"
	pkgredis "github.com/kofiasare/sewshop-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sewshop-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "sewshop-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := pkgredis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	flatRate, err := pricing.NewFlatRate(cfg.Pricing)
	if err != nil {
		return fmt.Errorf("building pricing: %w", err)
	}

	cartRepo := cart.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		return fmt.Errorf("building catalog service: %w", err)
	}

	cartSvc, err := cart.NewService(
		cartRepo,
		dbClient,
		catalogRepo,
		flatRate,
		flatRate,
		enums.Currency(cfg.Shop.Currency),
		logg,
	)
	if err != nil {
		return fmt.Errorf("building cart service: %w", err)
	}

	ordersSvc, err := orders.NewService(orderRepo)
	if err != nil {
		return fmt.Errorf("building orders service: %w", err)
	}

	var gateway *paystack.Client
	if cfg.Paystack.Enabled() {
		gateway, err = paystack.NewClient(cfg.Paystack, logg)
		if err != nil {
			return fmt.Errorf("building paystack client: %w", err)
		}
	} else {
		logg.Warn(ctx, "paystack disabled, inline payments unavailable")
	}

	checkoutSvc, err := newCheckoutService(cfg, logg, cartRepo, orderRepo, dbClient, redisClient, gateway, flatRate, checkoutMetrics)
	if err != nil {
		return fmt.Errorf("building checkout service: %w", err)
	}

	var paymentsSvc payments.Service
	if gateway != nil {
		paymentsSvc, err = payments.NewService(orderRepo, cartRepo, dbClient, gateway, checkoutMetrics, logg)
		if err != nil {
			return fmt.Errorf("building payments service: %w", err)
		}
	}

	handler := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DBPinger: dbClient,
		Redis:    redisClient,
		Registry: registry,

		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Orders:   ordersSvc,
		Payments: paymentsSvc,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "storefront api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func newCheckoutService(
	cfg *config.Config,
	logg *logger.Logger,
	cartRepo *cart.Repository,
	orderRepo *orders.Repository,
	dbClient *db.Client,
	redisClient *pkgredis.Client,
	gateway *paystack.Client,
	flatRate *pricing.FlatRate,
	checkoutMetrics *metrics.CheckoutMetrics,
) (checkout.Service, error) {
	// A nil *paystack.Client must stay a nil interface inside the service.
	var provider checkout.PaymentProvider
	if gateway != nil {
		provider = gateway
	}
	return checkout.NewService(
		cartRepo,
		orderRepo,
		dbClient,
		redisClient,
		provider,
		flatRate,
		flatRate,
		checkoutMetrics,
		logg,
		cfg.Shop,
		cfg.Paystack.CallbackURL,
	)
}
