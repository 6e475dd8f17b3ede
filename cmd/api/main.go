package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/cron"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/seller"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{
		ServiceName: "api",
		Format:      logger.ParseFormat(os.Getenv("STOREFRONT_LOG_FORMAT")),
	})

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
		Format:      logger.ParseFormat(cfg.App.LogFormat),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	unit, err := cfg.Cart.CurrencyUnit()
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency and rate limits disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(reg)
	jobMetrics := metrics.NewJobMetrics(reg)

	submitter, err := orders.NewRetryingSubmitter(
		orders.NewSimulatedSubmitter(cfg.Checkout.SubmitDelay, cfg.Checkout.OrderIDPrefix),
		orders.RetryPolicy{
			MaxAttempts:    cfg.Checkout.MaxAttempts,
			AttemptTimeout: cfg.Checkout.AttemptTimeout,
			BackoffBase:    cfg.Checkout.BackoffBase,
		},
		logg,
	)
	if err != nil {
		return err
	}

	sessions, err := session.NewRegistry(session.RegistryParams{
		Pricing: cart.Pricing{
			Currency:    unit,
			ShippingFee: cfg.Cart.ShippingFee,
		},
		Submitter: submitter,
		Logger:    logg,
		Metrics:   checkoutMetrics,
		IdleTTL:   cfg.Session.IdleTTL,
	})
	if err != nil {
		return err
	}

	sellerService, err := seller.NewService(seller.ServiceParams{
		Currency: unit,
		Delay:    cfg.Seller.RegistrationDelay,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	sweepJob, err := cron.NewSessionSweepJob(sessions)
	if err != nil {
		return err
	}
	jobs, err := cron.NewRegistry(sweepJob)
	if err != nil {
		return err
	}
	housekeeping, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Metrics:  jobMetrics,
		Interval: cfg.Session.SweepInterval,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"currency": unit.String(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, redisClient, reg, sessions, sellerService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	housekeepingDone := make(chan error, 1)
	go func() {
		housekeepingDone <- housekeeping.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logg.Info(ctx, "api server shutting down gracefully")
	case err := <-serveErr:
		stop()
		<-housekeepingDone
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = multierr.Combine(
		server.Shutdown(shutdownCtx),
		ignoreCanceled(<-housekeepingDone),
	)
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
