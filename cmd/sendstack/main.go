package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/sendstack/internal/adapter/dns"
	"github.com/neomorfeo/sendstack/internal/adapter/fsm"
	"github.com/neomorfeo/sendstack/internal/adapter/jwttoken"
	"github.com/neomorfeo/sendstack/internal/adapter/metrics"
	oteladapter "github.com/neomorfeo/sendstack/internal/adapter/otel"
	redisadapter "github.com/neomorfeo/sendstack/internal/adapter/redis"
	riveradapter "github.com/neomorfeo/sendstack/internal/adapter/river"
	"github.com/neomorfeo/sendstack/internal/adapter/sqlite"
	stripeadapter "github.com/neomorfeo/sendstack/internal/adapter/stripe"
	"github.com/neomorfeo/sendstack/internal/app"
	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/config"
	"github.com/neomorfeo/sendstack/internal/credentials"
	"github.com/neomorfeo/sendstack/internal/domain"
	"github.com/neomorfeo/sendstack/internal/intake"

	handler "github.com/neomorfeo/sendstack/internal/adapter/http"
)

const (
	serviceName    = "sendstack"
	serviceVersion = "0.1.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("sendstack exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---
	providers, err := oteladapter.Setup(ctx, oteladapter.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := oteladapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	repo, err := sqlite.NewFromDB(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("database: %w", err)
	}
	defer repo.Close()

	clk := clock.NewSystem()

	payloads, closePayloads, err := newPayloadStore(ctx, cfg, db, clk)
	if err != nil {
		return err
	}
	defer closePayloads()
	tracedPayloads := oteladapter.NewTracingPayloadStore(payloads)

	riverClient, err := riveradapter.Setup(ctx, db, riveradapter.Deps{
		Payloads:      tracedPayloads,
		Clock:         clk,
		Logger:        logger,
		PurgeInterval: cfg.PayloadPurgeInterval,
	})
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	// Shutdown goes through Stop below, not through ctx cancellation.
	if err := riverClient.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			logger.Error("river stop", "error", err)
		}
	}()

	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		logger.Warn("stripe keys are not configured; checkout and webhooks will fail")
	}
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET is empty; the admin console rejects every request")
	}

	gateway := stripeadapter.NewGateway(cfg.StripeSecretKey, nil)
	orders := oteladapter.NewTracingOrderRepository(repo)
	m := metrics.New()

	probe := app.NewAvailabilityProbe(oteladapter.NewTracingResolver(newResolver(cfg)), logger)
	checkout := app.NewCheckoutService(gateway, tracedPayloads, clk, logger, app.CheckoutConfig{
		PriceID:    cfg.StripePriceID,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
		PayloadTTL: cfg.PayloadTTL,
	})
	materializer := app.NewOrderMaterializer(
		stripeadapter.NewVerifier(cfg.StripeWebhookSecret),
		gateway,
		orders,
		tracedPayloads,
		oteladapter.NewTracingPublisher(riveradapter.NewPublisher(riverClient)),
		clk,
		logger,
	)

	router := newRouter(handler.Services{
		Probe:        probe,
		Checkout:     checkout,
		Materializer: materializer,
		Orders:       app.NewOrderService(orders, clk),
		Generator:    credentials.New(credentials.WithClock(clk)),
		Validator:    intake.NewValidator(),
		Navigator:    fsm.New(),
		Tokens:       jwttoken.NewService(cfg.AdminJWTSecret, clk),
		Metrics:      m,
		Logger:       logger,
	}, m)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("sendstack listening", "port", cfg.Port, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
	return nil
}

// newRouter builds the chi router with the Huma API, /docs and /metrics.
func newRouter(svc handler.Services, m *metrics.Metrics) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))

	router.Handle("/metrics", m.Handler())

	api := humachi.New(router, huma.DefaultConfig(serviceName, serviceVersion))
	handler.Register(api, svc)
	return router
}

// newPayloadStore picks Redis when REDIS_URL is set, else the SQLite table.
func newPayloadStore(ctx context.Context, cfg config.Config, db *sql.DB, clk clock.Clock) (domain.PayloadStore, func(), error) {
	if cfg.RedisURL == "" {
		return sqlite.NewPayloadStore(db, clk), func() {}, nil
	}
	client, err := redisadapter.Open(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return redisadapter.NewPayloadStore(client, clk), func() { client.Close() }, nil
}

func newResolver(cfg config.Config) domain.NameResolver {
	if cfg.DNSResolver == "system" {
		return dns.NewSystemResolver(net.DefaultResolver)
	}
	return dns.NewDoHResolver(cfg.DNSDoHURL, nil)
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
