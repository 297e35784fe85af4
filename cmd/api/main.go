package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"vatshop/internal/config"
	"vatshop/internal/db"
	"vatshop/internal/httpserver"
	"vatshop/internal/logging"
	"vatshop/internal/repository"
	"vatshop/internal/repository/memory"
	"vatshop/internal/seed"
	accountsvc "vatshop/internal/service/account"
	cartsvc "vatshop/internal/service/cart"
	checkoutsvc "vatshop/internal/service/checkout"
	paymentsvc "vatshop/internal/service/payment"
	productsvc "vatshop/internal/service/product"
	sessionsvc "vatshop/internal/service/session"

	"go.uber.org/zap"
)

const devJWTSecret = "vatshop-development-secret"

func main() {
	cfg := config.Load()
	logger, err := logging.New("api", cfg.LogLevel, cfg.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	secret := cfg.JWTSecret
	if secret == "" {
		if !cfg.Development {
			logger.Fatal("JWT_SECRET is required outside development mode")
		}
		logger.Warn("JWT_SECRET not set, using development secret")
		secret = devJWTSecret
	}
	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		logger.Warn("stripe keys not configured, payment calls will fail")
	}

	checkout := checkoutsvc.New(store, logger.Named("checkout"))
	gateway := paymentsvc.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Store:      store,
		ProductSvc: productsvc.New(store.Products()),
		CartSvc:    cartsvc.New(store, logger.Named("cart")),
		InvoiceSvc: checkout,
		PaymentSvc: paymentsvc.New(store.Carts(), store.Invoices(), gateway, checkout, cfg.PaymentCurrency, logger.Named("payment")),
		AccountSvc: accountsvc.New(store.Accounts(), secret, cfg.JWTTTL),
		SessionSvc: sessionsvc.New(store.Sessions(), cfg.SessionTTL, logger.Named("session")),
	}, httpserver.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  !cfg.Development,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

// openStore returns the configured store and a function releasing it. The
// memory store is seeded with the demo catalog.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.New()
		n, err := seed.Apply(ctx, store.Products())
		if err != nil {
			return nil, nil, fmt.Errorf("seed memory store: %w", err)
		}
		logger.Info("using in-memory store", zap.Int("products", n))
		return store, func() {}, nil
	case config.StoreDriverPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to db: %w", err)
		}
		return repository.NewPostgres(pool, logger), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
