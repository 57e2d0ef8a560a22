// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"merabestie-backend/internal/account"
	"merabestie-backend/internal/cart"
	"merabestie-backend/internal/catalog"
	"merabestie-backend/internal/config"
	"merabestie-backend/internal/handlers"
	"merabestie-backend/internal/logging"
	"merabestie-backend/internal/mailer"
	"merabestie-backend/internal/order"
	"merabestie-backend/internal/repository"
	"merabestie-backend/internal/shortcode"
)

func main() {
	configPath := flag.String("c", os.Getenv("STOREFRONT_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// the logger is configured from the same file
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := logging.Init(cfg.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}

func openStores(cfg *config.AppConfig) (repository.Stores, func(), error) {
	if cfg.Storage == config.StorageMemory {
		zap.L().Warn("using in-memory storage, data is lost on restart")
		return repository.NewMemoryStores(), func() {}, nil
	}

	client, err := repository.NewMongoConnection(cfg.Mongo)
	if err != nil {
		return repository.Stores{}, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			zap.L().Error("failed to disconnect from mongodb", zap.Error(err))
		}
	}

	db := client.Database(cfg.Mongo.Database)
	timeout := cfg.Mongo.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		closeFn()
		return repository.Stores{}, nil, err
	}
	return repository.NewMongoStores(db), closeFn, nil
}

func run(cfg *config.AppConfig) error {
	stores, closeStores, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	opts := order.DefaultOptions()
	opts.TrackingRetries = cfg.Orders.TrackingRetries
	opts.MaxNotifyAttempts = cfg.Orders.MaxNotifyAttempts
	opts.DecrementStock = cfg.Orders.DecrementStock
	opts.OrderIDs = shortcode.OrderID.WithAttempts(cfg.Orders.IDRetries)
	orders := order.NewService(stores, mailer.New(cfg.Mail), opts)

	reconciler := order.NewReconciler(orders, order.ReconcilerConfig{
		Spec:  cfg.Orders.ReconcileSpec,
		Grace: cfg.Orders.ReconcileGrace,
		Batch: cfg.Orders.ReconcileBatch,
	})
	if cfg.Orders.ReconcileSpec != "" {
		if err := reconciler.Start(); err != nil {
			return err
		}
		defer func() { <-reconciler.Stop().Done() }()
	}

	h := handlers.NewHandler(
		account.NewService(stores, cfg.Auth),
		cart.NewService(stores.Carts),
		catalog.NewService(stores.Products),
		orders,
		reconciler,
	)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handlers.NewRouter(cfg.Server, cfg.Auth, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		zap.L().Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	zap.L().Info("server stopped cleanly")
	return nil
}
