package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/MuhammadMagdy7/money-transfer/internal/api"
	"github.com/MuhammadMagdy7/money-transfer/internal/config"
	"github.com/MuhammadMagdy7/money-transfer/internal/events/kafka"
	"github.com/MuhammadMagdy7/money-transfer/internal/interfaces"
	"github.com/MuhammadMagdy7/money-transfer/internal/ledger"
	"github.com/MuhammadMagdy7/money-transfer/internal/storage/memory"
	"github.com/MuhammadMagdy7/money-transfer/internal/storage/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store interfaces.AccountStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		if err := postgres.Apply(ctx, db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		store = postgres.New(db)
		logger.Info("using postgres store")
	} else {
		store = memory.New()
		logger.Info("using in-memory store")
	}

	var publisher interfaces.EventPublisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		p := kafka.NewPublisher(brokers)
		defer p.Close()
		publisher = p
		logger.Info("publishing transfer events", "brokers", brokers)
	}

	ledgerService := ledger.New(store, publisher, logger)
	server := api.NewServer(store, ledgerService, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
