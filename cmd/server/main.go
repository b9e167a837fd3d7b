package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sheikh-saqib/statement-ledger-api/internal/auth"
	"github.com/sheikh-saqib/statement-ledger-api/internal/config"
	"github.com/sheikh-saqib/statement-ledger-api/internal/events"
	"github.com/sheikh-saqib/statement-ledger-api/internal/events/kafka"
	"github.com/sheikh-saqib/statement-ledger-api/internal/httpapi"
	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
	"github.com/sheikh-saqib/statement-ledger-api/internal/ledger"
	"github.com/sheikh-saqib/statement-ledger-api/internal/storage"
	"github.com/sheikh-saqib/statement-ledger-api/internal/users"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// amounts go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrate(cfg, logger); err != nil {
			logger.Error("migrate", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func migrate(cfg config.Config, logger *slog.Logger) error {
	if cfg.DatabaseDSN == "" {
		return errors.New("DB_DSN is required to migrate")
	}
	cfg.AutoMigrate = true
	cfg.RedisAddr = ""

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	stores, err := storage.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("migrations applied")
	return stores.Close()
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	stores, err := storage.New(startCtx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer stores.Close()

	var publisher interfaces.EventPublisher = events.NewLogPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, logger)
		defer kp.Close()
		publisher = kp
		logger.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "prefix", cfg.KafkaTopicPrefix)
	}

	if cfg.UsesDevSecret() {
		logger.Warn("JWT_SECRET is not set, using the development secret")
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	usersSvc := users.NewService(stores.Users, auth.NewPasswordHasher(cfg.BcryptCost), tokens)
	ledgerSvc := ledger.NewLedger(stores.Statements, stores.Users, publisher, logger)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(usersSvc, ledgerSvc, tokens, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
