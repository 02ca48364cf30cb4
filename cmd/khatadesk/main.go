package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/khatadesk/khatadesk/internal/app"
	"github.com/khatadesk/khatadesk/internal/fulfillment"
	"github.com/khatadesk/khatadesk/internal/invoices"
	"github.com/khatadesk/khatadesk/internal/ledger"
	"github.com/khatadesk/khatadesk/internal/masterdata"
	"github.com/khatadesk/khatadesk/internal/observability"
	"github.com/khatadesk/khatadesk/internal/payments"
	"github.com/khatadesk/khatadesk/internal/platform/cache"
	"github.com/khatadesk/khatadesk/internal/platform/db"
	"github.com/khatadesk/khatadesk/internal/snapshot"
	"github.com/khatadesk/khatadesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis connect", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	masterRepo := masterdata.NewRepository(pool)
	snapshotRepo := snapshot.NewRepository(pool)
	snapshotService := snapshot.NewService(snapshotRepo, masterRepo)

	ledgerCache := ledger.NewCache(redisClient, logger)
	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, ledgerCache, logger)

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(invoiceRepo, snapshotService, ledgerCache, logger)

	paymentRepo := payments.NewRepository(pool)
	paymentService := payments.NewService(paymentRepo, logger)

	fulfillmentRepo := fulfillment.NewRepository(pool)
	fulfillmentService := fulfillment.NewService(fulfillmentRepo, logger)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		InvoiceHandler:     invoices.NewHandler(logger, invoiceService, metrics),
		PaymentHandler:     payments.NewHandler(logger, paymentService, metrics),
		LedgerHandler:      ledger.NewHandler(logger, ledgerService),
		FulfillmentHandler: fulfillment.NewHandler(logger, fulfillmentService),
		JobHandler:         jobs.NewHandler(inspector, logger),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
