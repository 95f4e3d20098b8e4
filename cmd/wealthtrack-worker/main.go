package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"wealthtrack/internal/blob"
	"wealthtrack/internal/config"
	"wealthtrack/internal/events"
	"wealthtrack/internal/export"
	gsheet "wealthtrack/internal/export/google"
	expmem "wealthtrack/internal/export/memory"
	"wealthtrack/internal/log"
	"wealthtrack/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting wealthtrack-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	// The worker reads the same store the server writes. The memory backend
	// cannot be shared across processes, so sqlite is required here.
	if cfg.DataBackend != "sqlite" {
		logger.Error("Worker requires the sqlite backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}
	store, err := blob.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store",
			log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var exporter export.TransactionExporter
	if cfg.GoogleSpreadsheetID != "" {
		cli, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		exporter = cli
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = expmem.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, using in-memory target")
	}

	eventsClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer eventsClient.Close()

	exportWorker := worker.NewExportWorker(store, exporter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up with whatever the server wrote while the worker was down.
	if err := exportWorker.ExportNow(ctx); err != nil {
		logger.Error("Startup export failed", log.FieldError, err)
		// Don't exit - continue with normal operation
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eventsClient.ConsumeChanges(ctx, exportWorker.HandleChange)
	})
	g.Go(func() error {
		return exportWorker.Run(ctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
