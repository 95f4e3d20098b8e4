package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wealthtrack/internal/blob"
	"wealthtrack/internal/config"
	"wealthtrack/internal/events"
	"wealthtrack/internal/export"
	gsheet "wealthtrack/internal/export/google"
	apphttp "wealthtrack/internal/http"
	"wealthtrack/internal/ledger"
	"wealthtrack/internal/log"
	"wealthtrack/internal/optimizer"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	var store blob.Store
	switch cfg.DataBackend {
	case "sqlite":
		sqliteStore, err := blob.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store",
				log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		store = sqliteStore
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		store = blob.NewMemoryStore()
		logger.Info("Initialized memory backend")
	}
	defer store.Close()

	ledgerOpts := []ledger.Option{ledger.WithLogger(logger)}

	// Change events are optional; without a broker the server runs alone.
	var eventsClient *events.Client
	if cfg.AMQPURL != "" {
		var err error
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer eventsClient.Close()
		ledgerOpts = append(ledgerOpts, ledger.WithPublisher(eventsClient))
		logger.Info("Change event publishing enabled",
			"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	led, err := ledger.Open(context.Background(), store, ledgerOpts...)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err)
		os.Exit(1)
	}

	// Direct export is optional; the worker process covers the async path.
	var exporter export.TransactionExporter
	if cfg.GoogleSpreadsheetID != "" {
		cli, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		exporter = cli
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	srv := apphttp.NewServer(":"+cfg.Port, led, optimizer.New(), exporter, cfg.AdviceTimeout, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting wealthtrack server",
		"port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
