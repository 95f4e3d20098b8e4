// Package worker mirrors the persisted transaction collection to an export
// target. It reads the blob store directly, so it can run in a separate
// process from the web server.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wealthtrack/internal/blob"
	"wealthtrack/internal/core"
	"wealthtrack/internal/events"
	"wealthtrack/internal/export"
	"wealthtrack/internal/ledger"
	"wealthtrack/internal/log"
)

type ExportWorker struct {
	store    blob.Store
	exporter export.TransactionExporter
	logger   *log.Logger
}

func NewExportWorker(store blob.Store, exporter export.TransactionExporter, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		store:    store,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange reacts to a ledger change notification. Only transaction
// changes and full clears trigger an export; other collections are not
// mirrored.
func (w *ExportWorker) HandleChange(msg *events.ChangeMessage) error {
	if msg.Collection != ledger.KeyTransactions && msg.Collection != "all" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return w.ExportNow(ctx)
}

// ExportNow loads the transaction collection from the store and mirrors it
// to the export target. An absent key exports an empty collection, which
// clears the target.
func (w *ExportWorker) ExportNow(ctx context.Context) error {
	var transactions []core.Transaction

	raw, err := w.store.Get(ctx, ledger.KeyTransactions)
	switch err {
	case nil:
		if err := json.Unmarshal(raw, &transactions); err != nil {
			return fmt.Errorf("decode transactions: %w", err)
		}
	case blob.ErrNotFound:
		// Empty ledger, export nothing but still clear the mirror.
	default:
		return fmt.Errorf("load transactions: %w", err)
	}

	if err := w.exporter.ExportTransactions(ctx, transactions); err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}

	w.logger.InfoContext(ctx, "Transactions mirrored",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(transactions))
	return nil
}

// Run performs periodic full exports until ctx is done. The interval export
// catches changes whose notifications were lost.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExportNow(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic export failed",
					log.FieldOperation, log.OpExport, log.FieldError, err)
			}
		}
	}
}
