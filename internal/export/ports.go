package export

import (
	"context"

	"wealthtrack/internal/core"
)

// Ports for outbound export adapters.
type (
	// TransactionExporter mirrors the transaction collection to an
	// external target, replacing any previous export.
	TransactionExporter interface {
		ExportTransactions(ctx context.Context, transactions []core.Transaction) error
	}
)
