// Package blob provides the key-value blob store backing the ledger.
//
// Each ledger collection persists as one JSON-array value under a fixed
// key; every mutation rewrites the whole value. There is no transactional
// guarantee across keys.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has never been written
// (or was purged).
var ErrNotFound = errors.New("blob: key not found")

// Store is the persistence port for the ledger.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Purge removes every key.
	Purge(ctx context.Context) error

	Close() error
}
