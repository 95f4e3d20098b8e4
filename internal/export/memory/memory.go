// Package memory is an in-process export target used in development and
// tests when no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"wealthtrack/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	runs  int
}

func New() *Store {
	return &Store{}
}

// ExportTransactions replaces the stored mirror with the given collection.
func (s *Store) ExportTransactions(_ context.Context, transactions []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction(nil), transactions...)
	s.runs++
	return nil
}

// Exported returns a copy of the last exported collection.
func (s *Store) Exported() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}

// Runs returns how many exports have completed.
func (s *Store) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}
