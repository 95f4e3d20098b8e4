package blob

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the Store contract against any implementation.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "transactions")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "transactions", []byte(`[{"id":"t1"}]`)))
	got, err := store.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"t1"}]`), got)

	// Put replaces.
	require.NoError(t, store.Put(ctx, "transactions", []byte(`[]`)))
	got, err = store.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	require.NoError(t, store.Delete(ctx, "transactions"))
	_, err = store.Get(ctx, "transactions")
	assert.ErrorIs(t, err, ErrNotFound)

	// Delete of an absent key is a no-op.
	require.NoError(t, store.Delete(ctx, "transactions"))

	require.NoError(t, store.Put(ctx, "budgets", []byte(`[]`)))
	require.NoError(t, store.Put(ctx, "investments", []byte(`[]`)))
	require.NoError(t, store.Purge(ctx))
	_, err = store.Get(ctx, "budgets")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "investments")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	exerciseStore(t, store)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte(`[1,2,3]`)
	require.NoError(t, store.Put(ctx, "k", value))
	value[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2,3]`), got)

	got[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2,3]`), again)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "transactions", []byte(`[{"id":"t1"}]`)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"t1"}]`), got)
}
