package simulate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "storage.db")
	store, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	token, err := store.LoadUserStorage(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SaveUserStorage(ctx, "u-1", `{"data":{"name":"ada"}}`))
	token, err = store.LoadUserStorage(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"name":"ada"}}`, token)

	// Upsert overwrites.
	require.NoError(t, store.SaveUserStorage(ctx, "u-1", `{"data":{"name":"grace"}}`))
	token, err = store.LoadUserStorage(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"name":"grace"}}`, token)
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "storage.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	require.NoError(t, store.SaveUserStorage(ctx, "u-1", "token"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	token, err := reopened.LoadUserStorage(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "token", token)
}

func TestSQLiteStoreEmptyDSN(t *testing.T) {
	_, err := NewSQLiteStore("  ")
	require.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveUserStorage(ctx, "u-1", "token"))
	token, err := store.LoadUserStorage(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "token", token)

	token, err = store.LoadUserStorage(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, token)
}
