package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "cart", "[]"))
	value, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", value)

	require.NoError(t, s.Remove(ctx, "cart"))
	_, err = s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Removing an absent key is a no-op.
	assert.NoError(t, s.Remove(ctx, "cart"))
}

func setupFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storage.json")
	return NewFileStore(path), path
}

func TestFileStore_RoundTrip(t *testing.T) {
	s, path := setupFileStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "cart", `[{"id":"p1"}]`))
	require.NoError(t, s.Set(ctx, "other", "value"))

	// A fresh store over the same path sees the same document.
	fresh := NewFileStore(path)
	value, err := fresh.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"p1"}]`, value)

	require.NoError(t, fresh.Remove(ctx, "cart"))
	_, err = fresh.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// The other key survives the removal.
	value, err = fresh.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "value", value)
}

func TestFileStore_RemoveAbsentKey(t *testing.T) {
	s, path := setupFileStore(t)
	ctx := context.Background()

	assert.NoError(t, s.Remove(ctx, "cart"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptDocument(t *testing.T) {
	s, path := setupFileStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := s.Get(ctx, "cart")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)

	assert.Error(t, s.Set(ctx, "cart", "[]"))
}

func TestFileStore_NoTempFileLeftBehind(t *testing.T) {
	s, path := setupFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart", "[]"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
