package cas

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_roundTrip(t *testing.T) {
	store := New(t.TempDir())

	hash, err := store.Store("hello world")
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	got, err := store.Load(hash)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestStore_determinism(t *testing.T) {
	store := New(t.TempDir())
	h1, err := store.Store("same content")
	require.NoError(t, err)
	h2, err := store.Store("same content")
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestStore_idempotentOnExistingBlob(t *testing.T) {
	store := New(t.TempDir())
	hash, err := store.Store("repeat me")
	require.NoError(t, err)
	// second store must not error and must return the same hash
	hash2, err := store.Store("repeat me")
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)
}

func TestStore_exists(t *testing.T) {
	store := New(t.TempDir())
	assert.False(t, store.Exists("deadbeef"))
	hash, err := store.Store("x")
	require.NoError(t, err)
	assert.True(t, store.Exists(hash))
}

func TestLoad_notFound(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Load("0000000000000000000000000000000000000000000000000000000000000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoad_corruption(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	hash, err := store.Store("valid content")
	require.NoError(t, err)

	// Corrupt the blob on disk directly.
	require.NoError(t, os.WriteFile(filepath.Join(dir, hash+".z"), []byte("not zlib data"), 0o644))

	_, err = store.Load(hash)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruption))
}

func TestStore_concurrentSameContent(t *testing.T) {
	store := New(t.TempDir())
	var wg sync.WaitGroup
	hashes := make([]string, 20)
	for i := range hashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := store.Store("concurrent content")
			require.NoError(t, err)
			hashes[i] = h
		}(i)
	}
	wg.Wait()
	for _, h := range hashes {
		assert.Equal(t, hashes[0], h)
	}
	got, err := store.Load(hashes[0])
	require.NoError(t, err)
	assert.Equal(t, "concurrent content", got)
}
