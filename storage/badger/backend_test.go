package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dealflow/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "cache")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_InvalidPath(t *testing.T) {
	t.Run("regular file", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

		_, err := OpenBackend(tmpFile, false)
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := OpenBackend("", false)
		assert.Error(t, err)
	})
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	// Second close is a no-op
	require.NoError(t, backend.Close())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	err = backend.WithTransaction(ctx, func(tx *badger.Txn) error {
		return tx.Set([]byte("k"), []byte("v"))
	})
	require.NoError(t, err)

	err = backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte("k"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			assert.Equal(t, "v", string(val))
			return nil
		})
	}, false)
	require.NoError(t, err)

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := backend.WithTransaction(cctx, func(tx *badger.Txn) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "sigemb:embeddinggemma:42", string(makeSignalEmbeddingKey("embeddinggemma", 42)))
	assert.Equal(t, "sigemb:nomic%3Alatest:7", string(makeSignalEmbeddingKey("nomic:latest", 7)))

	id, ok := parseSignalEmbeddingID(makeSignalEmbeddingKey("nomic:latest", 7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	_, ok = parseSignalEmbeddingID([]byte("sigemb:model:abc"))
	assert.False(t, ok)

	assert.NotEqual(t, makeSignalEmbeddingKey("a:b", 1), makeSignalEmbeddingKey("a%3Ab", 1))
	assert.Equal(t, "sigemb:a%253Ab:", string(makeModelPrefix("a%3Ab")))
}
