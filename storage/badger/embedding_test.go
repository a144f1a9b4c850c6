package badger

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dealflow/core"
	"github.com/poiesic/dealflow/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbedding(id int64, model string, vector ...float32) *core.SignalEmbedding {
	return &core.SignalEmbedding{
		SignalID:    id,
		Model:       model,
		ContentHash: uint64(id) * 31,
		Vector:      vector,
	}
}

func TestEmbeddingCacheBasics(t *testing.T) {
	cache, err := NewMemoryEmbeddingCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()

	err = cache.SaveEmbeddings(ctx,
		newTestEmbedding(1, "m1", 1, 0),
		newTestEmbedding(2, "m1", 0, 1),
		newTestEmbedding(1, "m2", 0.5, 0.5),
	)
	require.NoError(t, err)

	t.Run("hits and misses", func(t *testing.T) {
		got, err := cache.GetEmbeddings(ctx, "m1", 1, 2, 3)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, []float32{1, 0}, got[1].Vector)
		assert.Equal(t, []float32{0, 1}, got[2].Vector)
		assert.Equal(t, uint64(62), got[2].ContentHash)
		assert.NotContains(t, got, int64(3))
	})

	t.Run("models are separate namespaces", func(t *testing.T) {
		got, err := cache.GetEmbeddings(ctx, "m2", 1, 2)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, []float32{0.5, 0.5}, got[1].Vector)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, cache.SaveEmbeddings(ctx, newTestEmbedding(1, "m1", 9, 9)))
		got, err := cache.GetEmbeddings(ctx, "m1", 1)
		require.NoError(t, err)
		assert.Equal(t, []float32{9, 9}, got[1].Vector)
	})

	t.Run("escaped look-alike models stay apart", func(t *testing.T) {
		require.NoError(t, cache.SaveEmbeddings(ctx,
			newTestEmbedding(8, "nomic:v1", 1, 1),
			newTestEmbedding(8, "nomic%3Av1", 2, 2),
		))
		got, err := cache.GetEmbeddings(ctx, "nomic:v1", 8)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 1}, got[8].Vector)
		got, err = cache.GetEmbeddings(ctx, "nomic%3Av1", 8)
		require.NoError(t, err)
		assert.Equal(t, []float32{2, 2}, got[8].Vector)
	})

	t.Run("no ids", func(t *testing.T) {
		got, err := cache.GetEmbeddings(ctx, "m1")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("missing model rejected", func(t *testing.T) {
		err := cache.SaveEmbeddings(ctx, newTestEmbedding(5, "", 1))
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestEmbeddingCacheCorruptEntry(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	cache, err := NewEmbeddingCache(backend)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	err = backend.WithTransaction(ctx, func(tx *badger.Txn) error {
		return tx.Set(makeSignalEmbeddingKey("m", 4), []byte{0xff})
	})
	require.NoError(t, err)

	got, err := cache.GetEmbeddings(ctx, "m", 4)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddingCachePrune(t *testing.T) {
	cache, err := NewMemoryEmbeddingCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.SaveEmbeddings(ctx,
		newTestEmbedding(1, "m", 1),
		newTestEmbedding(2, "m", 2),
		newTestEmbedding(3, "m", 3),
		newTestEmbedding(2, "other", 2),
	))

	removed, err := cache.PruneEmbeddings(ctx, "m", []int64{2})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	got, err := cache.GetEmbeddings(ctx, "m", 1, 2, 3)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, int64(2))

	other, err := cache.GetEmbeddings(ctx, "other", 2)
	require.NoError(t, err)
	assert.Len(t, other, 1)

	removed, err = cache.PruneEmbeddings(ctx, "m", []int64{2})
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestOpenEmbeddingCache_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := OpenEmbeddingCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.SaveEmbeddings(ctx, newTestEmbedding(8, "m", 0.25, 0.75)))
	require.NoError(t, cache.Close())

	reopened, err := OpenEmbeddingCache(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetEmbeddings(ctx, "m", 8)
	require.NoError(t, err)
	require.Contains(t, got, int64(8))
	assert.Equal(t, []float32{0.25, 0.75}, got[8].Vector)
}
