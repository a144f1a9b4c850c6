package storage

import (
	"context"

	"github.com/poiesic/dealflow/core"
)

// EmbeddingCache persists signal embeddings between process runs so an
// unchanged corpus is not re-embedded on every start.
// Implementations must be thread-safe and support concurrent access.
type EmbeddingCache interface {
	// GetEmbeddings returns the cached embeddings for the given signal ids
	// produced by model. Ids without a cached entry are absent from the map.
	// Callers must compare ContentHash before reusing a vector.
	GetEmbeddings(ctx context.Context, model string, ids ...int64) (map[int64]*core.SignalEmbedding, error)

	// SaveEmbeddings stores embeddings, replacing any entry with the same
	// model and signal id. All embeddings are written in one transaction.
	SaveEmbeddings(ctx context.Context, embeddings ...*core.SignalEmbedding) error

	// PruneEmbeddings deletes the entries of model whose signal id is not in keep.
	// Returns the number of deleted entries.
	PruneEmbeddings(ctx context.Context, model string, keep []int64) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
