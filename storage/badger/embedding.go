// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dealflow/core"
	"github.com/poiesic/dealflow/storage"
)

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB.
type EmbeddingCache struct {
	backend    *Backend
	ownBackend bool
	logger     *slog.Logger
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// newEmbeddingCache is an internal constructor that returns the concrete type.
func newEmbeddingCache(backend *Backend, ownBackend bool) (*EmbeddingCache, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	return &EmbeddingCache{
		backend:    backend,
		ownBackend: ownBackend,
		logger:     slog.Default().With("component", "embedding-cache"),
	}, nil
}

// NewEmbeddingCache creates an embedding cache on an open backend.
// The caller keeps ownership of backend and must close it after the cache.
func NewEmbeddingCache(backend *Backend) (storage.EmbeddingCache, error) {
	return newEmbeddingCache(backend, false)
}

// OpenEmbeddingCache opens a badger database at path and returns a cache
// that closes the database when it is closed.
func OpenEmbeddingCache(path string) (storage.EmbeddingCache, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	cache, err := newEmbeddingCache(backend, true)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the backend if the cache owns it.
func (c *EmbeddingCache) Close() error {
	if c.ownBackend {
		return c.backend.Close()
	}
	return nil
}

// GetEmbeddings retrieves cached embeddings for the given ids.
// Entries that fail to decode are logged and treated as misses.
func (c *EmbeddingCache) GetEmbeddings(ctx context.Context, model string, ids ...int64) (map[int64]*core.SignalEmbedding, error) {
	result := make(map[int64]*core.SignalEmbedding, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeSignalEmbeddingKey(model, id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			var embedding *core.SignalEmbedding
			err = item.Value(func(val []byte) error {
				var unmarshalErr error
				embedding, unmarshalErr = storage.UnmarshalSignalEmbedding(val)
				return unmarshalErr
			})
			if err != nil {
				c.logger.Warn("discarding unreadable cache entry", "model", model, "signal", id, "err", err)
				continue
			}
			if embedding.SignalID != id || embedding.Model != model {
				c.logger.Warn("discarding mismatched cache entry", "model", model, "signal", id)
				continue
			}
			result[id] = embedding
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SaveEmbeddings stores embeddings in a single transaction.
func (c *EmbeddingCache) SaveEmbeddings(ctx context.Context, embeddings ...*core.SignalEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	for _, e := range embeddings {
		if e == nil || e.Model == "" {
			return fmt.Errorf("%w: embedding without model", storage.ErrInvalidQuery)
		}
	}

	return c.backend.WithTransaction(ctx, func(tx *badger.Txn) error {
		for _, e := range embeddings {
			key := makeSignalEmbeddingKey(e.Model, e.SignalID)
			if err := tx.Set(key, storage.MarshalSignalEmbedding(e)); err != nil {
				return err
			}
		}
		return nil
	})
}

// PruneEmbeddings removes entries of model whose signal id is not in keep.
func (c *EmbeddingCache) PruneEmbeddings(ctx context.Context, model string, keep []int64) (int, error) {
	wanted := make(map[int64]struct{}, len(keep))
	for _, id := range keep {
		wanted[id] = struct{}{}
	}

	var stale [][]byte
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeModelPrefix(model)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().KeyCopy(nil)
			id, ok := parseSignalEmbeddingID(key)
			if ok {
				if _, found := wanted[id]; found {
					continue
				}
			}
			stale = append(stale, key)
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	err = c.backend.WithTransaction(ctx, func(tx *badger.Txn) error {
		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.logger.Debug("pruned cache entries", "model", model, "count", len(stale))
	return len(stale), nil
}
