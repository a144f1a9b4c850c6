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

package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/dealflow/ai"
	"github.com/poiesic/dealflow/core"
	"github.com/poiesic/dealflow/storage"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize        = 64
	DefaultMaxRetries       = 3
	DefaultRetryDelay       = time.Second
	DefaultEmbedConcurrency = 2
)

// Entry pairs a signal with its embedding vector.
// Entries returned by a Store are shared and must not be modified.
type Entry struct {
	Signal core.Signal
	Vector []float32
}

// Store holds the signal corpus and its embeddings.
// It is loaded once and read-only afterwards; reads are safe for concurrent use.
type Store struct {
	embedder         ai.Embedder
	cache            storage.EmbeddingCache
	model            string
	lenient          bool
	batchSize        int
	maxRetries       int
	retryDelay       time.Duration
	embedConcurrency int
	progress         io.Writer
	logger           *slog.Logger

	mu        sync.RWMutex
	loading   bool
	loaded    bool
	entries   []Entry
	byID      map[int64]int
	dimension int
}

// Option configures a Store.
type Option func(*Store) error

// WithLenient excludes invalid or duplicate signals with a warning instead of
// failing the load.
func WithLenient(lenient bool) Option {
	return func(s *Store) error {
		s.lenient = lenient
		return nil
	}
}

// WithBatchSize sets how many signals are sent per EmbedTexts call.
func WithBatchSize(size int) Option {
	return func(s *Store) error {
		if size < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", size)
		}
		s.batchSize = size
		return nil
	}
}

// WithMaxRetries sets the number of attempts per embedding batch.
func WithMaxRetries(n int) Option {
	return func(s *Store) error {
		if n < 1 {
			return ErrInvalidMaxAttempts
		}
		s.maxRetries = n
		return nil
	}
}

// WithRetryDelay sets the base delay between batch attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Store) error {
		if d < 0 {
			return fmt.Errorf("retry delay must not be negative, got %s", d)
		}
		s.retryDelay = d
		return nil
	}
}

// WithEmbedConcurrency sets how many batches are embedded in parallel.
func WithEmbedConcurrency(n int) Option {
	return func(s *Store) error {
		if n < 1 {
			return fmt.Errorf("embed concurrency must be at least 1, got %d", n)
		}
		s.embedConcurrency = n
		return nil
	}
}

// WithCache enables reuse of previously computed embeddings.
// Requires WithModel so entries from different models never mix.
func WithCache(cache storage.EmbeddingCache) Option {
	return func(s *Store) error {
		s.cache = cache
		return nil
	}
}

// WithModel names the embedding model; it namespaces cache entries.
func WithModel(model string) Option {
	return func(s *Store) error {
		s.model = model
		return nil
	}
}

// WithProgress writes embedding progress lines to w.
func WithProgress(w io.Writer) Option {
	return func(s *Store) error {
		s.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "corpus")
		return nil
	}
}

// NewStore creates an empty store that embeds signals with embedder.
func NewStore(embedder ai.Embedder, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}

	s := &Store{
		embedder:         embedder,
		batchSize:        DefaultBatchSize,
		maxRetries:       DefaultMaxRetries,
		retryDelay:       DefaultRetryDelay,
		embedConcurrency: DefaultEmbedConcurrency,
		logger:           slog.Default().With("component", "corpus"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.cache != nil && s.model == "" {
		return nil, errors.New("embedding cache requires a model name")
	}

	return s, nil
}

// Load validates and embeds signals, then publishes them as the store's
// immutable snapshot. A store accepts one successful Load; a failed Load
// may be retried.
func (s *Store) Load(ctx context.Context, signals []core.Signal) error {
	s.mu.Lock()
	if s.loaded || s.loading {
		s.mu.Unlock()
		return ErrAlreadyLoaded
	}
	s.loading = true
	s.mu.Unlock()

	entries, dimension, err := s.build(ctx, signals)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		return err
	}

	s.entries = entries
	s.byID = make(map[int64]int, len(entries))
	for i, e := range entries {
		s.byID[e.Signal.ID] = i
	}
	s.dimension = dimension
	s.loaded = true

	s.logger.Info("corpus loaded", "signals", len(entries), "dimension", dimension)
	return nil
}

func (s *Store) build(ctx context.Context, signals []core.Signal) ([]Entry, int, error) {
	valid, err := s.validate(signals)
	if err != nil {
		return nil, 0, err
	}

	slices.SortFunc(valid, func(a, b core.Signal) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	vectors, err := s.embed(ctx, valid)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]Entry, len(valid))
	dimension := 0
	for i, signal := range valid {
		if i == 0 {
			dimension = len(vectors[i])
		} else if len(vectors[i]) != dimension {
			return nil, 0, fmt.Errorf("%w: signal %d has embedding dimension %d, expected %d",
				ErrInvalidCorpus, signal.ID, len(vectors[i]), dimension)
		}
		entries[i] = Entry{Signal: signal, Vector: vectors[i]}
	}

	return entries, dimension, nil
}

// validate returns the signals that may enter the corpus. In strict mode the
// first problem fails the load.
func (s *Store) validate(signals []core.Signal) ([]core.Signal, error) {
	valid := make([]core.Signal, 0, len(signals))
	seen := make(map[int64]struct{}, len(signals))

	for i := range signals {
		signal := signals[i]
		err := core.ValidateSignal(&signal)
		if err == nil {
			if _, dup := seen[signal.ID]; dup {
				err = fmt.Errorf("%w: duplicate id %d", core.ErrInvalidSignal, signal.ID)
			}
		}

		if err != nil {
			if !s.lenient {
				return nil, fmt.Errorf("%w: record %d: %w", ErrInvalidCorpus, i, err)
			}
			s.logger.Warn("excluding invalid signal", "index", i, "id", signal.ID, "err", err)
			continue
		}

		if signal.Stakeholders == nil {
			signal.Stakeholders = []string{}
		}
		seen[signal.ID] = struct{}{}
		valid = append(valid, signal)
	}

	if excluded := len(signals) - len(valid); excluded > 0 {
		s.logger.Warn("excluded invalid signals", "excluded", excluded, "kept", len(valid))
	}
	return valid, nil
}

// embed returns one vector per signal, in order, reusing cached vectors whose
// content hash still matches.
func (s *Store) embed(ctx context.Context, signals []core.Signal) ([][]float32, error) {
	vectors := make([][]float32, len(signals))
	hashes := make([]uint64, len(signals))
	for i := range signals {
		hashes[i] = signals[i].ContentHash()
	}

	cached := s.lookupCache(ctx, signals, hashes, vectors)

	pending := make([]int, 0, len(signals)-cached)
	for i := range vectors {
		if vectors[i] == nil {
			pending = append(pending, i)
		}
	}

	s.logger.Info("embedding corpus",
		"signals", len(signals),
		"cached", cached,
		"pending", len(pending),
		"batch_size", s.batchSize)

	var tracker *ProgressTracker
	if s.progress != nil {
		tracker = NewProgressTracker(s.progress, len(signals), s.batchSize)
		tracker.Start()
		tracker.Increment(cached)
		defer tracker.Finish()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.embedConcurrency)
	for start := 0; start < len(pending); start += s.batchSize {
		batch := pending[start:min(start+s.batchSize, len(pending))]
		g.Go(func() error {
			if err := s.embedBatch(gctx, signals, hashes, batch, vectors); err != nil {
				return err
			}
			if tracker != nil {
				tracker.Increment(len(batch))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// embedBatch embeds the signals at the given indices and writes their vectors
// into the matching slots. Each worker owns disjoint slots.
func (s *Store) embedBatch(ctx context.Context, signals []core.Signal, hashes []uint64, batch []int, vectors [][]float32) error {
	texts := make([]string, len(batch))
	for i, idx := range batch {
		texts[i] = signals[idx].CanonicalText()
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = s.embedder.EmbedTexts(ctx, texts)
		return err
	}, s.maxRetries, s.retryDelay)
	if err != nil {
		return fmt.Errorf("%w: embedding batch starting at signal %d: %w",
			ErrInvalidCorpus, signals[batch[0]].ID, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("%w: embedding count mismatch: expected %d, got %d",
			ErrInvalidCorpus, len(batch), len(embeddings))
	}

	toCache := make([]*core.SignalEmbedding, 0, len(batch))
	for i, idx := range batch {
		if len(embeddings[i]) == 0 {
			return fmt.Errorf("%w: empty embedding for signal %d", ErrInvalidCorpus, signals[idx].ID)
		}
		vectors[idx] = embeddings[i]
		toCache = append(toCache, &core.SignalEmbedding{
			SignalID:    signals[idx].ID,
			Model:       s.model,
			ContentHash: hashes[idx],
			Vector:      embeddings[i],
		})
	}

	if s.cache != nil {
		if err := s.cache.SaveEmbeddings(ctx, toCache...); err != nil {
			s.logger.Warn("failed to cache embeddings", "count", len(toCache), "err", err)
		}
	}
	return nil
}

// lookupCache fills vectors from the cache and returns how many were reused.
// Cache failures are logged and treated as misses.
func (s *Store) lookupCache(ctx context.Context, signals []core.Signal, hashes []uint64, vectors [][]float32) int {
	if s.cache == nil || len(signals) == 0 {
		return 0
	}

	ids := make([]int64, len(signals))
	for i := range signals {
		ids[i] = signals[i].ID
	}

	found, err := s.cache.GetEmbeddings(ctx, s.model, ids...)
	if err != nil {
		s.logger.Warn("embedding cache unavailable", "err", err)
		return 0
	}

	reused := 0
	for i, id := range ids {
		e, ok := found[id]
		if !ok || e.ContentHash != hashes[i] || len(e.Vector) == 0 {
			continue
		}
		vectors[i] = e.Vector
		reused++
	}
	return reused
}

// PruneCache removes cached embeddings of signals no longer in the corpus.
// Returns zero when the store has no cache.
func (s *Store) PruneCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}

	s.mu.RLock()
	loaded := s.loaded
	ids := make([]int64, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.Signal.ID
	}
	s.mu.RUnlock()

	if !loaded {
		return 0, errors.New("cannot prune cache before corpus is loaded")
	}
	return s.cache.PruneEmbeddings(ctx, s.model, ids)
}

// All returns the corpus entries ordered by ascending signal id.
// The returned slice is shared; callers must not modify it.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// Get returns the entry for a signal id.
func (s *Store) Get(id int64) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Len returns the number of signals in the corpus.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Loaded reports whether Load has completed successfully.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Dimension returns the embedding dimension, or 0 for an empty or unloaded corpus.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}
