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

package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/dealflow/ai"
	"github.com/poiesic/dealflow/corpus"
	"github.com/poiesic/dealflow/core"
	"github.com/poiesic/dealflow/rank"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// embeddingRetryDelay is the base backoff between query embedding attempts.
const embeddingRetryDelay = 100 * time.Millisecond

// Corpus is the read side of a loaded signal store.
type Corpus interface {
	All() []corpus.Entry
	Get(id int64) (corpus.Entry, bool)
	Loaded() bool
	Dimension() int
}

var _ Corpus = (*corpus.Store)(nil)

// Matcher matches startup descriptions against the signal corpus.
// It is safe for concurrent use; reasoning calls from all requests share one
// worker pool and one rate limiter.
type Matcher struct {
	store    Corpus
	embedder ai.Embedder
	reasoner ai.Reasoner
	config   Config
	pool     *ants.Pool
	limiter  *rate.Limiter
	flight   singleflight.Group
	logger   *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithConfig replaces the default configuration.
func WithConfig(config Config) Option {
	return func(m *Matcher) error {
		if err := config.Validate(); err != nil {
			return err
		}
		m.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger.With("component", "matcher")
		return nil
	}
}

// NewMatcher creates a matcher over store using the provider's embedder and reasoner.
// Call Release when the matcher is no longer needed.
func NewMatcher(store Corpus, provider ai.AIProvider, opts ...Option) (*Matcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	m := &Matcher{
		store:    store,
		embedder: provider.Embedder(),
		reasoner: provider.Reasoner(),
		config:   DefaultConfig(),
		logger:   slog.Default().With("component", "matcher"),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(m.config.Concurrency)
	if err != nil {
		return nil, err
	}
	m.pool = pool

	if m.config.ReasoningRate > 0 {
		m.limiter = rate.NewLimiter(rate.Limit(m.config.ReasoningRate), m.config.ReasoningBurst)
	} else {
		m.limiter = rate.NewLimiter(rate.Inf, 0)
	}

	m.logger.Debug("created matcher", "config", m.config)
	return m, nil
}

// Config returns the matcher's configuration.
func (m *Matcher) Config() Config {
	return m.config
}

// Release releases the worker pool. The matcher must not be used afterwards.
func (m *Matcher) Release() {
	if m.pool != nil {
		m.pool.Release()
	}
}

// Match returns the signals best matching description, each with a
// justification. Reasoning failures never fail the request; the affected
// match carries fallback text instead.
func (m *Matcher) Match(ctx context.Context, description string) (*core.MatchResponse, error) {
	return m.MatchWithMonitor(ctx, description, nil)
}

// MatchWithMonitor is Match with a monitor receiving a callback at each stage.
func (m *Matcher) MatchWithMonitor(ctx context.Context, description string, monitor MatchMonitor) (*core.MatchResponse, error) {
	started := time.Now()
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	description, err := m.checkDescription(description)
	if err != nil {
		return nil, err
	}
	if !m.store.Loaded() {
		return nil, ErrCorpusNotLoaded
	}

	monitor.Start(description)

	entries := m.store.All()
	if len(entries) == 0 {
		response := &core.MatchResponse{Matches: []core.MatchResult{}}
		monitor.Finish(response)
		return response, nil
	}

	vector, err := m.embedQuery(ctx, description)
	if err != nil {
		return nil, err
	}
	monitor.AfterEmbedding(len(vector))

	if dim := m.store.Dimension(); len(vector) != dim {
		m.logger.Error("query embedding dimension does not match corpus", "query", len(vector), "corpus", dim)
		return nil, fmt.Errorf("%w: query embedding has dimension %d, corpus has %d",
			ErrProviderUnavailable, len(vector), dim)
	}

	ranked := rank.Rank(vector, entries, rank.Options{
		TopK:           m.config.TopK,
		MinScore:       m.config.MinScore,
		Query:          description,
		SemanticWeight: m.config.SemanticWeight,
		KeywordWeight:  m.config.KeywordWeight,
	})
	monitor.AfterRanking(ranked)

	response := &core.MatchResponse{
		Matches: m.explainAll(ctx, description, ranked, started, monitor),
	}

	m.logger.Debug("match complete",
		"matches", len(response.Matches),
		"elapsed", time.Since(started))
	monitor.Finish(response)
	return response, nil
}

func (m *Matcher) checkDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("%w: startup description is required", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(description); n > m.config.MaxDescriptionLength {
		return "", fmt.Errorf("%w: startup description is %d characters, limit is %d",
			ErrInvalidInput, n, m.config.MaxDescriptionLength)
	}
	return description, nil
}

// embedQuery embeds description once for all concurrent callers asking for the
// same text. The shared call runs under its own EmbeddingTimeout so one
// caller giving up does not fail the others.
func (m *Matcher) embedQuery(ctx context.Context, description string) ([]float32, error) {
	ch := m.flight.DoChan(description, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.config.EmbeddingTimeout)
		defer cancel()

		var vector []float32
		err := corpus.RetryWithBackoff(fctx, func() error {
			var err error
			vector, err = m.embedder.EmbedText(fctx, description)
			if err == nil && len(vector) == 0 {
				err = fmt.Errorf("%w: empty query embedding", ai.ErrMalformedResponse)
			}
			return err
		}, m.config.EmbeddingRetries, embeddingRetryDelay)
		return vector, err
	})

	select {
	case <-ctx.Done():
		return nil, m.embeddingError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, m.embeddingError(res.Err)
		}
		return res.Val.([]float32), nil
	}
}

func (m *Matcher) embeddingError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		m.logger.Error("query embedding timed out", "err", err)
		return fmt.Errorf("%w: query embedding: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, ai.ErrEmptyInput):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	default:
		m.logger.Error("query embedding failed", "err", err)
		return fmt.Errorf("%w: query embedding: %w", ErrProviderUnavailable, err)
	}
}

type explainOutcome struct {
	explanation ai.Explanation
	err         error
}

// explainAll generates reasoning for every ranked candidate on the shared pool
// and returns the results in rank order. Every candidate shares one deadline,
// started + ReasoningTimeout; a candidate without reasoning by then gets
// fallback text.
func (m *Matcher) explainAll(ctx context.Context, description string, ranked []rank.Result, started time.Time, monitor MatchMonitor) []core.MatchResult {
	results := make([]core.MatchResult, 0, len(ranked))
	if len(ranked) == 0 {
		return results
	}

	rctx, cancel := context.WithDeadline(ctx, started.Add(m.config.ReasoningTimeout))
	defer cancel()

	slots := make([]chan explainOutcome, len(ranked))
	for i := range slots {
		slots[i] = make(chan explainOutcome, 1)
	}

	// Submit blocks while the pool is saturated, so submission runs apart
	// from collection to keep the deadline honest.
	go func() {
		for i, r := range ranked {
			slot := slots[i]
			signal, score := r.Signal, r.Score
			err := m.pool.Submit(func() {
				exp, err := m.explainOne(rctx, description, signal, score)
				slot <- explainOutcome{explanation: exp, err: err}
			})
			if err != nil {
				slot <- explainOutcome{err: err}
			}
		}
	}()

	seen := make(map[int64]struct{}, len(ranked))
	for i, r := range ranked {
		outcome := collect(rctx, slots[i])

		if _, dup := seen[r.Signal.ID]; dup {
			m.logger.Warn("dropping duplicate signal from results", "signal", r.Signal.ID)
			continue
		}
		seen[r.Signal.ID] = struct{}{}

		result := core.MatchResult{
			Signal:    r.Signal,
			Score:     r.Score,
			Reasoning: strings.TrimSpace(outcome.explanation.Reasoning),
			Outreach:  strings.TrimSpace(outcome.explanation.Outreach),
		}
		if outcome.err == nil && result.Reasoning == "" {
			outcome.err = fmt.Errorf("%w: empty reasoning", ai.ErrMalformedResponse)
		}
		if outcome.err != nil {
			m.logger.Warn("reasoning unavailable, using fallback", "signal", r.Signal.ID, "err", outcome.err)
			monitor.ReasoningFallback(r.Signal.ID, outcome.err)
			result.Reasoning = FallbackReasoning(r.Signal, r.Score)
			result.Outreach = ""
			result.Fallback = true
		}
		results = append(results, result)
	}

	return results
}

// collect returns the outcome in slot, or a timeout once ctx is done. A
// finished outcome always wins over an expired deadline.
func collect(ctx context.Context, slot <-chan explainOutcome) explainOutcome {
	select {
	case outcome := <-slot:
		return outcome
	default:
	}
	select {
	case outcome := <-slot:
		return outcome
	case <-ctx.Done():
		select {
		case outcome := <-slot:
			return outcome
		default:
			return explainOutcome{err: ctx.Err()}
		}
	}
}

// explainOne waits for a rate limiter token and calls the reasoner.
func (m *Matcher) explainOne(ctx context.Context, description string, signal core.Signal, score float64) (ai.Explanation, error) {
	if err := ctx.Err(); err != nil {
		return ai.Explanation{}, err
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return ai.Explanation{}, err
	}
	return m.reasoner.Explain(ctx, description, signal, score)
}

// FallbackReasoning is the deterministic justification used when reasoning
// could not be generated for a match.
func FallbackReasoning(signal core.Signal, score float64) string {
	return fmt.Sprintf("Matched with a relevance score of %.0f%% in the %s category: %s.",
		score*100, signal.Category, signal.Title)
}
