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

package dealflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/dealflow/ai"
	"github.com/poiesic/dealflow/ai/openai"
	"github.com/poiesic/dealflow/core"
	"github.com/poiesic/dealflow/corpus"
	"github.com/poiesic/dealflow/match"
	"github.com/poiesic/dealflow/storage"
	"github.com/poiesic/dealflow/storage/badger"
)

// Engine wires the AI provider, embedding cache, signal store and matcher
// together and owns their lifecycle.
type Engine struct {
	provider ai.AIProvider
	cache    storage.EmbeddingCache
	store    *corpus.Store
	matcher  *match.Matcher
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig    *ai.Config
	provider    ai.AIProvider
	cacheDir    string
	matchConfig match.Config
	corpusOpts  []corpus.Option
	logger      *slog.Logger
}

// WithAIConfig sets the provider configuration. Ignored when WithProvider is used,
// except for the embedding model, which namespaces cached vectors.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider uses an existing provider instead of creating one.
// The engine closes it on Close.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithCacheDir persists signal embeddings under dir. Without it vectors live
// only in memory.
func WithCacheDir(dir string) EngineOption {
	return func(o *engineOptions) {
		o.cacheDir = dir
	}
}

// WithMatchConfig sets the matcher configuration.
func WithMatchConfig(config match.Config) EngineOption {
	return func(o *engineOptions) {
		o.matchConfig = config
	}
}

// WithCorpusOptions passes extra options to the signal store.
func WithCorpusOptions(opts ...corpus.Option) EngineOption {
	return func(o *engineOptions) {
		o.corpusOpts = append(o.corpusOpts, opts...)
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

func NewEngine(opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:    ai.DefaultConfig(),
		matchConfig: match.DefaultConfig(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	e := &Engine{
		provider: provider,
		logger:   options.logger.With("component", "engine"),
	}

	storeOpts := []corpus.Option{corpus.WithLogger(options.logger)}
	if options.cacheDir != "" {
		cache, err := badger.OpenEmbeddingCache(options.cacheDir)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.cache = cache
		storeOpts = append(storeOpts,
			corpus.WithCache(cache),
			corpus.WithModel(options.aiConfig.EmbeddingModel))
	}
	storeOpts = append(storeOpts, options.corpusOpts...)

	store, err := corpus.NewStore(provider.Embedder(), storeOpts...)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.store = store

	matcher, err := match.NewMatcher(store, provider,
		match.WithConfig(options.matchConfig),
		match.WithLogger(options.logger))
	if err != nil {
		e.Close()
		return nil, err
	}
	e.matcher = matcher

	return e, nil
}

// LoadCorpus reads and embeds the signal file at path. It must succeed before
// the engine can match.
func (e *Engine) LoadCorpus(ctx context.Context, path string) error {
	return e.store.LoadFile(ctx, path)
}

// LoadSignals embeds signals as the corpus.
func (e *Engine) LoadSignals(ctx context.Context, signals []core.Signal) error {
	return e.store.Load(ctx, signals)
}

func (e *Engine) Match(ctx context.Context, description string) (*core.MatchResponse, error) {
	return e.matcher.Match(ctx, description)
}

func (e *Engine) DraftOutreach(ctx context.Context, description string, signal core.Signal, score float64) (*core.OutreachDraft, error) {
	return e.matcher.DraftOutreach(ctx, description, signal, score)
}

func (e *Engine) Store() *corpus.Store {
	return e.store
}

func (e *Engine) Matcher() *match.Matcher {
	return e.matcher
}

func (e *Engine) Close() error {
	var errs []error

	if e.matcher != nil {
		e.matcher.Release()
	}

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}

	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.logger.Error("error closing embedding cache", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
