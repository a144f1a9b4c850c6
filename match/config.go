package match

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Config controls ranking and provider fan-out for a Matcher.
type Config struct {
	// TopK caps the number of matches returned. Zero means no cap.
	TopK int `json:"top_k" yaml:"top_k"`

	// MinScore drops matches scoring below it.
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// SemanticWeight and KeywordWeight blend cosine similarity with keyword
	// overlap. KeywordWeight zero gives plain cosine scores.
	SemanticWeight float64 `json:"semantic_weight" yaml:"semantic_weight"`
	KeywordWeight  float64 `json:"keyword_weight" yaml:"keyword_weight"`

	// Concurrency is the number of reasoning calls in flight across all requests.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// EmbeddingTimeout bounds the query embedding, retries included.
	EmbeddingTimeout time.Duration `json:"embedding_timeout" yaml:"embedding_timeout"`

	// EmbeddingRetries is the number of query embedding attempts.
	EmbeddingRetries int `json:"embedding_retries" yaml:"embedding_retries"`

	// ReasoningTimeout bounds reasoning for a whole request, measured from
	// the moment the request arrives.
	ReasoningTimeout time.Duration `json:"reasoning_timeout" yaml:"reasoning_timeout"`

	// ReasoningRate limits reasoning calls per second. Zero means unlimited.
	ReasoningRate float64 `json:"reasoning_rate" yaml:"reasoning_rate"`

	// ReasoningBurst is the limiter bucket size when ReasoningRate is set.
	ReasoningBurst int `json:"reasoning_burst" yaml:"reasoning_burst"`

	// MaxDescriptionLength is the longest accepted description, in runes.
	MaxDescriptionLength int `json:"max_description_length" yaml:"max_description_length"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		TopK:                 10,
		MinScore:             0.5,
		SemanticWeight:       1.0,
		KeywordWeight:        0.0,
		Concurrency:          4,
		EmbeddingTimeout:     10 * time.Second,
		EmbeddingRetries:     2,
		ReasoningTimeout:     15 * time.Second,
		ReasoningRate:        0,
		ReasoningBurst:       1,
		MaxDescriptionLength: 10000,
	}
}

// Validate checks that all fields hold usable values.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("match config: "+format, args...))
		}
	}

	check(c.TopK >= 0, "TopK must not be negative, got %d", c.TopK)
	check(isFinite(c.MinScore), "MinScore must be a finite number")
	check(isFinite(c.SemanticWeight) && c.SemanticWeight >= 0, "SemanticWeight must not be negative")
	check(isFinite(c.KeywordWeight) && c.KeywordWeight >= 0, "KeywordWeight must not be negative")
	check(c.SemanticWeight+c.KeywordWeight > 0, "SemanticWeight and KeywordWeight must not both be zero")
	check(c.Concurrency >= 1, "Concurrency must be at least 1, got %d", c.Concurrency)
	check(c.EmbeddingTimeout > 0, "EmbeddingTimeout must be positive")
	check(c.EmbeddingRetries >= 1, "EmbeddingRetries must be at least 1, got %d", c.EmbeddingRetries)
	check(c.ReasoningTimeout > 0, "ReasoningTimeout must be positive")
	check(isFinite(c.ReasoningRate) && c.ReasoningRate >= 0, "ReasoningRate must not be negative")
	check(c.ReasoningRate == 0 || c.ReasoningBurst >= 1, "ReasoningBurst must be at least 1 when ReasoningRate is set")
	check(c.MaxDescriptionLength >= 1, "MaxDescriptionLength must be at least 1, got %d", c.MaxDescriptionLength)

	return errors.Join(errs...)
}

// LogValue implements slog.LogValuer.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("top_k", c.TopK),
		slog.Float64("min_score", c.MinScore),
		slog.Float64("semantic_weight", c.SemanticWeight),
		slog.Float64("keyword_weight", c.KeywordWeight),
		slog.Int("concurrency", c.Concurrency),
		slog.Duration("embedding_timeout", c.EmbeddingTimeout),
		slog.Duration("reasoning_timeout", c.ReasoningTimeout),
		slog.Float64("reasoning_rate", c.ReasoningRate),
	)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
