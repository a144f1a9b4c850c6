package ai

import (
	"context"

	"github.com/poiesic/dealflow/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns ErrEmptyInput for blank text without contacting the backend.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reasoner generates natural-language text about a startup/signal match.
// Implementations must be thread-safe for concurrent use.
// Output is non-deterministic and each call may fail independently.
type Reasoner interface {
	// Explain produces a short justification of why the startup described by
	// query matches signal, and optionally a draft outreach message.
	Explain(ctx context.Context, query string, signal core.Signal, score float64) (Explanation, error)

	// DraftOutreach writes an outreach email from the startup to the signal's
	// primary stakeholder.
	DraftOutreach(ctx context.Context, query string, signal core.Signal, score float64) (core.OutreachDraft, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Reasoner returns the text generation service.
	Reasoner() Reasoner

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
