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

// Package rank scores corpus signals against a query embedding.
//
// Ranking is a pure function of its inputs: the same query vector, corpus and
// options always produce the same ordered result.
package rank

import (
	"math"
	"slices"

	"github.com/poiesic/dealflow/corpus"
	"github.com/poiesic/dealflow/core"
)

// Options controls filtering and score blending.
type Options struct {
	// TopK caps the number of results. Zero or negative means no cap.
	TopK int

	// MinScore drops results scoring below it.
	MinScore float64

	// Query is the raw description; only used for keyword blending.
	Query string

	// SemanticWeight and KeywordWeight blend cosine similarity with keyword
	// overlap. With KeywordWeight zero the score is SemanticWeight * cosine.
	SemanticWeight float64
	KeywordWeight  float64
}

// DefaultOptions returns plain cosine ranking keeping the ten best results
// scoring at least 0.5.
func DefaultOptions() Options {
	return Options{
		TopK:           10,
		MinScore:       0.5,
		SemanticWeight: 1.0,
	}
}

// Result is a scored signal.
type Result struct {
	Signal core.Signal
	Score  float64
}

// Rank scores every entry against query and returns the results ordered by
// score descending, ties broken by ascending signal id.
func Rank(query []float32, entries []corpus.Entry, opts Options) []Result {
	if len(entries) == 0 {
		return []Result{}
	}

	var queryWords map[string]struct{}
	if opts.KeywordWeight > 0 {
		queryWords = wordSet(opts.Query)
	}

	results := make([]Result, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		score := opts.SemanticWeight * Cosine(query, e.Vector)
		if opts.KeywordWeight > 0 {
			score += opts.KeywordWeight * KeywordOverlap(queryWords, e.Signal.Keywords)
		}
		if score < opts.MinScore || math.IsNaN(score) {
			continue
		}
		results = append(results, Result{Signal: e.Signal, Score: score})
	}

	slices.SortFunc(results, func(a, b Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.Signal.ID < b.Signal.ID:
			return -1
		case a.Signal.ID > b.Signal.ID:
			return 1
		}
		return 0
	})

	if opts.TopK > 0 && len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	return results
}

// Cosine returns the cosine similarity of a and b.
// Empty, zero-norm or different-length vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
