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

package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// HashContent generates a deterministic 64-bit hash of text content using BLAKE2b.
// Identical content always produces an identical hash.
func HashContent(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Signal represents one government procurement opportunity.
// Signals are immutable once loaded into a corpus.
type Signal struct {
	ID           int64    `json:"id" yaml:"id"`
	Lat          float64  `json:"lat" yaml:"lat"`
	Lng          float64  `json:"lng" yaml:"lng"`
	City         string   `json:"city" yaml:"city"`
	State        string   `json:"state" yaml:"state"`
	Country      string   `json:"country,omitempty" yaml:"country,omitempty"`
	Region       string   `json:"region,omitempty" yaml:"region,omitempty"`
	Category     string   `json:"category" yaml:"category"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	Budget       *float64 `json:"budget" yaml:"budget"`
	Timeline     string   `json:"timeline" yaml:"timeline"`
	Stakeholders []string `json:"stakeholders" yaml:"stakeholders"`
	SourceURL    string   `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Keywords     []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// CanonicalText returns the text that represents the signal for embedding.
func (s *Signal) CanonicalText() string {
	return strings.TrimSpace(s.Category + " " + s.Title + " " + s.Description)
}

// ContentHash returns the hash of the signal's canonical text.
// A changed hash means any previously computed embedding is stale.
func (s *Signal) ContentHash() uint64 {
	return HashContent(s.CanonicalText())
}

// PrimaryStakeholder returns the first non-blank stakeholder,
// or "City Official" when none are listed.
func (s *Signal) PrimaryStakeholder() string {
	for _, name := range s.Stakeholders {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return "City Official"
}

// SignalEmbedding is the embedding vector computed for a signal's canonical text.
type SignalEmbedding struct {
	SignalID    int64
	Model       string    // Embedding model that produced Vector
	ContentHash uint64    // Hash of the canonical text Vector was computed from
	Vector      []float32 // Raw provider output, not normalized
}

// MatchResult pairs a signal with its relevance score and justification.
type MatchResult struct {
	Signal    Signal  `json:"signal"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
	Outreach  string  `json:"outreach,omitempty"`

	// Fallback is set when Reasoning was produced locally because generation failed.
	Fallback bool `json:"-"`
}

// MatchResponse is the ranked list of matches for a single query.
type MatchResponse struct {
	Matches []MatchResult `json:"matches"`
}

// OutreachDraft is a generated outreach email from a startup to a government contact.
type OutreachDraft struct {
	Subject     string `json:"subject"`
	To          string `json:"to"`
	Body        string `json:"body"`
	PreviewNote string `json:"preview_note"`
}
