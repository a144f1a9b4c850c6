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

package ai

import (
	"errors"
	"log/slog"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// ReasoningHost is the base URL for the text generation service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	ReasoningHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// ReasoningModel is the model identifier used to explain matches and draft outreach.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	ReasoningModel string

	// APIKey is the bearer token sent to both services.
	// Local OpenAI-compatible servers accept any value; "none" is used by default.
	APIKey string

	// ReasoningTemperature is the sampling temperature for match explanations.
	// Default: 0.3
	ReasoningTemperature float64

	// MaxReasoningTokens caps the length of a match explanation.
	// Default: 100
	MaxReasoningTokens int

	// OutreachTemperature is the sampling temperature for outreach emails.
	// Default: 0.7
	OutreachTemperature float64

	// MaxOutreachTokens caps the length of an outreach email.
	// Default: 400
	MaxOutreachTokens int

	// IncludeOutreach asks the reasoner for a short outreach message alongside
	// every explanation.
	IncludeOutreach bool

	// MaxInputChars is the number of characters of input text sent to either
	// service. Longer input is truncated.
	// Default: 8000
	MaxInputChars int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithReasoningHost sets the text generation service host URL.
func WithReasoningHost(host string) ConfigOption {
	return func(c *Config) {
		c.ReasoningHost = host
	}
}

// WithHost sets both embedding and reasoning hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ReasoningHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithReasoningModel sets the text generation model identifier.
func WithReasoningModel(model string) ConfigOption {
	return func(c *Config) {
		c.ReasoningModel = model
	}
}

// WithAPIKey sets the API key used for both services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithReasoningTemperature sets the temperature for match explanations.
func WithReasoningTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.ReasoningTemperature = temperature
	}
}

// WithMaxReasoningTokens sets the token cap for match explanations.
func WithMaxReasoningTokens(tokens int) ConfigOption {
	return func(c *Config) {
		c.MaxReasoningTokens = tokens
	}
}

// WithOutreachTemperature sets the temperature for outreach emails.
func WithOutreachTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.OutreachTemperature = temperature
	}
}

// WithMaxOutreachTokens sets the token cap for outreach emails.
func WithMaxOutreachTokens(tokens int) ConfigOption {
	return func(c *Config) {
		c.MaxOutreachTokens = tokens
	}
}

// WithIncludeOutreach toggles outreach drafts in match explanations.
func WithIncludeOutreach(include bool) ConfigOption {
	return func(c *Config) {
		c.IncludeOutreach = include
	}
}

// WithMaxInputChars sets the input truncation limit.
func WithMaxInputChars(chars int) ConfigOption {
	return func(c *Config) {
		c.MaxInputChars = chars
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and reasoning use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:        defaultHost,
		ReasoningHost:        defaultHost,
		EmbeddingModel:       "embeddinggemma",
		ReasoningModel:       "qwen2.5:3b",
		APIKey:               "none",
		ReasoningTemperature: 0.3,
		MaxReasoningTokens:   100,
		OutreachTemperature:  0.7,
		MaxOutreachTokens:    400,
		MaxInputChars:        8000,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("https://api.openai.com/v1"),
//	    WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	    WithReasoningModel("gpt-4o-mini"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.ReasoningHost = normalizeHost(c.ReasoningHost)
	if c.APIKey == "" {
		c.APIKey = "none"
	}
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.ReasoningHost == "" {
		return errors.New("ai config: ReasoningHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ReasoningModel == "" {
		return errors.New("ai config: ReasoningModel is required")
	}
	if c.ReasoningTemperature < 0 || c.ReasoningTemperature > 2 {
		return errors.New("ai config: ReasoningTemperature must be between 0 and 2")
	}
	if c.OutreachTemperature < 0 || c.OutreachTemperature > 2 {
		return errors.New("ai config: OutreachTemperature must be between 0 and 2")
	}
	if c.MaxReasoningTokens < 1 {
		return errors.New("ai config: MaxReasoningTokens must be positive")
	}
	if c.MaxOutreachTokens < 1 {
		return errors.New("ai config: MaxOutreachTokens must be positive")
	}
	if c.MaxInputChars < 1 {
		return errors.New("ai config: MaxInputChars must be positive")
	}
	return nil
}

// LogValue implements slog.LogValuer. The API key is never logged.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("embedding_host", c.EmbeddingHost),
		slog.String("embedding_model", c.EmbeddingModel),
		slog.String("reasoning_host", c.ReasoningHost),
		slog.String("reasoning_model", c.ReasoningModel),
		slog.Bool("include_outreach", c.IncludeOutreach),
	)
}
