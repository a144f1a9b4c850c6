package ai

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		EmbeddingHost:        "http://localhost:11434/v1",
		ReasoningHost:        "http://localhost:11434/v1",
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

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ReasoningHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.ReasoningModel)
	assert.Equal(t, "none", cfg.APIKey)
	assert.Equal(t, 0.3, cfg.ReasoningTemperature)
	assert.Equal(t, 100, cfg.MaxReasoningTokens)
	assert.Equal(t, 0.7, cfg.OutreachTemperature)
	assert.Equal(t, 400, cfg.MaxOutreachTokens)
	assert.Equal(t, 8000, cfg.MaxInputChars)
	assert.False(t, cfg.IncludeOutreach)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.ReasoningHost)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ReasoningHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithReasoningHost("http://reason:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://reason:9090/v1", cfg.ReasoningHost)
	})

	t.Run("with generation settings", func(t *testing.T) {
		cfg := NewConfig(
			WithReasoningTemperature(0.1),
			WithMaxReasoningTokens(64),
			WithOutreachTemperature(0.9),
			WithMaxOutreachTokens(512),
			WithIncludeOutreach(true),
			WithMaxInputChars(2000),
		)

		assert.Equal(t, 0.1, cfg.ReasoningTemperature)
		assert.Equal(t, 64, cfg.MaxReasoningTokens)
		assert.Equal(t, 0.9, cfg.OutreachTemperature)
		assert.Equal(t, 512, cfg.MaxOutreachTokens)
		assert.True(t, cfg.IncludeOutreach)
		assert.Equal(t, 2000, cfg.MaxInputChars)
	})

	t.Run("with models and key", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithReasoningModel("gpt-4o-mini"),
			WithAPIKey("sk-test"),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.ReasoningModel)
		assert.Equal(t, "sk-test", cfg.APIKey)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name              string
		embeddingHost     string
		reasoningHost     string
		expectedEmbedding string
		expectedReasoning string
	}{
		{
			name:              "already has /v1",
			embeddingHost:     "http://localhost:11434/v1",
			reasoningHost:     "http://localhost:11434/v1",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedReasoning: "http://localhost:11434/v1",
		},
		{
			name:              "missing /v1",
			embeddingHost:     "http://localhost:11434",
			reasoningHost:     "http://localhost:11434",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedReasoning: "http://localhost:11434/v1",
		},
		{
			name:              "has trailing slash",
			embeddingHost:     "http://localhost:11434/",
			reasoningHost:     "http://localhost:11434/",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedReasoning: "http://localhost:11434/v1",
		},
		{
			name:              "empty hosts",
			embeddingHost:     "",
			reasoningHost:     "",
			expectedEmbedding: "",
			expectedReasoning: "",
		},
		{
			name:              "different formats",
			embeddingHost:     "http://embed:8080",
			reasoningHost:     "http://reason:9090/v1",
			expectedEmbedding: "http://embed:8080/v1",
			expectedReasoning: "http://reason:9090/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				EmbeddingHost: tt.embeddingHost,
				ReasoningHost: tt.reasoningHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbedding, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedReasoning, cfg.ReasoningHost)
		})
	}

	t.Run("blank api key becomes none", func(t *testing.T) {
		cfg := &Config{}
		cfg.Normalize()
		assert.Equal(t, "none", cfg.APIKey)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := validConfig()
		cfg.EmbeddingHost = "http://localhost:11434"

		err := cfg.Validate()
		assert.NoError(t, err)

		// Should also normalize
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost"},
		{"missing reasoning host", func(c *Config) { c.ReasoningHost = "" }, "ReasoningHost"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"missing reasoning model", func(c *Config) { c.ReasoningModel = "" }, "ReasoningModel"},
		{"negative reasoning temperature", func(c *Config) { c.ReasoningTemperature = -0.1 }, "ReasoningTemperature"},
		{"outreach temperature too high", func(c *Config) { c.OutreachTemperature = 2.5 }, "OutreachTemperature"},
		{"zero reasoning tokens", func(c *Config) { c.MaxReasoningTokens = 0 }, "MaxReasoningTokens"},
		{"zero outreach tokens", func(c *Config) { c.MaxOutreachTokens = 0 }, "MaxOutreachTokens"},
		{"zero input chars", func(c *Config) { c.MaxInputChars = 0 }, "MaxInputChars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	t.Run("temperature at boundaries", func(t *testing.T) {
		cfg := validConfig()
		cfg.ReasoningTemperature = 0
		cfg.OutreachTemperature = 2
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfigLogValueOmitsAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.APIKey = "sk-secret"

	value := cfg.LogValue()
	for _, attr := range value.Group() {
		assert.NotContains(t, attr.Value.String(), "sk-secret")
		assert.NotEqual(t, "api_key", attr.Key)
	}
	assert.Equal(t, slog.KindGroup, value.Kind())
}

func TestConfigValidate_Integration(t *testing.T) {
	// Test that NewConfig produces a valid configuration
	cfg := NewConfig()
	err := cfg.Validate()
	require.NoError(t, err)

	// Test that DefaultConfig produces a valid configuration
	cfg = DefaultConfig()
	err = cfg.Validate()
	require.NoError(t, err)
}
