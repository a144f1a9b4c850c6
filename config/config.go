// Package config loads dealflow settings from a YAML file.
//
// Missing keys keep the values from Default, so a file only needs to name
// what it changes:
//
//	server:
//	  listen: ":8080"
//	ai:
//	  host: http://localhost:11434
//	  embedding_model: embeddinggemma
//	corpus:
//	  path: data/signals.json
//	  cache_dir: .dealflow/cache
//	match:
//	  top_k: 5
//	  reasoning_timeout: 20s
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/poiesic/dealflow/ai"
	"github.com/poiesic/dealflow/match"
	"gopkg.in/yaml.v3"
)

// Config is the full set of dealflow settings.
type Config struct {
	Server struct {
		Listen          string        `yaml:"listen"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	AI AI `yaml:"ai"`

	Corpus struct {
		Path             string `yaml:"path"`
		CacheDir         string `yaml:"cache_dir"`
		Lenient          bool   `yaml:"lenient"`
		BatchSize        int    `yaml:"batch_size"`
		EmbedConcurrency int    `yaml:"embed_concurrency"`
	} `yaml:"corpus"`

	Match match.Config `yaml:"match"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// AI holds provider settings. Host, when set, applies to both services
// unless the service specific host is also set.
type AI struct {
	Host                 string  `yaml:"host,omitempty"`
	EmbeddingHost        string  `yaml:"embedding_host,omitempty"`
	ReasoningHost        string  `yaml:"reasoning_host,omitempty"`
	EmbeddingModel       string  `yaml:"embedding_model"`
	ReasoningModel       string  `yaml:"reasoning_model"`
	APIKey               string  `yaml:"api_key,omitempty"`
	ReasoningTemperature float64 `yaml:"reasoning_temperature"`
	MaxReasoningTokens   int     `yaml:"max_reasoning_tokens"`
	OutreachTemperature  float64 `yaml:"outreach_temperature"`
	MaxOutreachTokens    int     `yaml:"max_outreach_tokens"`
	IncludeOutreach      bool    `yaml:"include_outreach"`
	MaxInputChars        int     `yaml:"max_input_chars"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	var cfg Config
	cfg.Server.Listen = ":8080"
	cfg.Server.ShutdownTimeout = 20 * time.Second

	d := ai.DefaultConfig()
	cfg.AI = AI{
		Host:                 d.EmbeddingHost,
		EmbeddingModel:       d.EmbeddingModel,
		ReasoningModel:       d.ReasoningModel,
		ReasoningTemperature: d.ReasoningTemperature,
		MaxReasoningTokens:   d.MaxReasoningTokens,
		OutreachTemperature:  d.OutreachTemperature,
		MaxOutreachTokens:    d.MaxOutreachTokens,
		IncludeOutreach:      d.IncludeOutreach,
		MaxInputChars:        d.MaxInputChars,
	}

	cfg.Corpus.Path = "data/signals.json"
	cfg.Corpus.BatchSize = 64
	cfg.Corpus.EmbedConcurrency = 2

	cfg.Match = match.DefaultConfig()
	cfg.Log.Level = "info"
	return cfg
}

// Load reads path over the defaults. Unknown keys are an error; an empty
// file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ProviderConfig converts the AI section to an ai.Config.
func (c Config) ProviderConfig() *ai.Config {
	embeddingHost, reasoningHost := c.AI.EmbeddingHost, c.AI.ReasoningHost
	if embeddingHost == "" {
		embeddingHost = c.AI.Host
	}
	if reasoningHost == "" {
		reasoningHost = c.AI.Host
	}

	return ai.NewConfig(
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithReasoningHost(reasoningHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithReasoningModel(c.AI.ReasoningModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithReasoningTemperature(c.AI.ReasoningTemperature),
		ai.WithMaxReasoningTokens(c.AI.MaxReasoningTokens),
		ai.WithOutreachTemperature(c.AI.OutreachTemperature),
		ai.WithMaxOutreachTokens(c.AI.MaxOutreachTokens),
		ai.WithIncludeOutreach(c.AI.IncludeOutreach),
		ai.WithMaxInputChars(c.AI.MaxInputChars),
	)
}
