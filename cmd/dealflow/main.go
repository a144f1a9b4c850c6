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

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/dealflow/ai"
	"github.com/poiesic/dealflow/ai/openai"
	"github.com/poiesic/dealflow/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

// newProvider builds the AI provider used by every command.
var newProvider = func(cfg *ai.Config) (ai.AIProvider, error) {
	return openai.NewProvider(cfg)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "dealflow",
		Usage: "Match startups with government procurement signals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"DEALFLOW_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				EnvVars: []string{"DEALFLOW_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "OpenAI-compatible host for embeddings and reasoning",
				EnvVars: []string{"DEALFLOW_AI_HOST"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the AI host",
				EnvVars: []string{"DEALFLOW_API_KEY", "OPENAI_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"DEALFLOW_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "reasoning-model",
				Usage:   "Model used to explain matches and draft outreach",
				EnvVars: []string{"DEALFLOW_REASONING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "corpus",
				Usage:   "Path to the signal corpus (.json, .yaml)",
				EnvVars: []string{"DEALFLOW_CORPUS"},
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Usage:   "Directory for cached signal embeddings",
				EnvVars: []string{"DEALFLOW_CACHE_DIR"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the matching API over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "Address to listen on",
						EnvVars: []string{"DEALFLOW_LISTEN"},
					},
				},
			},
			{
				Name:      "match",
				Usage:     "Match a startup description against the corpus",
				ArgsUsage: "<startup description>",
				Action:    matchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of matches (0 for no limit)",
						Value: -1,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Minimum relevance score",
						Value: -1,
					},
					&cli.BoolFlag{
						Name:  "outreach",
						Usage: "Draft a short outreach message for each match",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the response as JSON",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Log each matching stage",
					},
				},
			},
			{
				Name:   "embed-corpus",
				Usage:  "Embed the corpus into the embedding cache",
				Action: embedCorpusCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of signals to embed per request",
					},
					&cli.BoolFlag{
						Name:  "prune",
						Usage: "Remove cached embeddings of signals no longer in the corpus",
					},
				},
			},
			{
				Name:   "validate-corpus",
				Usage:  "Check a corpus file without embedding it",
				Action: validateCorpusCommand,
			},
			{
				Name:   "init-config",
				Usage:  "Write the effective configuration to a YAML file",
				Action: initConfigCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Path of the file to write",
						Required: true,
					},
				},
			},
		},
	}
}

// setupLogger loads the configuration and installs the default logger.
func setupLogger(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg

	// Get log level and normalize to lowercase
	levelStr := strings.ToLower(cfg.Log.Level)

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// resolveConfig reads --config, if given, then applies global flags and
// environment variables on top.
func resolveConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("host") {
		cfg.AI.Host = c.String("host")
		cfg.AI.EmbeddingHost = ""
		cfg.AI.ReasoningHost = ""
	}
	if c.IsSet("api-key") {
		cfg.AI.APIKey = c.String("api-key")
	}
	if c.IsSet("embedding-model") {
		cfg.AI.EmbeddingModel = c.String("embedding-model")
	}
	if c.IsSet("reasoning-model") {
		cfg.AI.ReasoningModel = c.String("reasoning-model")
	}
	if c.IsSet("corpus") {
		cfg.Corpus.Path = c.String("corpus")
	}
	if c.IsSet("cache-dir") {
		cfg.Corpus.CacheDir = c.String("cache-dir")
	}
	return cfg, nil
}

// configFrom returns the configuration resolved by setupLogger.
func configFrom(c *cli.Context) config.Config {
	if cfg, ok := c.App.Metadata[configKey].(config.Config); ok {
		return cfg
	}
	return config.Default()
}
