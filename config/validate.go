package config

import (
	"errors"
	"strings"
)

// Validate reports every problem found in cfg at once.
func Validate(cfg Config) error {
	var errs []string

	if strings.TrimSpace(cfg.Server.Listen) == "" {
		errs = append(errs, "server.listen is required")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be > 0")
	}
	if strings.TrimSpace(cfg.Corpus.Path) == "" {
		errs = append(errs, "corpus.path is required")
	}
	if cfg.Corpus.BatchSize < 1 {
		errs = append(errs, "corpus.batch_size must be >= 1")
	}
	if cfg.Corpus.EmbedConcurrency < 1 {
		errs = append(errs, "corpus.embed_concurrency must be >= 1")
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "log.level must be one of debug, info, warn, error")
	}

	if err := cfg.ProviderConfig().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := cfg.Match.Validate(); err != nil {
		errs = append(errs, strings.Split(err.Error(), "\n")...)
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}
