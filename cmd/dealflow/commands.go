package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/dealflow"
	"github.com/poiesic/dealflow/config"
	"github.com/poiesic/dealflow/core"
	"github.com/poiesic/dealflow/corpus"
	"github.com/poiesic/dealflow/match"
	"github.com/poiesic/dealflow/server"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func openEngine(cfg config.Config, opts ...dealflow.EngineOption) (*dealflow.Engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	aiConfig := cfg.ProviderConfig()
	provider, err := newProvider(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	base := []dealflow.EngineOption{
		dealflow.WithAIConfig(aiConfig),
		dealflow.WithProvider(provider),
		dealflow.WithMatchConfig(cfg.Match),
		dealflow.WithCacheDir(cfg.Corpus.CacheDir),
		dealflow.WithCorpusOptions(
			corpus.WithLenient(cfg.Corpus.Lenient),
			corpus.WithBatchSize(cfg.Corpus.BatchSize),
			corpus.WithEmbedConcurrency(cfg.Corpus.EmbedConcurrency),
		),
	}
	return dealflow.NewEngine(append(base, opts...)...)
}

func serveCommand(c *cli.Context) error {
	cfg := configFrom(c)
	if c.IsSet("listen") {
		cfg.Server.Listen = c.String("listen")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	srv, err := server.New(engine, engine.Store(),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout))
	if err != nil {
		return err
	}

	// Requests arriving before the corpus is ready get 503 corpus_not_loaded.
	// A failed load stops the server.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Listen)
	})
	g.Go(func() error {
		if err := engine.LoadCorpus(gctx, cfg.Corpus.Path); err != nil {
			return fmt.Errorf("failed to load corpus %s: %w", cfg.Corpus.Path, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func matchCommand(c *cli.Context) error {
	description := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if description == "" {
		return fmt.Errorf("a startup description is required")
	}

	cfg := configFrom(c)
	if c.Int("top-k") >= 0 {
		cfg.Match.TopK = c.Int("top-k")
	}
	if c.Float64("min-score") >= 0 {
		cfg.Match.MinScore = c.Float64("min-score")
	}
	if c.Bool("outreach") {
		cfg.AI.IncludeOutreach = true
	}

	ctx := c.Context
	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.LoadCorpus(ctx, cfg.Corpus.Path); err != nil {
		return fmt.Errorf("failed to load corpus %s: %w", cfg.Corpus.Path, err)
	}

	var monitor match.MatchMonitor
	if c.Bool("verbose") {
		monitor = match.NewLogMonitor(slog.Default())
	}
	resp, err := engine.Matcher().MatchWithMonitor(ctx, description, monitor)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printMatches(out, resp)
	return nil
}

func printMatches(w io.Writer, resp *core.MatchResponse) {
	fmt.Fprintf(w, "Found %d matches\n", len(resp.Matches))
	for i, m := range resp.Matches {
		fmt.Fprintf(w, "%d: %s [%s] %s, %s (%d)[%0.3f]\n",
			i+1, m.Signal.Title, m.Signal.Category, m.Signal.City, m.Signal.State, m.Signal.ID, m.Score)
		fmt.Fprintf(w, "   %s\n", m.Reasoning)
		if m.Outreach != "" {
			fmt.Fprintf(w, "   Outreach: %s\n", m.Outreach)
		}
	}
}

func embedCorpusCommand(c *cli.Context) error {
	cfg := configFrom(c)
	if cfg.Corpus.CacheDir == "" {
		return fmt.Errorf("cache-dir is required to embed the corpus")
	}
	if c.IsSet("batch-size") {
		cfg.Corpus.BatchSize = c.Int("batch-size")
	}

	ctx := c.Context
	engine, err := openEngine(cfg, dealflow.WithCorpusOptions(corpus.WithProgress(c.App.ErrWriter)))
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.LoadCorpus(ctx, cfg.Corpus.Path); err != nil {
		return fmt.Errorf("failed to embed corpus %s: %w", cfg.Corpus.Path, err)
	}

	store := engine.Store()
	fmt.Fprintf(c.App.Writer, "Embedded %d signals (dimension %d) into %s\n",
		store.Len(), store.Dimension(), cfg.Corpus.CacheDir)

	if c.Bool("prune") {
		pruned, err := store.PruneCache(ctx)
		if err != nil {
			return fmt.Errorf("failed to prune cache: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "Pruned %d stale embeddings\n", pruned)
	}
	return nil
}

func validateCorpusCommand(c *cli.Context) error {
	cfg := configFrom(c)
	path := cfg.Corpus.Path
	if c.Args().Present() {
		path = c.Args().First()
	}

	signals, err := corpus.ReadFile(path)
	if err != nil {
		return err
	}

	problems := 0
	seen := make(map[int64]bool, len(signals))
	for i := range signals {
		s := &signals[i]
		if err := core.ValidateSignal(s); err != nil {
			fmt.Fprintf(c.App.Writer, "signal #%d: %v\n", i, err)
			problems++
			continue
		}
		if seen[s.ID] {
			fmt.Fprintf(c.App.Writer, "signal #%d: duplicate id %d\n", i, s.ID)
			problems++
			continue
		}
		seen[s.ID] = true
	}

	if problems > 0 {
		return fmt.Errorf("%s: %d of %d signals are invalid", path, problems, len(signals))
	}
	fmt.Fprintf(c.App.Writer, "%s: %d signals OK\n", path, len(signals))
	return nil
}

func initConfigCommand(c *cli.Context) error {
	path := c.String("output")
	if err := config.SaveAtomic(path, configFrom(c)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}
