package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/dealflow/ai"
	"github.com/poiesic/dealflow/ai/mock"
	"github.com/poiesic/dealflow/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const corpusJSON = `[
  {"id": 1, "lat": 30.27, "lng": -97.74, "city": "Austin", "state": "TX", "category": "Transportation",
   "title": "Traffic Signal Modernization", "description": "Adaptive signal timing for downtown corridors",
   "budget": 2500000, "timeline": "Q3 2025", "stakeholders": ["Jane Doe"]},
  {"id": 2, "lat": 47.61, "lng": -122.33, "city": "Seattle", "state": "WA", "category": "Water",
   "title": "Leak Detection Pilot", "description": "Acoustic sensors on aging water mains",
   "budget": null, "timeline": "2026", "stakeholders": []}
]`

func useMockProvider(t *testing.T) {
	t.Helper()
	orig := newProvider
	newProvider = func(cfg *ai.Config) (ai.AIProvider, error) {
		return mock.NewMockProvider(), nil
	}
	t.Cleanup(func() { newProvider = orig })
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"dealflow"}, args...))
	return out.String(), err
}

func TestSetupLogger(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "validate-corpus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestResolveConfig(t *testing.T) {
	path := writeTemp(t, "dealflow.yml", `
ai:
  host: http://file-host:11434
  embedding_model: from-file
corpus:
  path: from-file.json
match:
  top_k: 3
`)
	t.Setenv("DEALFLOW_CACHE_DIR", "/tmp/from-env")

	var got config.Config
	app := newApp()
	app.Commands = append(app.Commands, &cli.Command{
		Name: "capture",
		Action: func(c *cli.Context) error {
			got = configFrom(c)
			return nil
		},
	})
	err := app.Run([]string{"dealflow", "--config", path, "--embedding-model", "from-flag", "capture"})
	require.NoError(t, err)

	assert.Equal(t, "http://file-host:11434", got.AI.Host)
	assert.Equal(t, "from-flag", got.AI.EmbeddingModel)
	assert.Equal(t, "from-file.json", got.Corpus.Path)
	assert.Equal(t, "/tmp/from-env", got.Corpus.CacheDir)
	assert.Equal(t, 3, got.Match.TopK)
	assert.Equal(t, 0.5, got.Match.MinScore)
}

func TestValidateCorpusCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeTemp(t, "signals.json", corpusJSON)
		out, err := run(t, "validate-corpus", path)
		require.NoError(t, err)
		assert.Contains(t, out, "2 signals OK")
	})

	t.Run("invalid", func(t *testing.T) {
		path := writeTemp(t, "signals.json", `[
  {"id": 1, "lat": 95, "lng": 0, "city": "X", "state": "Y", "category": "C", "title": "T", "description": "D"},
  {"id": 2, "lat": 0, "lng": 0, "city": "X", "state": "Y", "category": "C", "title": "T", "description": "D"},
  {"id": 2, "lat": 0, "lng": 0, "city": "X", "state": "Y", "category": "C", "title": "T", "description": "D"}
]`)
		out, err := run(t, "--corpus", path, "validate-corpus")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 of 3 signals are invalid")
		assert.Contains(t, out, "signal #0")
		assert.Contains(t, out, "duplicate id 2")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "validate-corpus", filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestMatchCommand(t *testing.T) {
	useMockProvider(t)
	path := writeTemp(t, "signals.json", corpusJSON)

	t.Run("text output", func(t *testing.T) {
		out, err := run(t, "--corpus", path, "match", "--min-score", "0", "--verbose", "AI traffic analytics")
		require.NoError(t, err)
		assert.Contains(t, out, "Found 2 matches")
		assert.Contains(t, out, "Traffic Signal Modernization")
	})

	t.Run("json output", func(t *testing.T) {
		out, err := run(t, "--corpus", path, "match", "--min-score", "0", "--top-k", "1", "--json", "AI traffic analytics")
		require.NoError(t, err)
		assert.Contains(t, out, `"matches"`)
		assert.Contains(t, out, `"reasoning"`)
	})

	t.Run("missing description", func(t *testing.T) {
		_, err := run(t, "--corpus", path, "match")
		assert.Error(t, err)
	})
}

func TestEmbedCorpusCommand(t *testing.T) {
	useMockProvider(t)
	path := writeTemp(t, "signals.json", corpusJSON)

	t.Run("requires cache dir", func(t *testing.T) {
		_, err := run(t, "--corpus", path, "embed-corpus")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache-dir")
	})

	t.Run("embeds and prunes", func(t *testing.T) {
		cacheDir := filepath.Join(t.TempDir(), "cache")
		out, err := run(t, "--corpus", path, "--cache-dir", cacheDir, "embed-corpus", "--prune")
		require.NoError(t, err)
		assert.Contains(t, out, "Embedded 2 signals")
		assert.Contains(t, out, "Pruned 0 stale embeddings")
	})
}

func TestInitConfigCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "dealflow.yml")
	out, err := run(t, "--api-key", "sk-secret", "--reasoning-model", "llama3.2", "init-config", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	cfg, err := config.Load(output)
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", cfg.AI.ReasoningModel)
	assert.Empty(t, cfg.AI.APIKey)

	_, err = run(t, "init-config")
	assert.Error(t, err)
}
