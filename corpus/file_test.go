package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/dealflow/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonList = `[
  {"id": 2, "lat": 40.71, "lng": -74.0, "city": "New York", "state": "NY",
   "category": "Public Safety", "title": "Gunshot Detection", "description": "Acoustic sensors",
   "budget": 1200000, "timeline": "Q1 2026", "stakeholders": ["Chief Ortiz"],
   "source_url": "https://example.gov/minutes", "keywords": ["acoustic", "sensors"]},
  {"id": 1, "lat": 30.27, "lng": -97.74, "city": "Austin", "state": "TX",
   "category": "Transportation", "title": "Traffic Signals", "description": "Adaptive timing",
   "budget": null, "timeline": "", "stakeholders": []}
]`

const yamlDoc = `signals:
  - id: 5
    lat: 47.6
    lng: -122.3
    city: Seattle
    state: WA
    category: Climate
    title: Heat Mapping
    description: Urban heat island sensors
    budget: 50000
    stakeholders:
      - Sustainability Office
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFile(t *testing.T) {
	t.Run("json list", func(t *testing.T) {
		signals, err := ReadFile(writeFile(t, "signals.json", jsonList))
		require.NoError(t, err)
		require.Len(t, signals, 2)

		s := signals[0]
		assert.Equal(t, int64(2), s.ID)
		assert.Equal(t, "New York", s.City)
		require.NotNil(t, s.Budget)
		assert.Equal(t, 1200000.0, *s.Budget)
		assert.Equal(t, []string{"Chief Ortiz"}, s.Stakeholders)
		assert.Equal(t, "https://example.gov/minutes", s.SourceURL)
		assert.Equal(t, []string{"acoustic", "sensors"}, s.Keywords)

		assert.Nil(t, signals[1].Budget)
	})

	t.Run("json object", func(t *testing.T) {
		signals, err := ReadFile(writeFile(t, "signals.json", `{"signals": `+jsonList+`}`))
		require.NoError(t, err)
		assert.Len(t, signals, 2)
	})

	t.Run("yaml document", func(t *testing.T) {
		signals, err := ReadFile(writeFile(t, "signals.yaml", yamlDoc))
		require.NoError(t, err)
		require.Len(t, signals, 1)
		assert.Equal(t, "Heat Mapping", signals[0].Title)
		require.NotNil(t, signals[0].Budget)
		assert.Equal(t, 50000.0, *signals[0].Budget)
	})

	t.Run("yaml list", func(t *testing.T) {
		signals, err := ReadFile(writeFile(t, "signals.yml", "- id: 1\n  title: A\n  category: C\n  description: D\n"))
		require.NoError(t, err)
		require.Len(t, signals, 1)
		assert.Equal(t, "A", signals[0].Title)
	})

	t.Run("empty yaml", func(t *testing.T) {
		signals, err := ReadFile(writeFile(t, "signals.yaml", ""))
		require.NoError(t, err)
		assert.Empty(t, signals)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ReadFile(writeFile(t, "signals.csv", "id,title"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ReadFile(writeFile(t, "signals.json", `[{"id": 1,`))
		assert.ErrorIs(t, err, ErrInvalidCorpus)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, ErrInvalidCorpus)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestStoreLoadFile(t *testing.T) {
	store := newTestStore(t, mock.NewMockEmbedder())
	require.NoError(t, store.LoadFile(context.Background(), writeFile(t, "signals.json", jsonList)))

	entries := store.All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].Signal.ID)
	assert.Equal(t, int64(2), entries[1].Signal.ID)
	assert.Equal(t, mock.DefaultDimension, store.Dimension())
}
