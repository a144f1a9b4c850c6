package match

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/poiesic/dealflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftOutreach(t *testing.T) {
	ctx := context.Background()

	t.Run("uses stored signal", func(t *testing.T) {
		f := newFixture(t, map[int64]float64{1: 0.9})
		m := f.matcher(t, DefaultConfig())

		var got core.Signal
		f.reasoner.DraftOutreachFunc = func(ctx context.Context, q string, s core.Signal, score float64) (core.OutreachDraft, error) {
			got = s
			return core.OutreachDraft{Subject: "Re: " + s.Title, To: s.PrimaryStakeholder(), Body: "Hello"}, nil
		}

		draft, err := m.DraftOutreach(ctx, query, core.Signal{ID: 1}, 0.9)
		require.NoError(t, err)
		assert.Equal(t, "Signal 1", got.Title)
		assert.Equal(t, "Official 1", draft.To)
		assert.Equal(t, 1, f.reasoner.OutreachCallCount())
	})

	t.Run("unknown signal uses supplied fields", func(t *testing.T) {
		f := newFixture(t, map[int64]float64{1: 0.9})
		m := f.matcher(t, DefaultConfig())

		draft, err := m.DraftOutreach(ctx, query, core.Signal{ID: 77, Title: "Flood Sensors"}, 0.7)
		require.NoError(t, err)
		assert.Equal(t, "City Official", draft.To)
		assert.Contains(t, draft.Subject, "Flood Sensors")
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture(t, map[int64]float64{1: 0.9})
		m := f.matcher(t, DefaultConfig())

		_, err := m.DraftOutreach(ctx, " ", core.Signal{ID: 1}, 0.9)
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = m.DraftOutreach(ctx, query, core.Signal{ID: 99}, 0.9)
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = m.DraftOutreach(ctx, query, core.Signal{ID: 1}, math.NaN())
		assert.ErrorIs(t, err, ErrInvalidInput)

		assert.Zero(t, f.reasoner.OutreachCallCount())
	})

	t.Run("provider failure", func(t *testing.T) {
		f := newFixture(t, map[int64]float64{1: 0.9})
		f.reasoner.DraftOutreachFunc = func(ctx context.Context, q string, s core.Signal, score float64) (core.OutreachDraft, error) {
			return core.OutreachDraft{}, errors.New("connection refused")
		}
		m := f.matcher(t, DefaultConfig())

		_, err := m.DraftOutreach(ctx, query, core.Signal{ID: 1}, 0.9)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
		assert.NotErrorIs(t, err, ErrTimeout)
	})

	t.Run("empty body", func(t *testing.T) {
		f := newFixture(t, map[int64]float64{1: 0.9})
		f.reasoner.DraftOutreachFunc = func(ctx context.Context, q string, s core.Signal, score float64) (core.OutreachDraft, error) {
			return core.OutreachDraft{Subject: "x"}, nil
		}
		m := f.matcher(t, DefaultConfig())

		_, err := m.DraftOutreach(ctx, query, core.Signal{ID: 1}, 0.9)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		f := newFixture(t, map[int64]float64{1: 0.9})
		f.reasoner.DraftOutreachFunc = func(ctx context.Context, q string, s core.Signal, score float64) (core.OutreachDraft, error) {
			<-ctx.Done()
			return core.OutreachDraft{}, ctx.Err()
		}
		config := DefaultConfig()
		config.ReasoningTimeout = 50 * time.Millisecond
		m := f.matcher(t, config)

		_, err := m.DraftOutreach(ctx, query, core.Signal{ID: 1}, 0.9)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})
}
