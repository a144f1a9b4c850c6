package match

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/poiesic/dealflow/core"
)

// DraftOutreach writes an outreach email from the described startup to the
// signal's primary stakeholder. When signal.ID names a corpus signal, the
// stored record is used in place of the supplied fields.
func (m *Matcher) DraftOutreach(ctx context.Context, description string, signal core.Signal, score float64) (*core.OutreachDraft, error) {
	description, err := m.checkDescription(description)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil, fmt.Errorf("%w: match score must be a finite number", ErrInvalidInput)
	}

	if signal.ID > 0 && m.store.Loaded() {
		if entry, ok := m.store.Get(signal.ID); ok {
			signal = entry.Signal
		}
	}
	if strings.TrimSpace(signal.Title) == "" {
		return nil, fmt.Errorf("%w: signal title is required", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.ReasoningTimeout)
	defer cancel()

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, m.outreachError(signal.ID, err)
	}

	draft, err := m.reasoner.DraftOutreach(ctx, description, signal, score)
	if err != nil {
		return nil, m.outreachError(signal.ID, err)
	}
	if strings.TrimSpace(draft.Body) == "" {
		return nil, m.outreachError(signal.ID, errors.New("empty outreach body"))
	}

	return &draft, nil
}

func (m *Matcher) outreachError(signalID int64, err error) error {
	m.logger.Warn("outreach draft failed", "signal", signalID, "err", err)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: outreach draft: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: outreach draft: %w", ErrProviderUnavailable, err)
}
