package mock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/poiesic/dealflow/ai"
	"github.com/poiesic/dealflow/core"
)

// MockReasoner is a test double for ai.Reasoner.
// It allows custom behavior injection via function fields.
type MockReasoner struct {
	// ExplainFunc is called by Explain if set.
	// If nil, returns a templated sentence naming the signal and score.
	ExplainFunc func(ctx context.Context, query string, signal core.Signal, score float64) (ai.Explanation, error)

	// DraftOutreachFunc is called by DraftOutreach if set.
	DraftOutreachFunc func(ctx context.Context, query string, signal core.Signal, score float64) (core.OutreachDraft, error)

	explainCalls  atomic.Int64
	outreachCalls atomic.Int64
}

// NewMockReasoner creates a mock reasoner with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockReasoner().
func NewMockReasoner() *MockReasoner {
	return &MockReasoner{}
}

// Explain returns a deterministic explanation unless ExplainFunc is set.
func (m *MockReasoner) Explain(ctx context.Context, query string, signal core.Signal, score float64) (ai.Explanation, error) {
	m.explainCalls.Add(1)

	if m.ExplainFunc != nil {
		return m.ExplainFunc(ctx, query, signal, score)
	}

	if err := ctx.Err(); err != nil {
		return ai.Explanation{}, err
	}
	return ai.Explanation{
		Reasoning: fmt.Sprintf("%s fits %q at %.0f%%.", query, signal.Title, score*100),
	}, nil
}

// DraftOutreach returns a deterministic draft unless DraftOutreachFunc is set.
func (m *MockReasoner) DraftOutreach(ctx context.Context, query string, signal core.Signal, score float64) (core.OutreachDraft, error) {
	m.outreachCalls.Add(1)

	if m.DraftOutreachFunc != nil {
		return m.DraftOutreachFunc(ctx, query, signal, score)
	}

	if err := ctx.Err(); err != nil {
		return core.OutreachDraft{}, err
	}
	return core.OutreachDraft{
		Subject:     "Re: " + signal.Title + " - Partnership Opportunity",
		To:          signal.PrimaryStakeholder(),
		Body:        fmt.Sprintf("Hello, we would like to discuss %s.", signal.Title),
		PreviewNote: ai.OutreachPreviewNote,
	}, nil
}

// CallCount returns the number of Explain calls.
func (m *MockReasoner) CallCount() int {
	return int(m.explainCalls.Load())
}

// OutreachCallCount returns the number of DraftOutreach calls.
func (m *MockReasoner) OutreachCallCount() int {
	return int(m.outreachCalls.Load())
}

// Reset clears the call counts and custom functions.
func (m *MockReasoner) Reset() {
	m.explainCalls.Store(0)
	m.outreachCalls.Store(0)
	m.ExplainFunc = nil
	m.DraftOutreachFunc = nil
}
