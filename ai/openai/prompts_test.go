package openai

import (
	"math"
	"strings"
	"testing"

	"github.com/poiesic/dealflow/core"
	"github.com/stretchr/testify/assert"
)

func budget(v float64) *float64 { return &v }

func testSignal() core.Signal {
	return core.Signal{
		ID:           7,
		City:         "Austin",
		State:        "TX",
		Country:      "USA",
		Category:     "Transportation",
		Title:        "Traffic Signal Optimization",
		Description:  "Upgrade adaptive signal timing on the downtown corridor.",
		Budget:       budget(2500000),
		Timeline:     "Q3 2025",
		Stakeholders: []string{"Jane Doe, Mobility Director", "Council"},
		Keywords:     []string{"traffic", "analytics"},
	}
}

func TestFormatBudget(t *testing.T) {
	tests := []struct {
		name   string
		budget *float64
		want   string
	}{
		{"nil", nil, "not disclosed"},
		{"zero", budget(0), "$0"},
		{"thousands", budget(2500000), "$2,500,000"},
		{"rounds", budget(999.6), "$1,000"},
		{"beyond int64", budget(2e19), "$20,000,000,000,000,000,000"},
		{"infinite", budget(math.Inf(1)), "not disclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatBudget(tt.budget))
		})
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "87%", formatScore(0.87))
	assert.Equal(t, "100%", formatScore(1))
	assert.Equal(t, "0%", formatScore(0))
}

func TestBuildReasoningPrompt(t *testing.T) {
	signal := testSignal()

	t.Run("plain", func(t *testing.T) {
		prompt := buildReasoningPrompt("AI traffic analytics", signal, 0.91, false)
		assert.Contains(t, prompt, "AI traffic analytics")
		assert.Contains(t, prompt, "- Category: Transportation")
		assert.Contains(t, prompt, "- Budget: $2,500,000")
		assert.Contains(t, prompt, "- Key Requirements: traffic, analytics")
		assert.Contains(t, prompt, "- Location: Austin, TX, USA")
		assert.Contains(t, prompt, "Match Score: 91%")
		assert.Contains(t, prompt, "exactly 2 sentences")
		assert.NotContains(t, prompt, "JSON")
	})

	t.Run("with outreach", func(t *testing.T) {
		prompt := buildReasoningPrompt("AI traffic analytics", signal, 0.91, true)
		assert.Contains(t, prompt, "JSON")
		assert.Contains(t, prompt, "Jane Doe, Mobility Director")
		assert.False(t, strings.Contains(prompt, "%!"), "prompt has formatting errors: %s", prompt)
	})

	t.Run("missing optional fields", func(t *testing.T) {
		sparse := core.Signal{ID: 1, Category: "Safety", Title: "Cameras", Description: "More cameras"}
		prompt := buildReasoningPrompt("video", sparse, 0.5, false)
		assert.Contains(t, prompt, "- Budget: not disclosed")
		assert.Contains(t, prompt, "- Timeline: not specified")
		assert.NotContains(t, prompt, "Location")
		assert.NotContains(t, prompt, "Stakeholders")
	})
}

func TestBuildOutreachPrompt(t *testing.T) {
	prompt := buildOutreachPrompt("We build traffic analytics", testSignal(), 0.87)
	assert.Contains(t, prompt, "We build traffic analytics")
	assert.Contains(t, prompt, "TO (Government Contact):\nJane Doe, Mobility Director")
	assert.Contains(t, prompt, "- Title: Traffic Signal Optimization")
	assert.Contains(t, prompt, "- Match Score: 87%")
	assert.Contains(t, prompt, "3-paragraph")
	assert.False(t, strings.Contains(prompt, "%!"))
}

func TestOutreachSubject(t *testing.T) {
	assert.Equal(t, "Re: Traffic Signal Optimization - Partnership Opportunity", outreachSubject(testSignal()))
	assert.Equal(t, "Re: Opportunity - Partnership Opportunity", outreachSubject(core.Signal{}))
}
