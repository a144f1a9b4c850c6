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

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/dealflow/ai"
	"github.com/poiesic/dealflow/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxParseAttempts bounds how often a malformed JSON explanation is regenerated.
const maxParseAttempts = 3

// Reasoner implements ai.Reasoner using OpenAI-compatible chat APIs.
type Reasoner struct {
	client llms.Model
	config ai.Config
	logger *slog.Logger
}

// explanation is the JSON shape requested when outreach drafts are enabled.
type explanation struct {
	Reasoning string `json:"reasoning"`
	Outreach  string `json:"outreach"`
}

// newReasoner is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newReasoner(config *ai.Config) (*Reasoner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ReasoningHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ReasoningModel),
	)
	if err != nil {
		return nil, err
	}

	return &Reasoner{
		client: client,
		config: *config,
		logger: slog.Default().With("component", "openai-reasoner"),
	}, nil
}

// NewReasoner creates a new reasoner using the provided configuration.
//
// Returns ai.Reasoner interface to enforce abstraction.
func NewReasoner(config *ai.Config) (ai.Reasoner, error) {
	return newReasoner(config)
}

// Explain produces a two-sentence justification for a match. When the config
// enables outreach, a short outreach message is generated in the same call.
func (r *Reasoner) Explain(ctx context.Context, query string, signal core.Signal, score float64) (ai.Explanation, error) {
	query = truncateRunes(strings.TrimSpace(query), r.config.MaxInputChars)
	if query == "" {
		return ai.Explanation{}, ai.ErrEmptyInput
	}

	prompt := buildReasoningPrompt(query, signal, score, r.config.IncludeOutreach)
	opts := []llms.CallOption{
		llms.WithTemperature(r.config.ReasoningTemperature),
		llms.WithMaxTokens(r.config.MaxReasoningTokens),
	}

	if !r.config.IncludeOutreach {
		text, err := r.generate(ctx, prompt, opts...)
		if err != nil {
			return ai.Explanation{}, err
		}
		return ai.Explanation{Reasoning: text}, nil
	}

	// The outreach message needs room beyond the reasoning budget
	opts = append(opts,
		llms.WithMaxTokens(r.config.MaxReasoningTokens+r.config.MaxOutreachTokens),
		llms.WithJSONMode())

	// Try up to maxParseAttempts times in case of malformed JSON
	var result explanation
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		text, err := r.generate(ctx, prompt, opts...)
		if err != nil {
			return ai.Explanation{}, err
		}

		result = explanation{}
		text = repairJSON(stripCodeFences(text))
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			lastErr = err
			r.logger.Warn("error parsing explanation response",
				"attempt", attempt+1,
				"signal", signal.ID,
				"err", err)
			continue
		}
		if strings.TrimSpace(result.Reasoning) == "" {
			lastErr = fmt.Errorf("reasoning field is empty")
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		r.logger.Error("failed to parse explanation response after retries", "signal", signal.ID, "err", lastErr)
		return ai.Explanation{}, fmt.Errorf("%w: %w", ai.ErrMalformedResponse, lastErr)
	}

	return ai.Explanation{
		Reasoning: strings.TrimSpace(result.Reasoning),
		Outreach:  strings.TrimSpace(result.Outreach),
	}, nil
}

// DraftOutreach writes a three-paragraph outreach email addressed to the
// signal's primary stakeholder.
func (r *Reasoner) DraftOutreach(ctx context.Context, query string, signal core.Signal, score float64) (core.OutreachDraft, error) {
	query = truncateRunes(strings.TrimSpace(query), r.config.MaxInputChars)
	if query == "" {
		return core.OutreachDraft{}, ai.ErrEmptyInput
	}

	body, err := r.generate(ctx, buildOutreachPrompt(query, signal, score),
		llms.WithTemperature(r.config.OutreachTemperature),
		llms.WithMaxTokens(r.config.MaxOutreachTokens))
	if err != nil {
		return core.OutreachDraft{}, err
	}

	return core.OutreachDraft{
		Subject:     outreachSubject(signal),
		To:          signal.PrimaryStakeholder(),
		Body:        body,
		PreviewNote: ai.OutreachPreviewNote,
	}, nil
}

// generate sends a single-turn prompt and returns the trimmed text of the first choice.
func (r *Reasoner) generate(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := r.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		r.logger.Error("failed to generate content", "err", err)
		return "", fmt.Errorf("%w: %w", ai.ErrProviderUnavailable, err)
	}

	if len(response.Choices) < 1 {
		r.logger.Debug("no choices returned from model")
		return "", fmt.Errorf("%w: no choices returned", ai.ErrMalformedResponse)
	}

	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ai.ErrMalformedResponse)
	}
	return text, nil
}
