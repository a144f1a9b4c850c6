package openai

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/dealflow/core"
)

const reasoningPromptTemplate = `You are an expert at matching GovTech startups to government procurement opportunities.

STARTUP:
%s

GOVERNMENT SIGNAL:
%s

Match Score: %s

Task: Write exactly 2 sentences explaining why this startup matches this opportunity.

Requirements:
- Sentence 1: State the specific startup capability that addresses the government need
- Sentence 2: Mention the budget, timeline, or a stakeholder to show you understand the context
- Be concrete and specific
- No fluff or generic statements
- Maximum 50 words total`

const reasoningWithOutreachPromptTemplate = reasoningPromptTemplate + `

Additionally write a short outreach message (at most 80 words) from the startup to %s that
references the opportunity by name and asks for a 30-minute introductory call.

Output ONLY valid JSON with exactly these keys and no preamble, explanation or code fences:
{"reasoning": "<the 2 sentences>", "outreach": "<the outreach message>"}`

const outreachPromptTemplate = `Write a professional outreach email from a startup to a government contact.

FROM (Startup):
%s

TO (Government Contact):
%s

REGARDING (Opportunity):
- Title: %s
- Description: %s
- Budget: %s
- Timeline: %s
- Match Score: %s

TASK: Write a concise 3-paragraph email:

Paragraph 1 (Introduction):
- Reference the specific government initiative
- Explain why you're reaching out
- Mention how you learned about this (council minutes, strategic plan, etc.)

Paragraph 2 (Value Proposition):
- Highlight 2-3 specific capabilities that address their needs
- Use concrete metrics if available
- Show you understand their requirements

Paragraph 3 (Call to Action):
- Request a 30-minute introductory call
- Suggest next steps
- Provide availability

REQUIREMENTS:
- Professional but not stiff
- Specific, not generic
- Under 200 words
- No marketing fluff`

// buildReasoningPrompt creates the prompt asking for a two-sentence match explanation.
func buildReasoningPrompt(query string, signal core.Signal, score float64, withOutreach bool) string {
	if withOutreach {
		return fmt.Sprintf(reasoningWithOutreachPromptTemplate,
			query, describeSignal(signal), formatScore(score), signal.PrimaryStakeholder())
	}
	return fmt.Sprintf(reasoningPromptTemplate, query, describeSignal(signal), formatScore(score))
}

// buildOutreachPrompt creates the prompt for a full outreach email.
func buildOutreachPrompt(query string, signal core.Signal, score float64) string {
	return fmt.Sprintf(outreachPromptTemplate,
		query,
		signal.PrimaryStakeholder(),
		signal.Title,
		signal.Description,
		formatBudget(signal.Budget),
		orUnknown(signal.Timeline),
		formatScore(score))
}

// outreachSubject is the subject line used for every outreach draft.
func outreachSubject(signal core.Signal) string {
	title := strings.TrimSpace(signal.Title)
	if title == "" {
		title = "Opportunity"
	}
	return "Re: " + title + " - Partnership Opportunity"
}

func describeSignal(signal core.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Category: %s\n", signal.Category)
	fmt.Fprintf(&b, "- Title: %s\n", signal.Title)
	fmt.Fprintf(&b, "- Description: %s\n", signal.Description)
	fmt.Fprintf(&b, "- Budget: %s\n", formatBudget(signal.Budget))
	fmt.Fprintf(&b, "- Timeline: %s\n", orUnknown(signal.Timeline))
	if location := formatLocation(signal); location != "" {
		fmt.Fprintf(&b, "- Location: %s\n", location)
	}
	if len(signal.Stakeholders) > 0 {
		fmt.Fprintf(&b, "- Stakeholders: %s\n", strings.Join(signal.Stakeholders, ", "))
	}
	if len(signal.Keywords) > 0 {
		fmt.Fprintf(&b, "- Key Requirements: %s\n", strings.Join(signal.Keywords, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatLocation(signal core.Signal) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{signal.City, signal.State, signal.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// formatBudget renders a budget as whole dollars with thousands separators.
func formatBudget(budget *float64) string {
	if budget == nil || math.IsInf(*budget, 0) || math.IsNaN(*budget) {
		return "not disclosed"
	}
	return "$" + humanize.Commaf(math.Round(*budget))
}

// formatScore renders a similarity score as a whole percentage.
func formatScore(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return s
}
