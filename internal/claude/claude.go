package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultModel = "claude-sonnet-4-5"

// Critique is the structured review of a set of evaluated schedules.
type Critique struct {
	Bottlenecks []int    `json:"bottlenecks"` // task ids that dominate the makespan
	Suggestions []string `json:"suggestions"`
	Summary     string   `json:"summary"`
}

// Client wraps the Anthropic SDK for Claude API calls.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
}

// NewClient creates a Claude client. apiKey defaults to ANTHROPIC_API_KEY env.
// model defaults to Claude Sonnet.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	m := anthropic.Model(defaultModel)
	if model != "" {
		m = anthropic.Model(model)
	}

	return &Client{inner: inner, model: m}, nil
}

const narratePrompt = `You are a scheduling expert reviewing candidate schedules for a task graph on identical processors.

You will receive:
1. A summary of the problem and each candidate's makespan, its ratio to the critical path lower bound and its communication delay.
2. The full evaluation results as JSON (start and end time of every task, processor assignment).

Produce a concise narrative covering:
- Why the best candidate wins.
- Where the weaker candidates lose time (idle processors, expensive cross-processor transfers, long chains on one processor).
- One or two concrete changes that would likely shorten the best schedule.

Keep it short: a paragraph per point at most. Refer to tasks as t<id> and processors as P<id>.
`

const critiquePrompt = `You are a scheduling expert. Given evaluated schedules of a task graph as JSON, identify the bottleneck tasks of the best schedule and suggest improvements.

Return your answer as JSON with this exact structure:
{
  "bottlenecks": [<task id>, ...],
  "suggestions": ["<short actionable suggestion>", ...],
  "summary": "<one paragraph assessment>"
}

Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.

Here are the results:
`

// buildNarrativeInput joins the terminal summary and the JSON results into
// the user message for Narrate.
func buildNarrativeInput(summary string, resultsJSON []byte) string {
	var b strings.Builder
	b.WriteString("## Evaluation Summary\n\n")
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n\n## Results\n\n```json\n")
	b.Write(resultsJSON)
	b.WriteString("\n```\n")
	return b.String()
}

// Narrate sends an evaluation summary and its JSON results to Claude and
// returns a human-readable comparison of the candidates.
func (c *Client) Narrate(ctx context.Context, summary string, resultsJSON []byte) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(4096),
		System: []anthropic.TextBlockParam{
			{Text: narratePrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildNarrativeInput(summary, resultsJSON))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	return strings.TrimSpace(responseText(resp)), nil
}

// Critique asks Claude for bottleneck tasks and improvement suggestions.
func (c *Client) Critique(ctx context.Context, resultsJSON []byte) (*Critique, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(4096),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(critiquePrompt + string(resultsJSON))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude API call: %w", err)
	}

	return parseCritique(responseText(resp))
}

func parseCritique(text string) (*Critique, error) {
	text = stripJSONFences(text)

	var result Critique
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parse claude response: %w\nraw: %s", err, text)
	}
	return &result, nil
}

func responseText(resp *anthropic.Message) string {
	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}

// stripJSONFences removes markdown code fences that Claude sometimes adds.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	// Remove ```json ... ``` or ``` ... ```
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
