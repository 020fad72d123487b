package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/caloriediary/internal/apperr"
	"github.com/nikhilbhutani/caloriediary/internal/llm"
)

const op = "analyze"

type Options struct {
	Model     string
	MaxTokens int
	// Validate rejects results whose totals disagree with the item sums.
	Validate bool
}

type Analyzer struct {
	provider llm.Provider
	opts     Options
}

func NewAnalyzer(p llm.Provider, opts Options) *Analyzer {
	if opts.Model == "" {
		opts.Model = "gpt-4o"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	return &Analyzer{provider: p, opts: opts}
}

// Analyze asks the model for a nutrition breakdown of transcript. The reply
// must be a bare JSON object; no repair is attempted.
func (a *Analyzer) Analyze(ctx context.Context, transcript string) (*Result, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, apperr.Request(op, "transcript is empty", nil)
	}

	content, err := BuildPrompt(transcript)
	if err != nil {
		return nil, fmt.Errorf("%s: build prompt: %w", op, err)
	}

	resp, err := a.provider.ChatCompletion(ctx, llm.ChatRequest{
		Model:       a.opts.Model,
		Messages:    []llm.Message{{Role: "user", Content: content}},
		MaxTokens:   a.opts.MaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slog.DebugContext(ctx, "nutrition analysis finished",
		"provider", resp.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)

	result, err := parseResult(resp.Content)
	if err != nil {
		return nil, err
	}

	if a.opts.Validate {
		if err := result.Validate(); err != nil {
			return nil, apperr.Parse(op, "model reply failed validation", err)
		}
	}
	return result, nil
}

func parseResult(content string) (*Result, error) {
	if !strings.HasPrefix(strings.TrimSpace(content), "{") {
		return nil, apperr.Parse(op, "model reply is not a JSON object", nil)
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, apperr.Parse(op, "model reply is not valid JSON", err)
	}
	if result.Foods == nil {
		result.Foods = []FoodItem{}
	}
	return &result, nil
}
