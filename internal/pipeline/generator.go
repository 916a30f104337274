package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campgen/campgen/internal/campaign"
	"github.com/campgen/campgen/internal/catalog"
	"github.com/campgen/campgen/internal/llm"
)

// Default model parameters: warm enough for varied phrasing, cool enough for
// repeatable structure.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 3000
)

// Generator runs one prompt through the full pipeline: compile instructions,
// call the model, reconcile the response. It never fails; every error path
// resolves through the synthetic generator.
type Generator struct {
	Client      llm.Client
	Model       string
	Temperature float64
	MaxTokens   int64
}

// Result is what one pipeline invocation produces.
type Result struct {
	Campaign    campaign.Campaign `json:"campaign"`
	Explanation string            `json:"explanation"`
	Fallback    bool              `json:"fallback"`
}

// Generate produces a campaign for the prompt against the caller's connected
// entities. The returned campaign only ever references entities from the
// supplied sets.
func (g *Generator) Generate(ctx context.Context, prompt string, sources []catalog.DataSource, channels []catalog.Channel) Result {
	system := (&PromptBuilder{
		UserPrompt:  prompt,
		DataSources: sources,
		Channels:    channels,
	}).Build()

	temperature := g.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	maxTokens := g.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	raw, err := g.Client.Complete(ctx, llm.Request{
		System:      system,
		User:        prompt,
		Model:       g.Model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		JSONOnly:    true,
	})
	if err != nil {
		slog.Warn("generation call failed, using synthetic campaign", "error", err)
		return Result{
			Campaign:    campaign.Synthesize(prompt, sources, channels),
			Explanation: fallbackExplanation,
			Fallback:    true,
		}
	}

	c, authored := Reconcile(raw, prompt, sources, channels)
	if !authored {
		slog.Warn("model response not reconcilable, using synthetic campaign", "bytes", len(raw))
		return Result{Campaign: c, Explanation: fallbackExplanation, Fallback: true}
	}
	return Result{Campaign: c, Explanation: modelExplanation(prompt)}
}

const fallbackExplanation = "AI service unavailable, using fallback campaign generation."

func modelExplanation(prompt string) string {
	return fmt.Sprintf("AI-generated campaign based on your request: %q. This campaign is optimized for your connected data sources and channels.", prompt)
}
