package llm

import (
	"context"
)

// GenerationConfig carries the fixed sampling parameters forwarded upstream.
type GenerationConfig struct {
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// LLMProvider defines the contract for the upstream generative model.
type LLMProvider interface {
	// Generate sends a single assembled prompt and returns the reply text.
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}
