package common

import (
	"context"
	"fmt"
	"strings"
)

// Prompt is one request to a text generator.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// TextGenerator turns a prompt into a block of text.
type TextGenerator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
	Close() error
}

// NewTextGenerator builds the generator selected by cfg.LLMProvider.
func NewTextGenerator(ctx context.Context, cfg *PipelineConfig) (TextGenerator, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "", "gemini":
		if err := RequireKey(EnvGeminiKey, cfg.GeminiKey); err != nil {
			return nil, err
		}
		return NewGeminiClient(ctx, cfg.GeminiKey, cfg.GeminiModel)
	case "openai":
		if err := RequireKey(EnvOpenAIKey, cfg.OpenAIKey); err != nil {
			return nil, err
		}
		return NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBase), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
