package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/coopco/postpilot/internal/config"
)

// TextClient is the thin generation surface the rest of the app uses:
// single-shot Generate and multi-turn Converse. The caller owns the
// conversation history and resends it on every Converse call; no
// server-side session state is assumed.
type TextClient struct {
	provider    Provider
	model       string
	maxTokens   int
	temperature float64
}

// NewTextClient builds a TextClient from config, choosing the provider
// by model keyword (claude -> anthropic, otherwise OpenAI-compatible)
// and wrapping it with the standard retry policy.
func NewTextClient(cfg *config.Config) (*TextClient, error) {
	model := cfg.Generate.Model

	var inner Provider
	switch {
	case strings.Contains(strings.ToLower(model), "claude"):
		if cfg.Providers.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured for model %q", model)
		}
		inner = NewAnthropicProvider(cfg.Providers.Anthropic.APIKey, model)
	default:
		if cfg.Providers.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai API key not configured for model %q", model)
		}
		inner = NewOpenAICompatProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.BaseURL, model)
	}

	return &TextClient{
		provider:    NewRetryProvider(inner),
		model:       model,
		maxTokens:   cfg.Generate.MaxTokens,
		temperature: cfg.Generate.Temperature,
	}, nil
}

// NewTextClientWith wraps an existing provider; used by tests.
func NewTextClientWith(p Provider, model string) *TextClient {
	return &TextClient{provider: p, model: model}
}

// Generate runs a single-shot prompt and returns the model's text.
func (c *TextClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.provider.Chat(ctx, ChatRequest{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// Converse sends the full turn history and returns the next reply.
func (c *TextClient) Converse(ctx context.Context, history []Message) (string, error) {
	resp, err := c.provider.Chat(ctx, ChatRequest{
		Model:       c.model,
		Messages:    history,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
