package models

import (
	"context"
	"fmt"
)

// ProviderOptions carries the credentials and endpoints the provider factory
// needs. They are resolved once at startup by the config layer; nothing here
// reads the environment.
type ProviderOptions struct {
	APIKey  string
	BaseURL string
}

// NewLLMProvider returns a concrete Agent for the named provider.
func NewLLMProvider(ctx context.Context, provider, model string, opts ProviderOptions) (Agent, error) {
	switch provider {
	case "openai":
		return NewOpenAILLM(opts.APIKey, model), nil
	case "openrouter":
		return NewOpenRouterLLM(opts.APIKey, opts.BaseURL, model), nil
	case "google", "gemini":
		return NewGeminiLLM(ctx, opts.APIKey, model)
	case "ollama":
		return NewOllamaLLM(opts.BaseURL, model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
