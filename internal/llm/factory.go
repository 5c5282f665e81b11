package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/council/internal/config"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewClient constructs a ChatClient for one provider.
func NewClient(ctx context.Context, cfg config.ProviderConfig) (ChatClient, error) {
	provider := strings.ToLower(cfg.Name)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL), nil

	case "openrouter":
		// OpenRouter speaks the OpenAI chat completion protocol.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openRouterBaseURL
		}
		return NewOpenAIClient(cfg.APIKey, baseURL), nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Name)
	}
}

// BuildRegistry resolves every council model and the chairman to a provider
// client. Clients are shared across models of the same provider.
func BuildRegistry(ctx context.Context, cfg *config.Config) (*Registry, error) {
	registry := NewRegistry()
	clients := make(map[string]ChatClient)

	needed := append([]string{}, cfg.Council.Models...)
	needed = append(needed, cfg.Council.Chairman)

	for _, model := range needed {
		pc, ok := cfg.ProviderFor(model)
		if !ok {
			return nil, fmt.Errorf("no provider configured for model %q", model)
		}
		client, ok := clients[pc.Name]
		if !ok {
			var err error
			client, err = NewClient(ctx, pc)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize %s client: %w", pc.Name, err)
			}
			clients[pc.Name] = client
		}
		registry.Register(model, client)
	}

	return registry, nil
}
