package llm

import (
	"fmt"

	"github.com/ziadkadry99/genie-relay/internal/config"
)

// NewProvider creates the completion provider described by cfg.
// Supported provider types: "openai", "openrouter", "ollama".
func NewProvider(cfg config.CompletionConfig) (Provider, error) {
	model := cfg.ResolvedModel()

	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s is not set", config.APIKeyEnvVar(cfg.Provider))
		}
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.ResolvedBaseURL(),
			Model:     model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}), nil

	case config.ProviderOpenRouter:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s is not set", config.APIKeyEnvVar(cfg.Provider))
		}
		return NewOpenRouterProvider(OpenAIConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.ResolvedBaseURL(),
			Model:     model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}), nil

	case config.ProviderOllama:
		return NewOllamaProvider(cfg.ResolvedBaseURL(), model, cfg.MaxTokens, cfg.Timeout), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}
}
