package config

import "time"

// DefaultMessagingAPIURL is the BestCRM WhatsApp Business send endpoint.
const DefaultMessagingAPIURL = "https://app.bestcrmapp.in/api/v2/whatsapp-business/messages"

const (
	DefaultTriggerPhrase   = "cyber genie,"
	DefaultFallbackText    = "Sorry, I couldn't process your request right now."
	DefaultInstructionText = `Hi! To ask me something, start your message with "Cyber Genie," followed by your question.`
)

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderOpenRouter: "openai/gpt-4o-mini",
	ProviderOllama:     "llama3",
}

// defaultBaseURLs maps providers to their API base when base_url is empty.
var defaultBaseURLs = map[ProviderType]string{
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
	ProviderOllama:     "http://localhost:11434",
}

// DefaultConfig returns a Config with sensible defaults. Credentials are
// always empty and must come from the environment or the config file.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Messaging: MessagingConfig{
			APIURL:  DefaultMessagingAPIURL,
			Timeout: 10 * time.Second,
		},
		Completion: CompletionConfig{
			Provider:  ProviderOpenAI,
			MaxTokens: 1024,
			Timeout:   30 * time.Second,
		},
		Relay: RelayConfig{
			TriggerPhrase:    DefaultTriggerPhrase,
			IneligiblePolicy: PolicyIgnore,
			InstructionText:  DefaultInstructionText,
			FallbackText:     DefaultFallbackText,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ResolvedModel returns the configured model, or the provider default when
// none is set.
func (c CompletionConfig) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// ResolvedBaseURL returns the configured API base, or the provider default.
// An empty result means the client library default applies.
func (c CompletionConfig) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURLs[c.Provider]
}
