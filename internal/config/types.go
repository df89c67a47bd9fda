package config

import "time"

// ProviderType identifies a completion provider.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderOllama     ProviderType = "ollama"
)

// IneligiblePolicy controls what happens to messages that do not start with
// the trigger phrase.
type IneligiblePolicy string

const (
	// PolicyIgnore drops ineligible messages without replying.
	PolicyIgnore IneligiblePolicy = "ignore"
	// PolicyInstruct replies with the instruction text.
	PolicyInstruct IneligiblePolicy = "instruct"
)

// Config is the top-level relay configuration, corresponding to genie-relay.yml.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Messaging  MessagingConfig  `yaml:"messaging" koanf:"messaging"`
	Completion CompletionConfig `yaml:"completion" koanf:"completion"`
	Relay      RelayConfig      `yaml:"relay" koanf:"relay"`
	Log        LogConfig        `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int      `yaml:"port" koanf:"port"`
	CORSOrigins []string `yaml:"cors_origins" koanf:"cors_origins"`
}

// MessagingConfig holds the messaging platform send API settings.
type MessagingConfig struct {
	APIURL             string        `yaml:"api_url" koanf:"api_url"`
	AccessToken        string        `yaml:"access_token,omitempty" koanf:"access_token"`
	PhoneNumberID      string        `yaml:"phone_number_id,omitempty" koanf:"phone_number_id"`
	Timeout            time.Duration `yaml:"timeout" koanf:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" koanf:"insecure_skip_verify"`
}

// CompletionConfig holds the completion service settings.
type CompletionConfig struct {
	Provider    ProviderType  `yaml:"provider" koanf:"provider"`
	Model       string        `yaml:"model" koanf:"model"`
	APIKey      string        `yaml:"api_key,omitempty" koanf:"api_key"`
	BaseURL     string        `yaml:"base_url,omitempty" koanf:"base_url"`
	MaxTokens   int           `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature float64       `yaml:"temperature" koanf:"temperature"`
	Timeout     time.Duration `yaml:"timeout" koanf:"timeout"`
}

// RelayConfig holds the reply policy.
type RelayConfig struct {
	TriggerPhrase    string           `yaml:"trigger_phrase" koanf:"trigger_phrase"`
	IneligiblePolicy IneligiblePolicy `yaml:"ineligible_policy" koanf:"ineligible_policy"`
	InstructionText  string           `yaml:"instruction_text" koanf:"instruction_text"`
	FallbackText     string           `yaml:"fallback_text" koanf:"fallback_text"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}
