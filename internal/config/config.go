package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for structured environment overrides.
// A double underscore separates nesting levels:
// GENIE_RELAY__TRIGGER_PHRASE -> relay.trigger_phrase.
const EnvPrefix = "GENIE_"

// Deployment environment variables understood without the GENIE_ prefix.
const (
	EnvAccessToken   = "BESTCRM_ACCESS_TOKEN"
	EnvPhoneNumberID = "PHONE_NUMBER_ID"
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvPort          = "PORT"
)

// deploymentEnv maps the plain deployment variables onto config keys.
var deploymentEnv = map[string]string{
	EnvAccessToken:   "messaging.access_token",
	EnvPhoneNumberID: "messaging.phone_number_id",
	EnvOpenAIAPIKey:  "completion.api_key",
	EnvPort:          "server.port",
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("accessing env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("reading env file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the given YAML file, then overlays the
// deployment variables and finally GENIE_* overrides. The result is not
// validated; call Validate before serving.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return deploymentEnv[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading deployment env: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path. Credentials are
// stripped; they belong in the environment.
func (c *Config) Save(path string) error {
	out := *c
	out.Messaging.AccessToken = ""
	out.Messaging.PhoneNumberID = ""
	out.Completion.APIKey = ""

	data, err := yamlv3.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOpenAI:     true,
	ProviderOpenRouter: true,
	ProviderOllama:     true,
}

var validPolicies = map[IneligiblePolicy]bool{
	PolicyIgnore:   true,
	PolicyInstruct: true,
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validLogFormats = map[string]bool{"text": true, "json": true}

// Validate checks that the configuration can serve traffic. Every problem is
// reported at once so a deployment can be fixed in one pass.
func (c *Config) Validate() error {
	var problems []string
	for _, name := range c.Missing() {
		problems = append(problems, name+" is not set")
	}

	if !validProviders[c.Completion.Provider] {
		problems = append(problems, fmt.Sprintf("invalid completion.provider %q: must be one of openai, openrouter, ollama", c.Completion.Provider))
	}
	if c.Messaging.APIURL == "" {
		problems = append(problems, "messaging.api_url is required")
	}
	if c.Relay.TriggerPhrase == "" {
		problems = append(problems, "relay.trigger_phrase is required")
	}
	if !validPolicies[c.Relay.IneligiblePolicy] {
		problems = append(problems, fmt.Sprintf("invalid relay.ineligible_policy %q: must be ignore or instruct", c.Relay.IneligiblePolicy))
	}
	if c.Relay.IneligiblePolicy == PolicyInstruct && strings.TrimSpace(c.Relay.InstructionText) == "" {
		problems = append(problems, "relay.instruction_text is required when ineligible_policy is instruct")
	}
	if strings.TrimSpace(c.Relay.FallbackText) == "" {
		problems = append(problems, "relay.fallback_text is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Messaging.Timeout <= 0 {
		problems = append(problems, "messaging.timeout must be positive")
	}
	if c.Completion.Timeout <= 0 {
		problems = append(problems, "completion.timeout must be positive")
	}
	if c.Completion.MaxTokens < 0 {
		problems = append(problems, "completion.max_tokens must be non-negative")
	}
	if !validLogLevels[c.Log.Level] {
		problems = append(problems, fmt.Sprintf("invalid log.level %q", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		problems = append(problems, fmt.Sprintf("invalid log.format %q", c.Log.Format))
	}

	if len(problems) > 0 {
		return startupConfigError(problems)
	}
	return nil
}

// Missing returns the environment variable names of required credentials
// that are empty.
func (c *Config) Missing() []string {
	var missing []string
	if c.Messaging.AccessToken == "" {
		missing = append(missing, EnvAccessToken)
	}
	if c.Messaging.PhoneNumberID == "" {
		missing = append(missing, EnvPhoneNumberID)
	}
	if c.Completion.APIKey == "" && c.Completion.Provider != ProviderOllama {
		missing = append(missing, APIKeyEnvVar(c.Completion.Provider))
	}
	return missing
}

// APIKeyEnvVar returns the environment variable that supplies the API key of
// the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return EnvOpenAIAPIKey
	default:
		return EnvPrefix + "COMPLETION__API_KEY"
	}
}
