package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it. Credentials are never prompted for; the wizard lists
// the environment variables that still need to be exported.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to genie-relay! Let's configure the relay.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select completion provider",
		Items: []string{"openai", "openrouter", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Completion.Provider = ProviderType(providerStr)

	// 2. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: cfg.Completion.ResolvedModel(),
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	if model != cfg.Completion.ResolvedModel() {
		cfg.Completion.Model = model
	}

	// 3. Trigger phrase.
	triggerPrompt := promptui.Prompt{
		Label:   "Trigger phrase (case-insensitive prefix)",
		Default: cfg.Relay.TriggerPhrase,
		Validate: func(s string) error {
			if s == "" {
				return fmt.Errorf("trigger phrase cannot be empty")
			}
			return nil
		},
	}
	trigger, err := triggerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("trigger phrase: %w", err)
	}
	cfg.Relay.TriggerPhrase = trigger

	// 4. What to do with messages that lack the trigger.
	policyPrompt := promptui.Select{
		Label: "Messages without the trigger phrase",
		Items: []string{
			"ignore: send nothing",
			"instruct: reply with usage instructions",
		},
	}
	policyIdx, _, err := policyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("policy selection: %w", err)
	}
	cfg.Relay.IneligiblePolicy = []IneligiblePolicy{PolicyIgnore, PolicyInstruct}[policyIdx]

	// 5. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("port must be between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("\nConfiguration saved to %s\n", path)

	var unset []string
	for _, name := range cfg.Missing() {
		if os.Getenv(name) == "" {
			unset = append(unset, name)
		}
	}
	if len(unset) > 0 {
		fmt.Println("\nBefore running `genie-relay serve`, set:")
		for _, name := range unset {
			fmt.Printf("  %s\n", name)
		}
	}
	return cfg, nil
}
