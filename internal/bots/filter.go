package bots

import (
	"strings"
	"unicode/utf8"

	"github.com/ziadkadry99/genie-relay/internal/config"
)

// Action is what the relay should do with a message.
type Action int

const (
	// ActionIgnore sends nothing.
	ActionIgnore Action = iota
	// ActionInstruct sends the instruction text.
	ActionInstruct
	// ActionComplete forwards Prompt to the completion service.
	ActionComplete
)

// Decision is the result of evaluating a message against the trigger phrase.
type Decision struct {
	Action Action
	Prompt string // set for ActionComplete
	Reply  string // set for ActionInstruct
}

// CommandFilter decides whether a message asks for a reply. The policy for
// messages without the trigger phrase is fixed at construction.
type CommandFilter struct {
	trigger     string
	policy      config.IneligiblePolicy
	instruction string
}

// NewCommandFilter builds a filter from the relay settings.
func NewCommandFilter(cfg config.RelayConfig) *CommandFilter {
	return &CommandFilter{
		trigger:     cfg.TriggerPhrase,
		policy:      cfg.IneligiblePolicy,
		instruction: cfg.InstructionText,
	}
}

// Evaluate matches the trigger phrase case-insensitively at the start of
// text. On a match the rest of the text, trimmed and with its original
// casing, becomes the prompt. A message with nothing after the trigger is
// handled like one without it.
func (f *CommandFilter) Evaluate(text string) Decision {
	if rest, ok := cutPrefixFold(text, f.trigger); ok {
		if prompt := strings.TrimSpace(rest); prompt != "" {
			return Decision{Action: ActionComplete, Prompt: prompt}
		}
	}
	if f.policy == config.PolicyInstruct {
		return Decision{Action: ActionInstruct, Reply: f.instruction}
	}
	return Decision{Action: ActionIgnore}
}

// cutPrefixFold is strings.CutPrefix with Unicode case folding.
func cutPrefixFold(s, prefix string) (string, bool) {
	for prefix != "" {
		if s == "" {
			return "", false
		}
		pr, pn := utf8.DecodeRuneInString(prefix)
		sr, sn := utf8.DecodeRuneInString(s)
		if pr != sr && !strings.EqualFold(string(pr), string(sr)) {
			return "", false
		}
		prefix = prefix[pn:]
		s = s[sn:]
	}
	return s, true
}
