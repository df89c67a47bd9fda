package llm

import "context"

// Provider defines the interface for text-completion services.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider, used in logs.
	Name() string
}
