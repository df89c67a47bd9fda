package bots

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ziadkadry99/genie-relay/internal/llm"
	"github.com/ziadkadry99/genie-relay/internal/metrics"
)

// CompletionConfig configures a CompletionClient.
type CompletionConfig struct {
	Provider     llm.Provider
	Model        string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	FallbackText string
	Logger       *slog.Logger
	Metrics      *metrics.Relay
}

// CompletionClient turns a prompt into reply text. It never fails: any
// provider error, timeout or empty answer yields the fallback text.
type CompletionClient struct {
	provider    llm.Provider
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	fallback    string
	logger      *slog.Logger
	metrics     *metrics.Relay
}

// NewCompletionClient creates a CompletionClient.
func NewCompletionClient(cfg CompletionConfig) *CompletionClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CompletionClient{
		provider:    cfg.Provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		fallback:    cfg.FallbackText,
		logger:      logger.With("component", "completion"),
		metrics:     cfg.Metrics,
	}
}

// Complete sends prompt as the only user message and returns the reply.
func (c *CompletionClient) Complete(ctx context.Context, prompt string) string {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := llm.UserPrompt(prompt)
	req.Model = c.model
	req.MaxTokens = c.maxTokens
	req.Temperature = c.temperature

	start := time.Now()
	resp, err := c.provider.Complete(ctx, req)
	if c.metrics != nil {
		c.metrics.CompletionLatency.Observe(time.Since(start).Seconds())
	}

	switch {
	case err != nil:
		err = completionFailed(err, c.provider.Name())
	case resp == nil || strings.TrimSpace(resp.Content) == "":
		err = completionFailed(nil, c.provider.Name())
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.CompletionFailures.Inc()
		}
		c.logger.Error("completion failed, using fallback", "provider", c.provider.Name(), "err", err)
		return c.fallback
	}

	c.logger.Debug("completion done",
		"provider", c.provider.Name(),
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"finish_reason", resp.FinishReason,
		"est_cost_usd", llm.EstimateCost(c.model, resp.InputTokens, resp.OutputTokens),
		"duration", time.Since(start),
	)
	return strings.TrimSpace(resp.Content)
}
