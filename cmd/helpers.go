package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ziadkadry99/genie-relay/internal/bots"
	"github.com/ziadkadry99/genie-relay/internal/config"
	"github.com/ziadkadry99/genie-relay/internal/llm"
	"github.com/ziadkadry99/genie-relay/internal/messaging"
	"github.com/ziadkadry99/genie-relay/internal/metrics"
)

// loadConfig reads the dotenv file and then the layered configuration.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `genie-relay init` to create a config file", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the log settings. --verbose
// forces debug level.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// relay bundles the wired components of one relay instance.
type relay struct {
	collector  *metrics.Collector
	metrics    *metrics.Relay
	completion *bots.CompletionClient
	dispatcher *messaging.Dispatcher
	gateway    *bots.Gateway
	webhook    *bots.WebhookHandler
}

// buildRelay wires provider, completion, filter, dispatcher and gateway
// from cfg.
func buildRelay(cfg *config.Config, logger *slog.Logger) (*relay, error) {
	provider, err := llm.NewProvider(cfg.Completion)
	if err != nil {
		return nil, fmt.Errorf("creating completion provider: %w", err)
	}

	collector := metrics.NewCollector()
	m := metrics.NewRelay(collector)

	completion := bots.NewCompletionClient(bots.CompletionConfig{
		Provider:     provider,
		Model:        cfg.Completion.ResolvedModel(),
		MaxTokens:    cfg.Completion.MaxTokens,
		Temperature:  cfg.Completion.Temperature,
		Timeout:      cfg.Completion.Timeout,
		FallbackText: cfg.Relay.FallbackText,
		Logger:       logger,
		Metrics:      m,
	})

	dispatcher := messaging.NewDispatcher(messaging.Config{
		APIURL:             cfg.Messaging.APIURL,
		AccessToken:        cfg.Messaging.AccessToken,
		PhoneNumberID:      cfg.Messaging.PhoneNumberID,
		Timeout:            cfg.Messaging.Timeout,
		InsecureSkipVerify: cfg.Messaging.InsecureSkipVerify,
		Logger:             logger,
	})

	gateway := bots.NewGateway(bots.GatewayConfig{
		Handler: bots.NewProcessor(bots.NewCommandFilter(cfg.Relay), completion),
		Sender:  dispatcher,
		Logger:  logger,
		Metrics: m,
	})

	return &relay{
		collector:  collector,
		metrics:    m,
		completion: completion,
		dispatcher: dispatcher,
		gateway:    gateway,
		webhook:    bots.NewWebhookHandler(gateway, logger, m),
	}, nil
}

// stderrLogger is the logger for one-shot commands.
func stderrLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stderr, cfg.Log)
}
