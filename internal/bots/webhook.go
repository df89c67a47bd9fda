package bots

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ziadkadry99/genie-relay/internal/metrics"
)

// maxEventBytes caps the inbound webhook body.
const maxEventBytes = 1 << 20

// WebhookHandler receives messaging platform events. It always acknowledges
// with 200 {"status":"success"} so the platform never retries or disables
// the webhook because of a relay failure.
type WebhookHandler struct {
	gateway *Gateway
	logger  *slog.Logger
	metrics *metrics.Relay
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(gateway *Gateway, logger *slog.Logger, m *metrics.Relay) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{
		gateway: gateway,
		logger:  logger.With("component", "webhook"),
		metrics: m,
	}
}

// HandleWebhook handles POST /webhook.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	defer acknowledge(w)
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook handler panicked", "panic", fmt.Sprint(rec))
		}
	}()

	if h.metrics != nil {
		h.metrics.WebhooksReceived.Inc()
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	defer r.Body.Close()
	if err != nil {
		h.logger.Warn("failed to read webhook body", "err", err)
		if h.metrics != nil {
			h.metrics.Outcome(string(OutcomeMalformed)).Inc()
		}
		return
	}

	// The reply must still go out if the platform hangs up first. The
	// completion and dispatch timeouts bound the work.
	h.gateway.Relay(context.WithoutCancel(r.Context()), body)
}

func acknowledge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}
