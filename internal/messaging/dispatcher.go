// Package messaging delivers text replies through the BestCRM WhatsApp
// Business send API.
package messaging

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxResponseBody caps how much of the platform's reply is read and logged.
const maxResponseBody = 64 << 10

// Config configures a Dispatcher.
type Config struct {
	APIURL             string
	AccessToken        string
	PhoneNumberID      string
	Timeout            time.Duration
	InsecureSkipVerify bool
	Logger             *slog.Logger
}

// Delivery is the platform's acknowledgement of a send. It is informational.
type Delivery struct {
	ReferenceID string `json:"reference_id"`
	StatusCode  int    `json:"status_code"`
	Body        string `json:"body"`
}

// Dispatcher sends text messages to recipients on the messaging platform.
type Dispatcher struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// sendPayload is the body of a send API call.
type sendPayload struct {
	To        string `json:"to"`
	PhoneNoID string `json:"phoneNoId"`
	Type      string `json:"type"`
	Text      string `json:"text"`
}

// NewDispatcher creates a Dispatcher. The HTTP client applies cfg.Timeout to
// every send.
func NewDispatcher(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.InsecureSkipVerify {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed gateways
		client.Transport = transport
	}

	return &Dispatcher{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "messaging"),
	}
}

// Send delivers text to the recipient. Transport errors and non-2xx
// responses are returned as dispatch errors; nothing is retried.
func (d *Dispatcher) Send(ctx context.Context, to, text string) (*Delivery, error) {
	if to == "" {
		return nil, dispatchError(nil, "recipient is empty", 0, nil)
	}
	if text == "" {
		return nil, dispatchError(nil, "message text is empty", 0, map[string]any{"to": to})
	}

	payload, err := json.Marshal(sendPayload{
		To:        to,
		PhoneNoID: d.cfg.PhoneNumberID,
		Type:      "text",
		Text:      text,
	})
	if err != nil {
		return nil, dispatchError(err, "encoding send payload", 0, nil)
	}

	refID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, dispatchError(err, "creating send request", 0, nil)
	}
	req.Header.Set("Authorization", "Bearer "+d.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", refID)

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Error("send request failed", "to", to, "reference_id", refID, "err", err)
		return nil, dispatchError(err, "sending message", 0, map[string]any{"to": to, "reference_id": refID})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		d.logger.Warn("reading send response failed", "to", to, "reference_id", refID, "err", err)
	}

	delivery := &Delivery{
		ReferenceID: refID,
		StatusCode:  resp.StatusCode,
		Body:        string(body),
	}
	d.logger.Info("send response", "to", to, "reference_id", refID, "status", resp.StatusCode, "body", delivery.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return delivery, dispatchError(nil,
			fmt.Sprintf("messaging API returned status %d", resp.StatusCode),
			resp.StatusCode,
			map[string]any{"to": to, "reference_id": refID},
		)
	}
	return delivery, nil
}
