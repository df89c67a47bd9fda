package bots

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/genie-relay/internal/messaging"
	"github.com/ziadkadry99/genie-relay/internal/metrics"
)

// MessageHandler processes incoming messages and produces responses.
// A nil message means no reply.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg IncomingMessage) (*OutgoingMessage, error)
}

// Sender delivers a reply to a recipient on the messaging platform.
type Sender interface {
	Send(ctx context.Context, to, text string) (*messaging.Delivery, error)
}

// GatewayConfig configures a Gateway.
type GatewayConfig struct {
	Handler MessageHandler
	Sender  Sender
	Logger  *slog.Logger
	Metrics *metrics.Relay
}

// Gateway runs one inbound event through parse, handle and send. It never
// returns an error: every failure is logged and mapped to an Outcome.
type Gateway struct {
	handler MessageHandler
	sender  Sender
	logger  *slog.Logger
	metrics *metrics.Relay
}

// NewGateway creates a new Gateway.
func NewGateway(cfg GatewayConfig) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		handler: cfg.Handler,
		sender:  cfg.Sender,
		logger:  logger.With("component", "relay"),
		metrics: cfg.Metrics,
	}
}

// Relay processes a raw webhook body. At most one reply is sent.
func (g *Gateway) Relay(ctx context.Context, body []byte) (outcome Outcome) {
	logger := g.logger.With("relay_id", uuid.NewString())
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("relay panicked", "panic", fmt.Sprint(rec))
			outcome = OutcomeFailed
		}
		if g.metrics != nil {
			g.metrics.Outcome(string(outcome)).Inc()
		}
		logger.Info("relay finished", "outcome", outcome, "duration", time.Since(start))
	}()

	logger.Debug("event received", "body", string(body))

	msg, err := ParseEvent(body)
	if err != nil {
		logger.Warn("dropping malformed event", "err", err)
		return OutcomeMalformed
	}
	logger = logger.With("sender", msg.SenderID)

	reply, err := g.handler.HandleMessage(ctx, msg)
	if err != nil {
		logger.Error("handling message failed", "err", err)
		return OutcomeFailed
	}
	if reply == nil || reply.Text == "" {
		logger.Debug("message not eligible for a reply")
		return OutcomeIgnored
	}

	sendStart := time.Now()
	delivery, err := g.sender.Send(ctx, reply.RecipientID, reply.Text)
	if g.metrics != nil {
		g.metrics.DispatchLatency.Observe(time.Since(sendStart).Seconds())
	}
	if err != nil {
		if g.metrics != nil {
			g.metrics.DispatchFailures.Inc()
		}
		logger.Error("reply dispatch failed", "kind", reply.Kind, "err", err)
		return OutcomeDispatchFailed
	}
	if delivery != nil {
		logger = logger.With("reference_id", delivery.ReferenceID)
	}
	logger.Debug("reply dispatched", "kind", reply.Kind)

	if reply.Kind == ReplyInstruction {
		return OutcomeInstructed
	}
	return OutcomeReplied
}
