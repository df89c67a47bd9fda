package metrics

import "fmt"

var latencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// Relay holds the metrics recorded by the webhook relay pipeline.
type Relay struct {
	collector          *Collector
	WebhooksReceived   *Counter
	CompletionFailures *Counter
	DispatchFailures   *Counter
	CompletionLatency  *Histogram
	DispatchLatency    *Histogram
}

// NewRelay registers the relay metrics on c.
func NewRelay(c *Collector) *Relay {
	return &Relay{
		collector:          c,
		WebhooksReceived:   c.Counter("genie_relay_webhooks_total", "Inbound webhook calls received", ""),
		CompletionFailures: c.Counter("genie_relay_completion_failures_total", "Completion calls answered with the fallback text", ""),
		DispatchFailures:   c.Counter("genie_relay_dispatch_failures_total", "Replies the messaging API did not accept", ""),
		CompletionLatency:  c.Histogram("genie_relay_completion_seconds", "Completion call latency in seconds", latencyBuckets),
		DispatchLatency:    c.Histogram("genie_relay_dispatch_seconds", "Messaging send latency in seconds", latencyBuckets),
	}
}

// Outcome returns the counter for relays that ended with the given outcome.
func (r *Relay) Outcome(outcome string) *Counter {
	return r.collector.Counter("genie_relay_outcomes_total", "Relays by final outcome", fmt.Sprintf("outcome=%q", outcome))
}
