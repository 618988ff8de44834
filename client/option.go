package client

import (
	"github.com/nvim-rpc/go-client/client/internal/metrics"
	"github.com/nvim-rpc/go-client/client/internal/telemetry"
)

// Option configures optional, non-default Client behavior. The zero
// value of every option's backing field is "disabled", so embedders
// that pass no options get a Client with no metrics and no tracing.
type Option func(*Client)

// WithMetrics attaches the given Prometheus instrumentation (see
// metrics.New). Pass nil to explicitly disable metrics (the default).
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer attaches an OpenTelemetry tracer to the Client's
// connect/request/notify calls. Pass nil to explicitly disable
// tracing (the default).
func WithTracer(t *telemetry.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithEventHandler registers the callback invoked for every inbound
// Notification. It may also be set later via SetEventHandler.
func WithEventHandler(fn EventHandler) Option {
	return func(c *Client) {
		c.eventHandler = fn
	}
}
