// Package telemetry provides an optional OpenTelemetry tracer for the
// Client's connect/request/notify calls, constructed as a single value
// the Client is built with via client.WithTracer — never a
// package-level global, since a library embedder may run many Clients
// with different tracer configurations in one process.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config configures an OTLP/gRPC trace exporter for a single Client.
type Config struct {
	Enabled     bool
	Endpoint    string // e.g. "localhost:4317"
	Insecure    bool
	SampleRate  float64
	ServiceName string
}

// DefaultConfig returns a disabled configuration; embedders opt in
// explicitly via client.WithTracer(telemetry.New(...)).
func DefaultConfig() Config {
	return Config{ServiceName: "nvim-rpc-client", Endpoint: "localhost:4317", Insecure: true, SampleRate: 1.0}
}

// Tracer wraps a trace.Tracer plus its shutdown hook. A nil *Tracer is
// valid and every method degrades to a no-op.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// New constructs a Tracer from cfg. When cfg.Enabled is false, New
// returns a Tracer backed by the OpenTelemetry no-op implementation —
// cheap to hold unconditionally on client.Client.
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	if !cfg.Enabled {
		return &Tracer{tracer: noop.NewTracerProvider().Tracer(cfg.ServiceName)}, nil
	}

	var opts []otlptracegrpc.Option
	opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("nvim-rpc telemetry: create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return nil, fmt.Errorf("nvim-rpc telemetry: build resource: %w", err)
	}

	sampler := sdktrace.TraceIDRatioBased(cfg.SampleRate)
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRate <= 0.0:
		sampler = sdktrace.NeverSample()
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	return &Tracer{tracer: provider.Tracer(cfg.ServiceName), provider: provider}, nil
}

// Shutdown flushes and closes the exporter. A no-op Tracer (disabled,
// or nil) returns nil immediately.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return t.provider.Shutdown(shutdownCtx)
}

// StartSpan begins a span named name, returning the derived context
// and span. Callers must End() the span. A nil Tracer starts a no-op
// span via the package-level noop provider.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := t.tracerOrNoop()
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (t *Tracer) tracerOrNoop() trace.Tracer {
	if t == nil || t.tracer == nil {
		return noop.NewTracerProvider().Tracer("nvim-rpc-client")
	}
	return t.tracer
}

// RecordError records err on the span in ctx and marks it errored.
// A nil error is a no-op.
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceID returns the active span's trace ID, or "" if none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanID returns the active span's span ID, or "" if none.
func SpanID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.HasSpanID() {
		return sc.SpanID().String()
	}
	return ""
}
