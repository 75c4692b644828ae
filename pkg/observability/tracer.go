// Copyright 2026 The Agentrun Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observability

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Tracer is the façade every instrumented call site gets through
// GetTracer: a thin wrapper around an otel trace.Tracer plus the
// optional in-memory DebugExporter and the capture-payloads toggle
// that CapturePayloads reports. Nothing outside this package constructs
// one directly — Manager builds it from a TracingConfig and installs
// it as the process-wide default via SetGlobalTracer.
type Tracer struct {
	tracer          trace.Tracer
	provider        *sdktrace.TracerProvider
	debugExporter   *DebugExporter
	capturePayloads bool
}

type tracerOptions struct {
	debugExporter   bool
	capturePayloads bool
}

// TracerOption configures NewTracer beyond what TracingConfig says.
type TracerOption func(*tracerOptions)

// WithDebugExporter overrides TracingConfig.IsDebugExporterEnabled.
func WithDebugExporter(enabled bool) TracerOption {
	return func(o *tracerOptions) { o.debugExporter = enabled }
}

// WithCapturePayloads overrides TracingConfig.CapturePayloads.
func WithCapturePayloads(enabled bool) TracerOption {
	return func(o *tracerOptions) { o.capturePayloads = enabled }
}

// NewTracer builds a Tracer from cfg. A disabled cfg still returns a
// usable Tracer backed by otel's noop TracerProvider, so call sites
// never need a nil check — Start always returns a valid (possibly
// inert) span.
func NewTracer(ctx context.Context, cfg *TracingConfig, opts ...TracerOption) (*Tracer, error) {
	options := tracerOptions{
		debugExporter:   cfg.IsDebugExporterEnabled(),
		capturePayloads: cfg.CapturePayloads,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if !cfg.Enabled {
		return &Tracer{tracer: tracenoop.NewTracerProvider().Tracer(cfg.ServiceName)}, nil
	}

	exporter, err := newSpanExporter(ctx, *cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: build resource: %w", err)
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SamplingRate)),
		sdktrace.WithResource(res),
	}

	var debugExp *DebugExporter
	if options.debugExporter {
		debugExp = NewDebugExporter()
		providerOpts = append(providerOpts, sdktrace.WithBatcher(debugExp))
	}

	tp := sdktrace.NewTracerProvider(providerOpts...)
	otel.SetTracerProvider(tp)

	return &Tracer{
		tracer:          tp.Tracer(cfg.ServiceName),
		provider:        tp,
		debugExporter:   debugExp,
		capturePayloads: options.capturePayloads,
	}, nil
}

// newSpanExporter dispatches on cfg.Exporter: "stdout" writes
// human-readable spans to stderr for local debugging, anything else
// (including the empty default) sends OTLP over gRPC to cfg.Endpoint.
// Validate already rejects "jaeger"/"zipkin" configs that this
// function has no exporter for.
func newSpanExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	if cfg.Exporter == "stdout" {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("observability: create stdout exporter: %w", err)
		}
		return exporter, nil
	}

	grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.IsInsecure() {
		grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		grpcOpts = append(grpcOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	if cfg.Timeout > 0 {
		grpcOpts = append(grpcOpts, otlptracegrpc.WithTimeout(cfg.Timeout))
	}

	exporter, err := otlptracegrpc.New(ctx, grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("observability: create OTLP exporter: %w", err)
	}
	return exporter, nil
}

// Start opens a span named name under ctx and returns it with the
// derived context.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// DebugExporter returns the in-memory span store, or nil if disabled.
func (t *Tracer) DebugExporter() *DebugExporter { return t.debugExporter }

// CapturePayloads reports whether request/response payload capture is
// enabled (TracingConfig.CapturePayloads or WithCapturePayloads).
func (t *Tracer) CapturePayloads() bool { return t.capturePayloads }

// Shutdown flushes and stops the underlying TracerProvider. A no-op
// when Tracer was built from a disabled TracingConfig.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// GetTracer resolves a named otel trace.Tracer against the process-wide
// TracerProvider, so call sites can say observability.GetTracer("agentrun.loop")
// without threading a *Tracer through every function signature.
// SetGlobalTracer installs the real provider once at startup; before that,
// or when tracing is disabled, this resolves against otel's noop default.
func GetTracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// SetGlobalTracer installs t's TracerProvider as the process default so
// subsequent GetTracer calls resolve against it. Passing a Tracer built
// from a disabled TracingConfig leaves the otel default (also a noop)
// in place.
func SetGlobalTracer(t *Tracer) {
	if t == nil || t.provider == nil {
		return
	}
	otel.SetTracerProvider(t.provider)
}
