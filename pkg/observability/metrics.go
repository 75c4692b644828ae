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
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Recorder is the metrics surface every instrumented call site records
// through via GetGlobalMetrics: an agent turn, one LLM request, one
// tool execution, the resilience layer's circuit state, and the
// outbound HTTP round trip the request/response traveled over.
// NoopMetrics and *Metrics both satisfy it, so call sites never need a
// nil check.
type Recorder interface {
	RecordAgentTurn(ctx context.Context, duration time.Duration, totalTokens int, err error)
	RecordLLMRequest(ctx context.Context, model, provider string, duration time.Duration, inputTokens, outputTokens int, err error)
	RecordToolExecution(ctx context.Context, tool string, duration time.Duration, err error)
	RecordCircuitState(ctx context.Context, operation, state string)
	RecordProviderHTTP(ctx context.Context, method, host string, statusCode int, duration time.Duration, responseSize int64)
}

var (
	globalMetrics Recorder
	metricsMu     sync.RWMutex
)

// SetGlobalMetrics installs r as the target of every GetGlobalMetrics
// call, the same package-global wiring GetTracer uses for spans.
func SetGlobalMetrics(r Recorder) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = r
}

// GetGlobalMetrics returns the installed Recorder, or NoopMetrics if
// none has been installed yet (e.g. before Manager.NewManager runs, or
// in a test that never configures observability).
func GetGlobalMetrics() Recorder {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	if globalMetrics == nil {
		return NoopMetrics{}
	}
	return globalMetrics
}

// Metrics is the Recorder backed by OpenTelemetry metric instruments,
// read out through a Prometheus registry via the otel/exporters/prometheus
// bridge so Handler can serve them without a separate metrics pipeline.
type Metrics struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider

	turnDuration metric.Float64Histogram
	turnTotal    metric.Int64Counter
	turnErrors   metric.Int64Counter
	turnTokens   metric.Int64Counter

	llmDuration  metric.Float64Histogram
	llmTotal     metric.Int64Counter
	llmErrors    metric.Int64Counter
	llmTokensIn  metric.Int64Counter
	llmTokensOut metric.Int64Counter

	toolDuration metric.Float64Histogram
	toolTotal    metric.Int64Counter
	toolErrors   metric.Int64Counter

	circuitState metric.Int64Gauge

	httpDuration metric.Float64Histogram
	httpTotal    metric.Int64Counter
	httpRespSize metric.Int64Histogram
}

// NewMetrics builds a Metrics from cfg, or returns (nil, nil) when
// metrics are disabled — callers go through GetGlobalMetrics/NoopMetrics
// rather than nil-checking a *Metrics directly.
func NewMetrics(cfg *MetricsConfig) (*Metrics, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	cfg.SetDefaults()

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry), otelprom.WithNamespace(cfg.Namespace))
	if err != nil {
		return nil, fmt.Errorf("observability: create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(cfg.Namespace)

	m := &Metrics{registry: registry, provider: provider}

	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	m.turnDuration, err = meter.Float64Histogram("agent_turn_duration_seconds",
		metric.WithDescription("Agent turn duration in seconds"))
	note(err)
	m.turnTotal, err = meter.Int64Counter("agent_turn_total",
		metric.WithDescription("Total number of agent turns"))
	note(err)
	m.turnErrors, err = meter.Int64Counter("agent_turn_errors_total",
		metric.WithDescription("Total number of agent turns that ended in error"))
	note(err)
	m.turnTokens, err = meter.Int64Counter("agent_turn_tokens_total",
		metric.WithDescription("Total tokens (input+output) consumed across agent turns"))
	note(err)

	m.llmDuration, err = meter.Float64Histogram("llm_request_duration_seconds",
		metric.WithDescription("LLM request duration in seconds"))
	note(err)
	m.llmTotal, err = meter.Int64Counter("llm_request_total",
		metric.WithDescription("Total number of LLM requests"))
	note(err)
	m.llmErrors, err = meter.Int64Counter("llm_request_errors_total",
		metric.WithDescription("Total number of failed LLM requests"))
	note(err)
	m.llmTokensIn, err = meter.Int64Counter("llm_tokens_input_total",
		metric.WithDescription("Total input tokens sent to the model"))
	note(err)
	m.llmTokensOut, err = meter.Int64Counter("llm_tokens_output_total",
		metric.WithDescription("Total output tokens generated by the model"))
	note(err)

	m.toolDuration, err = meter.Float64Histogram("tool_execution_duration_seconds",
		metric.WithDescription("Tool execution duration in seconds"))
	note(err)
	m.toolTotal, err = meter.Int64Counter("tool_execution_total",
		metric.WithDescription("Total number of tool executions"))
	note(err)
	m.toolErrors, err = meter.Int64Counter("tool_execution_errors_total",
		metric.WithDescription("Total number of tool executions that errored"))
	note(err)

	m.circuitState, err = meter.Int64Gauge("resilience_circuit_state",
		metric.WithDescription("Circuit breaker state: 0=closed, 1=half_open, 2=open"))
	note(err)

	m.httpDuration, err = meter.Float64Histogram("provider_http_duration_seconds",
		metric.WithDescription("Outbound provider HTTP request duration in seconds"))
	note(err)
	m.httpTotal, err = meter.Int64Counter("provider_http_total",
		metric.WithDescription("Total number of outbound provider HTTP requests"))
	note(err)
	m.httpRespSize, err = meter.Int64Histogram("provider_http_response_size_bytes",
		metric.WithDescription("Outbound provider HTTP response size in bytes"))
	note(err)

	if firstErr != nil {
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("observability: create metric instruments: %w", firstErr)
	}

	return m, nil
}

// RecordAgentTurn records one full agentloop.Loop.Execute/ExecuteStream
// invocation.
func (m *Metrics) RecordAgentTurn(ctx context.Context, duration time.Duration, totalTokens int, err error) {
	if m == nil {
		return
	}
	m.turnDuration.Record(ctx, duration.Seconds())
	m.turnTotal.Add(ctx, 1)
	if totalTokens > 0 {
		m.turnTokens.Add(ctx, int64(totalTokens))
	}
	if err != nil {
		m.turnErrors.Add(ctx, 1)
	}
}

// RecordLLMRequest records one messageclient round trip, labeled by
// model and the auth.Mode string that served it.
func (m *Metrics) RecordLLMRequest(ctx context.Context, model, provider string, duration time.Duration, inputTokens, outputTokens int, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("provider", provider),
	)
	m.llmDuration.Record(ctx, duration.Seconds(), attrs)
	m.llmTotal.Add(ctx, 1, attrs)
	m.llmTokensIn.Add(ctx, int64(inputTokens), attrs)
	m.llmTokensOut.Add(ctx, int64(outputTokens), attrs)
	if err != nil {
		m.llmErrors.Add(ctx, 1, attrs)
	}
}

// RecordToolExecution records one tool.Registry.Execute call.
func (m *Metrics) RecordToolExecution(ctx context.Context, tool string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("tool", tool))
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
	m.toolTotal.Add(ctx, 1, attrs)
	if err != nil {
		m.toolErrors.Add(ctx, 1, attrs)
	}
}

// RecordCircuitState records the resilience.CircuitBreaker's state
// after a messageclient round trip, labeled by the operation name
// (e.g. "messages").
func (m *Metrics) RecordCircuitState(ctx context.Context, operation, state string) {
	if m == nil {
		return
	}
	var value int64
	switch state {
	case "half_open":
		value = 1
	case "open":
		value = 2
	}
	m.circuitState.Record(ctx, value, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("state", state),
	))
}

// RecordProviderHTTP records the outbound HTTP request/response a
// messageclient.Client sent to the model provider.
func (m *Metrics) RecordProviderHTTP(ctx context.Context, method, host string, statusCode int, duration time.Duration, responseSize int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("host", host),
		attribute.String("status", statusCodeLabel(statusCode)),
	)
	m.httpDuration.Record(ctx, duration.Seconds(), attrs)
	m.httpTotal.Add(ctx, 1, attrs)
	if responseSize > 0 {
		m.httpRespSize.Record(ctx, responseSize, attrs)
	}
}

// statusCodeLabel converts a status code to a low-cardinality label.
func statusCodeLabel(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// Handler returns the promhttp handler serving this Metrics' registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics not enabled"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Shutdown stops the underlying MeterProvider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

var _ Recorder = (*Metrics)(nil)
