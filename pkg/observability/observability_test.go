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
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetricsNeverPanics(t *testing.T) {
	ctx := context.Background()
	var m Recorder = NoopMetrics{}

	m.RecordAgentTurn(ctx, 100*time.Millisecond, 150, nil)
	m.RecordLLMRequest(ctx, "claude-sonnet", "anthropic", 500*time.Millisecond, 100, 50, nil)
	m.RecordToolExecution(ctx, "search", 50*time.Millisecond, nil)
	m.RecordCircuitState(ctx, "messages", "closed")
	m.RecordProviderHTTP(ctx, "POST", "api.anthropic.com", 200, 20*time.Millisecond, 512)

	rec := httptest.NewRecorder()
	NoopMetrics{}.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 503, rec.Code)
}

func TestGetGlobalMetricsDefaultsToNoop(t *testing.T) {
	metricsMu.Lock()
	globalMetrics = nil
	metricsMu.Unlock()

	m := GetGlobalMetrics()
	_, ok := m.(NoopMetrics)
	assert.True(t, ok, "GetGlobalMetrics should default to NoopMetrics when nothing was installed")
}

func TestSetGlobalMetricsInstallsRecorder(t *testing.T) {
	metrics, err := NewMetrics(&MetricsConfig{Enabled: true})
	require.NoError(t, err)

	SetGlobalMetrics(metrics)
	defer SetGlobalMetrics(nil)

	assert.Same(t, Recorder(metrics), GetGlobalMetrics())
}

func TestNewMetricsDisabled(t *testing.T) {
	m, err := NewMetrics(&MetricsConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = NewMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestMetricsRecordAndScrape(t *testing.T) {
	ctx := context.Background()
	m, err := NewMetrics(&MetricsConfig{Enabled: true, Namespace: "agentrun_test"})
	require.NoError(t, err)
	require.NotNil(t, m)
	defer m.Shutdown(ctx)

	m.RecordAgentTurn(ctx, 10*time.Millisecond, 42, nil)
	m.RecordLLMRequest(ctx, "claude-sonnet", "anthropic", 5*time.Millisecond, 10, 20, nil)
	m.RecordToolExecution(ctx, "search", 1*time.Millisecond, nil)
	m.RecordCircuitState(ctx, "messages", "open")
	m.RecordProviderHTTP(ctx, "POST", "api.anthropic.com", 429, 2*time.Millisecond, 0)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestTracerDisabledIsUsable(t *testing.T) {
	ctx := context.Background()
	cfg := &TracingConfig{Enabled: false}
	cfg.SetDefaults()

	tr, err := NewTracer(ctx, cfg)
	require.NoError(t, err)

	_, span := tr.Start(ctx, SpanAgentTurn)
	defer span.End()
	assert.Nil(t, tr.DebugExporter())
	assert.NoError(t, tr.Shutdown(ctx))
}

func TestTracerStdoutExporter(t *testing.T) {
	ctx := context.Background()
	cfg := &TracingConfig{Enabled: true, Exporter: "stdout", ServiceName: "agentrun-test"}
	cfg.SetDefaults()

	tr, err := NewTracer(ctx, cfg, WithDebugExporter(true))
	require.NoError(t, err)
	defer tr.Shutdown(ctx)

	require.NotNil(t, tr.DebugExporter())

	_, span := tr.Start(ctx, SpanToolExecution)
	span.End()
}

func TestTracingConfigValidate(t *testing.T) {
	cfg := &TracingConfig{Enabled: true, Exporter: "jaeger", Endpoint: "localhost:1"}
	assert.Error(t, cfg.Validate())

	cfg.Exporter = "otlp"
	assert.NoError(t, cfg.Validate())

	cfg.SamplingRate = 2
	assert.Error(t, cfg.Validate())
}

func TestDebugExporterCapturesKnownSpansOnly(t *testing.T) {
	e := NewDebugExporter()
	assert.True(t, e.shouldCapture(SpanAgentTurn))
	assert.True(t, e.shouldCapture(SpanLLMRequest))
	assert.True(t, e.shouldCapture(SpanToolExecution))
	assert.True(t, e.shouldCapture(SpanProviderHTTP))
	assert.False(t, e.shouldCapture("some.other.span"))
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	mgr, err := NewManager(ctx, &Config{
		Tracing: TracingConfig{Enabled: true, Exporter: "stdout"},
		Metrics: MetricsConfig{Enabled: true},
	})
	require.NoError(t, err)
	defer mgr.Shutdown(ctx)

	assert.True(t, mgr.TracingEnabled())
	assert.True(t, mgr.MetricsEnabled())

	_, ok := mgr.Metrics().(*Metrics)
	assert.True(t, ok)
}

func TestNoopManager(t *testing.T) {
	mgr := NoopManager()
	assert.False(t, mgr.TracingEnabled())
	assert.False(t, mgr.MetricsEnabled())
	_, ok := mgr.Metrics().(NoopMetrics)
	assert.True(t, ok)
}
