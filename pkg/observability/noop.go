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
	"net/http"
	"time"
)

// NoopManager returns a Manager with nothing configured. Tracer()/Metrics()
// return zero values and every call site routes through GetTracer's otel
// noop default and GetGlobalMetrics' NoopMetrics default.
func NoopManager() *Manager {
	return &Manager{}
}

// NoopMetrics is the Recorder installed when metrics are disabled, or before
// Manager.NewManager has run. Every method is a no-op.
type NoopMetrics struct{}

func (NoopMetrics) RecordAgentTurn(context.Context, time.Duration, int, error) {}
func (NoopMetrics) RecordLLMRequest(context.Context, string, string, time.Duration, int, int, error) {
}
func (NoopMetrics) RecordToolExecution(context.Context, string, time.Duration, error)             {}
func (NoopMetrics) RecordCircuitState(context.Context, string, string)                            {}
func (NoopMetrics) RecordProviderHTTP(context.Context, string, string, int, time.Duration, int64) {}

// Handler returns a handler reporting metrics as unavailable.
func (NoopMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("metrics not enabled"))
	})
}

var _ Recorder = NoopMetrics{}
