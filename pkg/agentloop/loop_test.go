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

package agentloop_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/agentloop"
	"github.com/kaidrach/agentrun/pkg/auth"
	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/httpclient"
	"github.com/kaidrach/agentrun/pkg/llms"
	"github.com/kaidrach/agentrun/pkg/messageclient"
	"github.com/kaidrach/agentrun/pkg/resilience"
	"github.com/kaidrach/agentrun/pkg/tokens"
	"github.com/kaidrach/agentrun/pkg/tool"
)

// rewriteBaseURLTransport redirects every request to the test server,
// the same fixture messageclient's own tests use, since the adapter
// always targets https://api.anthropic.com.
type rewriteBaseURLTransport struct{ base string }

func (t rewriteBaseURLTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, err := url.Parse(t.base)
	if err != nil {
		return nil, err
	}
	target.Path = req.URL.Path
	target.RawQuery = req.URL.RawQuery
	req.URL = target
	req.Host = target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestClient(serverURL string) *messageclient.Client {
	hc := httpclient.New(httpclient.WithHTTPClient(&http.Client{Transport: rewriteBaseURLTransport{base: serverURL}}))
	return messageclient.New(
		auth.APIKey("test-key"),
		messageclient.WithHTTPClient(hc),
		messageclient.WithResilience(resilience.New(resilience.NoRetryConfig())),
	)
}

func newTestTracker(t *testing.T) *tokens.Tracker {
	t.Helper()
	spec, ok := llms.DefaultRegistry().Get("claude-sonnet-4-5-20250929")
	require.True(t, ok)
	return tokens.NewTracker(spec, false, tokens.NewPricing(3, 15))
}

func newTestEstimator(t *testing.T) *tokens.Estimator {
	t.Helper()
	est, err := tokens.NewEstimator()
	require.NoError(t, err)
	return est
}

type echoTool struct{ name string }

func (e echoTool) Name() string                { return e.name }
func (e echoTool) Description() string         { return "echoes its input" }
func (e echoTool) InputSchema() map[string]any { return map[string]any{"type": "object"} }

func (e echoTool) Execute(_ tool.ExecContext, input json.RawMessage) (tool.Result, error) {
	return tool.OKResult(string(input)), nil
}

func jsonResponse(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func TestLoop_Execute_NoToolUse_ReturnsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, map[string]any{
			"content":     []map[string]any{{"type": "text", "text": "hello there"}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	registry := tool.NewRegistry()
	loop := agentloop.NewLoop(agentloop.DefaultConfig("claude-sonnet-4-5-20250929"), client, registry, newTestEstimator(t))

	session := agentloop.NewSession(newTestTracker(t))
	result, err := loop.Execute(context.Background(), session, "hi")
	require.NoError(t, err)
	require.Equal(t, "hello there", result.Text)
	require.Equal(t, 1, result.Iterations)
	require.Empty(t, result.ToolCalls)
	require.Len(t, session.Messages, 2) // user prompt, assistant reply
}

func TestLoop_Execute_DispatchesToolThenFinishes(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			jsonResponse(w, map[string]any{
				"content": []map[string]any{
					{"type": "tool_use", "id": "call_1", "name": "echo", "input": map[string]any{"x": 1}},
				},
				"stop_reason": "tool_use",
				"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
			})
			return
		}
		jsonResponse(w, map[string]any{
			"content":     []map[string]any{{"type": "text", "text": "done"}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 12, "output_tokens": 3},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	registry := tool.NewRegistry()
	registry.Register(echoTool{name: "echo"})

	loop := agentloop.NewLoop(agentloop.DefaultConfig("claude-sonnet-4-5-20250929"), client, registry, newTestEstimator(t))

	session := agentloop.NewSession(newTestTracker(t))
	result, err := loop.Execute(context.Background(), session, "run echo")
	require.NoError(t, err)
	require.Equal(t, "done", result.Text)
	require.Equal(t, 2, result.Iterations)
	require.Len(t, result.ToolCalls, 1)
	require.Equal(t, "echo", result.ToolCalls[0].Name)
	require.False(t, result.ToolCalls[0].IsError)

	// Session should carry: user prompt, assistant tool_use, user
	// tool_result, assistant final text.
	require.Len(t, session.Messages, 4)
}

func TestLoop_Execute_UnknownToolReportsErrorButContinues(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			jsonResponse(w, map[string]any{
				"content": []map[string]any{
					{"type": "tool_use", "id": "call_1", "name": "missing", "input": map[string]any{}},
				},
				"stop_reason": "tool_use",
				"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
			})
			return
		}
		jsonResponse(w, map[string]any{
			"content":     []map[string]any{{"type": "text", "text": "recovered"}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 12, "output_tokens": 3},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	registry := tool.NewRegistry()
	loop := agentloop.NewLoop(agentloop.DefaultConfig("claude-sonnet-4-5-20250929"), client, registry, newTestEstimator(t))

	session := agentloop.NewSession(newTestTracker(t))
	result, err := loop.Execute(context.Background(), session, "run missing tool")
	require.NoError(t, err)
	require.Equal(t, "recovered", result.Text)
	require.Len(t, result.ToolCalls, 1)
	require.True(t, result.ToolCalls[0].IsError)
}

func TestLoop_Execute_MaxIterationsExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, map[string]any{
			"content": []map[string]any{
				{"type": "tool_use", "id": "call_1", "name": "echo", "input": map[string]any{}},
			},
			"stop_reason": "tool_use",
			"usage":       map[string]any{"input_tokens": 1, "output_tokens": 1},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	registry := tool.NewRegistry()
	registry.Register(echoTool{name: "echo"})

	config := agentloop.DefaultConfig("claude-sonnet-4-5-20250929")
	config.MaxIterations = 2
	loop := agentloop.NewLoop(config, client, registry, newTestEstimator(t))

	session := agentloop.NewSession(newTestTracker(t))
	_, err := loop.Execute(context.Background(), session, "loop forever")
	require.Error(t, err)
	var execErr *errs.ExecutionFailedError
	require.ErrorAs(t, err, &execErr)
}

func TestLoop_Execute_ContextExceededAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should never be sent once preflight fails")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	registry := tool.NewRegistry()
	loop := agentloop.NewLoop(agentloop.DefaultConfig("claude-sonnet-4-5-20250929"), client, registry, newTestEstimator(t))

	tracker := newTestTracker(t)
	tracker.Reset(tracker.ContextWindow().Limit()) // already full

	session := agentloop.NewSession(tracker)
	_, err := loop.Execute(context.Background(), session, "this won't fit")
	require.Error(t, err)
	var ctxErr *errs.ContextExceededError
	require.ErrorAs(t, err, &ctxErr)
}

func TestLoop_ExecuteStream_ForwardsTextDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		lines := []string{
			`data: {"type":"message_start","message":{"usage":{"input_tokens":5,"output_tokens":0}}}`,
			`data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
			`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`,
			`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`,
			`data: {"type":"content_block_stop","index":0}`,
			`data: {"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":2}}`,
			`data: {"type":"message_stop"}`,
		}
		for _, line := range lines {
			_, _ = w.Write([]byte(line + "\n\n"))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	registry := tool.NewRegistry()
	loop := agentloop.NewLoop(agentloop.DefaultConfig("claude-sonnet-4-5-20250929"), client, registry, newTestEstimator(t))

	var deltas []string
	session := agentloop.NewSession(newTestTracker(t))
	result, err := loop.ExecuteStream(context.Background(), session, "stream please", func(evt agentloop.Event) bool {
		if evt.Kind == agentloop.EventText {
			deltas = append(deltas, evt.Text)
		}
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Hel", "lo"}, deltas)
	require.Equal(t, "Hello", result.Text)
}
