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

package messageclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/auth"
	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/httpclient"
	"github.com/kaidrach/agentrun/pkg/llms"
	"github.com/kaidrach/agentrun/pkg/messageclient"
	"github.com/kaidrach/agentrun/pkg/resilience"
)

func testRequest() llms.CreateMessageRequest {
	return llms.CreateMessageRequest{
		Model:     "claude-sonnet-4-5",
		Messages:  []llms.Message{{Role: llms.RoleUser, Content: []llms.ContentBlock{llms.TextBlock("hi")}}},
		MaxTokens: 1024,
	}
}

func newTestClient(t *testing.T, serverURL string) *messageclient.Client {
	t.Helper()
	hc := httpclient.New(httpclient.WithHTTPClient(&http.Client{Transport: rewriteBaseURLTransport{base: serverURL}}))
	return messageclient.New(
		auth.APIKey("test-key"),
		messageclient.WithHTTPClient(hc),
		messageclient.WithResilience(resilience.New(resilience.NoRetryConfig())),
	)
}

// rewriteBaseURLTransport redirects every request to the test server,
// since the adapter always targets https://api.anthropic.com.
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

func TestSend_NonStreamingSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]any{{"type": "text", "text": "hello there"}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	resp, err := client.Send(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, "hello there", resp.Text)
	require.Equal(t, messageclient.StopEndTurn, resp.StopReason)
	require.EqualValues(t, 10, resp.Usage.InputTokens)
}

func TestSend_RetriesOnceAfter401(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]any{{"type": "text", "text": "ok"}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 1, "output_tokens": 1},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	resp, err := client.Send(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Text)
	require.EqualValues(t, 2, attempts.Load())
}

func TestSend_RateLimitedSurfacesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("retry-after", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Send(context.Background(), testRequest())

	var rl *errs.RateLimitError
	require.ErrorAs(t, err, &rl)
	require.True(t, rl.HasRetry)
}

func TestSend_InvalidRequestRejectedBeforeSending(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid")
	req := testRequest()
	req.MaxTokens = 0

	_, err := client.Send(context.Background(), req)
	var tv *errs.TokenValidationError
	require.ErrorAs(t, err, &tv)
}

func TestStream_ToolUseStreamEndsWithMessageComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		lines := []string{
			`{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"tu_1","name":"grep"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"q\":"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"\"x\"}"}}`,
			`{"type":"content_block_stop","index":0}`,
			`{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":3}}`,
			`{"type":"message_stop"}`,
		}
		for _, line := range lines {
			_, _ = w.Write([]byte("data: " + line + "\n\n"))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	var events []messageclient.Event
	err := client.Stream(context.Background(), testRequest(), func(evt messageclient.Event) bool {
		events = append(events, evt)
		return true
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.Equal(t, messageclient.EventMessageComplete, last.Kind)
	require.Equal(t, messageclient.StopToolUse, last.StopReason)
}
