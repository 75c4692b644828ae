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

package messageclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kaidrach/agentrun/pkg/auth"
	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/httpclient"
	"github.com/kaidrach/agentrun/pkg/llms"
	"github.com/kaidrach/agentrun/pkg/observability"
	"github.com/kaidrach/agentrun/pkg/resilience"
)

// Client sends CreateMessageRequests to whichever deployment mode auth
// resolves to, retrying and circuit-breaking through pkg/resilience and
// refreshing an expired credential exactly once on a 401.
type Client struct {
	http       *httpclient.Client
	auth       auth.Auth
	resilience *resilience.Resilience
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport, e.g. for TLS configuration.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithResilience overrides the retry/circuit-breaker policy.
func WithResilience(r *resilience.Resilience) Option {
	return func(cl *Client) { cl.resilience = r }
}

// New builds a Client authenticating via a, with DefaultConfig resilience
// and a transport instrumented with SpanProviderHTTP spans/metrics unless
// overridden via WithHTTPClient.
func New(a auth.Auth, opts ...Option) *Client {
	c := &Client{
		http: httpclient.New(httpclient.WithHTTPClient(&http.Client{
			Timeout:   120 * time.Second,
			Transport: observability.WrapTransport(http.DefaultTransport),
		})),
		auth:       a,
		resilience: resilience.New(resilience.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider identifies the auth.Mode that served the last-built request, for
// LLM-request span/metric labeling.
func (c *Client) Provider() string {
	return c.auth.Mode().String()
}

// Send issues req and collects the full response, whether or not
// req.Stream is set (streaming responses are assembled internally).
func (c *Client) Send(ctx context.Context, req llms.CreateMessageRequest) (resp Response, err error) {
	if err := llms.Validate(req); err != nil {
		return Response{}, err
	}

	start := time.Now()
	provider := c.Provider()

	tracer := observability.GetTracer("agentrun.messageclient")
	ctx, span := tracer.Start(ctx, observability.SpanLLMRequest, trace.WithAttributes(
		attribute.String(observability.AttrLLMModel, req.Model),
		attribute.String(observability.AttrLLMProvider, provider),
		attribute.Bool(observability.AttrLLMStreaming, req.Stream),
	))
	defer func() {
		if c.resilience != nil {
			state := c.resilience.Breaker().State()
			observability.GetGlobalMetrics().RecordCircuitState(ctx, "messages", state.String())
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(
			attribute.Int64(observability.AttrLLMTokensInput, int64(resp.Usage.InputTokens)),
			attribute.Int64(observability.AttrLLMTokensOutput, int64(resp.Usage.OutputTokens)),
			attribute.String(observability.AttrLLMFinishReason, string(resp.StopReason)),
		)
		span.End()

		observability.GetGlobalMetrics().RecordLLMRequest(ctx, req.Model, provider, time.Since(start),
			int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens), err)
	}()

	if req.Stream {
		resp, err = resilience.Execute(ctx, c.resilience, func(ctx context.Context) (Response, error) {
			coll := newCollector()
			streamErr := c.stream(ctx, req, func(evt Event) bool {
				coll.apply(evt)
				return true
			})
			if streamErr != nil {
				return Response{}, streamErr
			}
			return coll.result(), nil
		})
		return resp, err
	}

	resp, err = resilience.Execute(ctx, c.resilience, func(ctx context.Context) (Response, error) {
		return c.sendOnce(ctx, req)
	})
	return resp, err
}

// Stream issues req (forcing Stream=true) and invokes onEvent for each
// decoded Event in order. onEvent returning false stops decoding early.
// Stream does not retry: a caller that wants retry-then-stream should
// wrap the call itself, since a partially-emitted stream cannot be
// safely replayed through onEvent a second time.
func (c *Client) Stream(ctx context.Context, req llms.CreateMessageRequest, onEvent func(Event) bool) error {
	if err := llms.Validate(req); err != nil {
		return err
	}
	req.Stream = true
	return c.stream(ctx, req, onEvent)
}

// sendOnce performs a single non-streaming request/response round trip,
// including the refresh-once-on-401 policy.
func (c *Client) sendOnce(ctx context.Context, req llms.CreateMessageRequest) (Response, error) {
	resp, err := c.roundTrip(ctx, req, false)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return Response{}, err
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Response{}, &errs.NetworkError{Transport: "http", Err: err}
	}
	return responseFromWire(wire), nil
}

// stream performs a single streaming request/response round trip,
// including the refresh-once-on-401 policy, decoding events as they
// arrive.
func (c *Client) stream(ctx context.Context, req llms.CreateMessageRequest, onEvent func(Event) bool) error {
	resp, err := c.roundTrip(ctx, req, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	return decodeStream(resp.Body, onEvent)
}

// roundTrip resolves a credential, builds the request, sends it, and on
// a 401 resolves the credential again and resends exactly once.
func (c *Client) roundTrip(ctx context.Context, req llms.CreateMessageRequest, stream bool) (*http.Response, error) {
	req.Stream = stream

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	// Re-resolve the credential (OAuth refresh happens here if the
	// underlying provider is a CachedProvider) and rebuild the request
	// from scratch rather than replaying the stale one.
	httpReq2, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.http.Do(httpReq2)
}

func (c *Client) buildRequest(ctx context.Context, req llms.CreateMessageRequest) (*http.Request, error) {
	credential, err := c.auth.Resolve(ctx)
	if err != nil {
		return nil, &errs.AuthError{Message: "resolve credential", Err: err}
	}
	strategy, err := c.auth.Strategy(credential)
	if err != nil {
		return nil, &errs.AuthError{Message: "select strategy", Err: err}
	}
	adapter := llms.NewAdapter(strategy)
	return adapter.Build(ctx, req, "")
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &errs.TimeoutError{}
	}
	return &errs.NetworkError{Transport: "http", Err: err}
}

// statusError translates a non-2xx response into the matching errs
// type; 401 is handled by the caller before this is reached on the
// first attempt, but a second 401 (refresh didn't help) falls through
// here as a plain APIError.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var wireErr struct {
		Error wireErrorBody `json:"error"`
	}
	_ = json.Unmarshal(body, &wireErr)

	if resp.StatusCode == http.StatusTooManyRequests {
		info := httpclient.ParseRateLimitHeaders(resp.Header)
		return &errs.RateLimitError{RetryAfter: info.RetryAfter, HasRetry: info.RetryAfter > 0}
	}

	return &errs.APIError{Status: resp.StatusCode, Message: wireErr.Error.Message, Type: wireErr.Error.Type}
}
