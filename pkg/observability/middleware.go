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
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RoundTripper wraps an http.RoundTripper with a SpanProviderHTTP span and a
// RecordProviderHTTP metric around every outbound request. agentrun has no
// inbound HTTP server of its own — every request this process makes goes out
// to an LLM provider endpoint, so this is the only HTTP edge worth
// instrumenting.
type RoundTripper struct {
	next http.RoundTripper
}

// WrapTransport installs observability instrumentation around next. Pass the
// result to httpclient.WithHTTPClient's *http.Client.Transport, or call
// directly with http.DefaultTransport.
func WrapTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &RoundTripper{next: next}
}

// RoundTrip implements http.RoundTripper.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	tracer := GetTracer("agentrun.provider_http")
	ctx, span := tracer.Start(req.Context(), SpanProviderHTTP,
		trace.WithAttributes(
			attribute.String(AttrHTTPMethod, req.Method),
			attribute.String(AttrHTTPHost, req.URL.Host),
		),
	)
	defer span.End()

	resp, err := rt.next.RoundTrip(req.WithContext(ctx))
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		GetGlobalMetrics().RecordProviderHTTP(ctx, req.Method, req.URL.Host, 0, duration, 0)
		return resp, err
	}

	span.SetAttributes(attribute.Int(AttrHTTPStatusCode, resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	GetGlobalMetrics().RecordProviderHTTP(ctx, req.Method, req.URL.Host, resp.StatusCode, duration, resp.ContentLength)

	return resp, nil
}

var _ http.RoundTripper = (*RoundTripper)(nil)
