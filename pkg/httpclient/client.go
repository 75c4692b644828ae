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

// Package httpclient is the transport the message client sends requests
// over: TLS configuration for corporate proxies/self-signed certs, a
// replayable request body so a single *http.Request can be resent after
// a 401 token refresh or a resilience-layer retry, and Anthropic rate
// limit header parsing. It does not retry on its own — pkg/resilience
// owns the retry/circuit-breaking policy one layer up.
package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"time"
)

// Client wraps http.Client with a buffered, replayable request body.
type Client struct {
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient installs a custom *http.Client, e.g. one whose
// Transport was built with ConfigureTLS.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout overrides the default 120s client timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http.Timeout = d }
}

// New builds a Client with a 120s default timeout.
func New(opts ...Option) *Client {
	c := &Client{http: &http.Client{Timeout: 120 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req, buffering its body first so req.GetBody can replay it —
// callers that need to resend (a 401-after-refresh, a resilience retry)
// rely on this rather than re-marshaling the request themselves.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	return c.http.Do(req)
}

// Rewind resets req's body to its original contents via GetBody, for a
// caller about to resend it.
func Rewind(req *http.Request) error {
	if req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return err
	}
	req.Body = body
	return nil
}
