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

package files

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kaidrach/agentrun/pkg/auth"
	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/httpclient"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	filesAPIBeta     = "files-api-2025-04-14"
)

// Client sends Files API requests, refreshing an expired credential
// exactly once on a 401 the same way pkg/messageclient does.
type Client struct {
	http    *httpclient.Client
	auth    auth.Auth
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport, e.g. for TLS configuration.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithBaseURL overrides the default https://api.anthropic.com, mirroring
// the upstream client's ANTHROPIC_BASE_URL override.
func WithBaseURL(url string) Option {
	return func(cl *Client) { cl.baseURL = strings.TrimSuffix(url, "/") }
}

// New builds a Client authenticating via a.
func New(a auth.Auth, opts ...Option) *Client {
	c := &Client{http: httpclient.New(), auth: a, baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) url(path string) string {
	return c.baseURL + "/v1/files" + path
}

// buildRequest resolves the bound credential and attaches the headers
// every Files call needs: the auth header, anthropic-version, and
// anthropic-beta (merging the files-api flag into any beta flags the
// strategy already sends, e.g. OAuth's claude-code/interleaved-thinking
// set, rather than clobbering them). body is re-wrapped in a fresh
// reader on every call so a 401 retry can resend it unconsumed.
func (c *Client) buildRequest(ctx context.Context, method, path string, body []byte, contentType string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	credential, err := c.auth.Resolve(ctx)
	if err != nil {
		return nil, &errs.AuthError{Message: "resolve credential", Err: err}
	}
	strategy, err := c.auth.Strategy(credential)
	if err != nil {
		return nil, &errs.AuthError{Message: "select strategy", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("files: build request: %w", err)
	}

	req.Header.Set("anthropic-version", anthropicVersion)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	name, value := strategy.AuthHeader()
	if name != "" {
		req.Header.Set(name, value)
	}

	beta := filesAPIBeta
	for k, v := range strategy.ExtraHeaders() {
		if strings.EqualFold(k, "anthropic-beta") && v != "" {
			beta = v + "," + filesAPIBeta
			continue
		}
		req.Header.Set(k, v)
	}
	req.Header.Set("anthropic-beta", beta)

	return req, nil
}

// do sends req, re-resolving the credential and resending exactly once
// on a 401. body is rebuilt from scratch for the retry since the first
// attempt may have consumed it.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	req, err := c.buildRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errs.NetworkError{Transport: "http", Err: err}
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	req2, err := c.buildRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	resp2, err := c.http.Do(req2)
	if err != nil {
		return nil, &errs.NetworkError{Transport: "http", Err: err}
	}
	return resp2, nil
}

// decodeInto unmarshals resp's body into v, translating a non-2xx
// status into an *errs.APIError (or *errs.NotFoundError for a 404).
func decodeInto[T any](resp *http.Response, v *T) error {
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &errs.NetworkError{Transport: "http", Err: err}
	}
	return nil
}

func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var wireErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &wireErr)

	if resp.StatusCode == http.StatusNotFound {
		return &errs.NotFoundError{Path: wireErr.Error.Message}
	}
	return &errs.APIError{Status: resp.StatusCode, Message: wireErr.Error.Message, Type: wireErr.Error.Type}
}
