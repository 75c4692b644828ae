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

package auth

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kaidrach/agentrun/pkg/errs"
)

const defaultAPIKeyHelperTTL = time.Hour

// APIKeyHelper runs an external command to produce an API key on demand,
// for deployments that mint short-lived keys out of band (a secrets
// manager CLI, a corporate credential broker).
type APIKeyHelper struct {
	command string
	ttl     time.Duration

	mu        sync.Mutex
	cachedKey string
	expiresAt time.Time
}

// NewAPIKeyHelper wraps a shell command, cached for an hour by default.
func NewAPIKeyHelper(command string) *APIKeyHelper {
	return &APIKeyHelper{command: command, ttl: defaultAPIKeyHelperTTL}
}

// WithTTL overrides the cache lifetime.
func (h *APIKeyHelper) WithTTL(ttl time.Duration) *APIKeyHelper {
	h.ttl = ttl
	return h
}

// APIKeyHelperFromEnv builds a helper from ANTHROPIC_API_KEY_HELPER,
// returning ok=false when that variable is unset.
func APIKeyHelperFromEnv() (*APIKeyHelper, bool) {
	command, ok := os.LookupEnv("ANTHROPIC_API_KEY_HELPER")
	if !ok || command == "" {
		return nil, false
	}

	ttl := defaultAPIKeyHelperTTL
	if ms, err := strconv.ParseInt(os.Getenv("CLAUDE_CODE_API_KEY_HELPER_TTL_MS"), 10, 64); err == nil && ms > 0 {
		ttl = time.Duration(ms) * time.Millisecond
	}

	return NewAPIKeyHelper(command).WithTTL(ttl), true
}

// GetKey returns the cached key, or runs the helper command if the
// cache is stale.
func (h *APIKeyHelper) GetKey(ctx context.Context) (string, error) {
	h.mu.Lock()
	if h.cachedKey != "" && time.Now().Before(h.expiresAt) {
		key := h.cachedKey
		h.mu.Unlock()
		return key, nil
	}
	h.mu.Unlock()

	key, err := h.execute(ctx)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	h.cachedKey = key
	h.expiresAt = time.Now().Add(h.ttl)
	h.mu.Unlock()

	return key, nil
}

// Invalidate clears the cached key, forcing the next GetKey to re-run
// the helper command.
func (h *APIKeyHelper) Invalidate() {
	h.mu.Lock()
	h.cachedKey = ""
	h.mu.Unlock()
}

func (h *APIKeyHelper) execute(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", h.command)
	out, err := cmd.Output()
	if err != nil {
		msg := "failed to execute API key helper"
		if exitErr, ok := err.(*exec.ExitError); ok {
			msg = "API key helper failed: " + strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", &errs.AuthError{Provider: "api_key_helper", Message: msg, Err: err}
	}

	key := strings.TrimSpace(string(out))
	if key == "" {
		return "", &errs.AuthError{Provider: "api_key_helper", Message: "API key helper returned empty key"}
	}
	return key, nil
}

// AWSCredentials is the triple AWSCredentialRefresh extracts from an
// external credential-export command's JSON output.
type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// AWSCredentialRefresh shells out to operator-supplied commands to keep
// Bedrock SigV4 credentials current, mirroring the two hooks AWS CLI
// credential_process-style integrations expect: one that merely nudges
// an external agent to refresh, one that prints a full credential set.
type AWSCredentialRefresh struct {
	authRefreshCmd      string
	credentialExportCmd string
}

// NewAWSCredentialRefresh builds a refresher from the configured
// commands, returning ok=false if neither is set.
func NewAWSCredentialRefresh(authRefreshCmd, credentialExportCmd string) (*AWSCredentialRefresh, bool) {
	if authRefreshCmd == "" && credentialExportCmd == "" {
		return nil, false
	}
	return &AWSCredentialRefresh{authRefreshCmd: authRefreshCmd, credentialExportCmd: credentialExportCmd}, true
}

// Refresh runs the configured commands and returns freshly exported
// credentials, if a credential-export command was configured.
func (r *AWSCredentialRefresh) Refresh(ctx context.Context) (*AWSCredentials, error) {
	if r.authRefreshCmd != "" {
		if err := r.runAuthRefresh(ctx, r.authRefreshCmd); err != nil {
			return nil, err
		}
	}
	if r.credentialExportCmd != "" {
		return r.exportCredentials(ctx, r.credentialExportCmd)
	}
	return nil, nil
}

func (r *AWSCredentialRefresh) runAuthRefresh(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &errs.AuthError{Provider: "aws", Message: "AWS auth refresh failed: " + strings.TrimSpace(string(out)), Err: err}
	}
	return nil
}

func (r *AWSCredentialRefresh) exportCredentials(ctx context.Context, command string) (*AWSCredentials, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	out, err := cmd.Output()
	if err != nil {
		return nil, &errs.AuthError{Provider: "aws", Message: "AWS credential export failed", Err: err}
	}

	var payload struct {
		Credentials struct {
			AccessKeyID     string `json:"AccessKeyId"`
			SecretAccessKey string `json:"SecretAccessKey"`
			SessionToken    string `json:"SessionToken"`
		} `json:"Credentials"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, &errs.AuthError{Provider: "aws", Message: "invalid credential JSON", Err: err}
	}
	if payload.Credentials.AccessKeyID == "" || payload.Credentials.SecretAccessKey == "" {
		return nil, &errs.AuthError{Provider: "aws", Message: "credential export missing AccessKeyId/SecretAccessKey"}
	}

	return &AWSCredentials{
		AccessKeyID:     payload.Credentials.AccessKeyID,
		SecretAccessKey: payload.Credentials.SecretAccessKey,
		SessionToken:    payload.Credentials.SessionToken,
	}, nil
}
