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
	"os/exec"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// CLIProvider resolves credentials the Claude Code CLI has already
// logged in and stored (Keychain on macOS, a JSON file elsewhere),
// refreshing through `claude auth refresh` when the stored token has
// expired.
type CLIProvider struct{}

// NewCLIProvider builds a CLIProvider.
func NewCLIProvider() *CLIProvider { return &CLIProvider{} }

func (p *CLIProvider) Name() string { return "claude_cli" }

func (p *CLIProvider) load() (OAuthCredential, bool, error) {
	if oauth, ok := loadKeychainCredentials(); ok {
		return oauth, true, nil
	}
	return loadCLICredentials()
}

func (p *CLIProvider) Resolve(ctx context.Context) (Credential, error) {
	oauth, ok, err := p.load()
	if err != nil {
		return Credential{}, err
	}
	if !ok {
		return Credential{}, &errs.AuthError{
			Provider: p.Name(),
			Message:  "Claude Code CLI credentials not found; run 'claude login' first",
		}
	}
	if oauth.IsExpired() {
		return p.Refresh(ctx)
	}
	return Credential{Kind: KindOAuth, OAuth: oauth}, nil
}

func (p *CLIProvider) Refresh(ctx context.Context) (Credential, error) {
	cmd := exec.CommandContext(ctx, "claude", "auth", "refresh")
	if out, err := cmd.CombinedOutput(); err != nil {
		return Credential{}, &errs.AuthError{
			Provider: p.Name(),
			Message:  "token refresh failed: " + string(out),
			Err:      err,
		}
	}

	oauth, ok, err := p.load()
	if err != nil {
		return Credential{}, err
	}
	if !ok {
		return Credential{}, &errs.AuthError{Provider: p.Name(), Message: "credentials not found after refresh"}
	}
	if oauth.IsExpired() {
		return Credential{}, &errs.AuthError{Provider: p.Name(), Message: "token still expired after refresh"}
	}
	return Credential{Kind: KindOAuth, OAuth: oauth}, nil
}

func (p *CLIProvider) SupportsRefresh() bool { return true }
