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
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kaidrach/agentrun/pkg/errs"
)

const (
	claudeDirName       = ".claude"
	credentialsFileName = ".credentials.json"
)

// cliCredentialsFile mirrors the JSON shape written by the Claude Code
// CLI's own login flow.
type cliCredentialsFile struct {
	ClaudeAiOauth *cliOAuthJSON `json:"claudeAiOauth,omitempty"`
}

type cliOAuthJSON struct {
	AccessToken      string   `json:"accessToken"`
	RefreshToken     string   `json:"refreshToken,omitempty"`
	ExpiresAt        *int64   `json:"expiresAt,omitempty"`
	Scopes           []string `json:"scopes,omitempty"`
	SubscriptionType string   `json:"subscriptionType,omitempty"`
}

func (f cliCredentialsFile) oauth() (OAuthCredential, bool) {
	if f.ClaudeAiOauth == nil {
		return OAuthCredential{}, false
	}
	c := f.ClaudeAiOauth

	expiresAt := c.ExpiresAt
	if expiresAt == nil {
		if exp, ok := expiryFromJWT(c.AccessToken); ok {
			expiresAt = &exp
		}
	}

	return OAuthCredential{
		AccessToken:      c.AccessToken,
		RefreshToken:     c.RefreshToken,
		ExpiresAt:        expiresAt,
		Scopes:           c.Scopes,
		SubscriptionType: c.SubscriptionType,
	}, true
}

// credentialsPath returns ~/.claude/.credentials.json.
func credentialsPath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	return filepath.Join(home, claudeDirName, credentialsFileName), true
}

// loadCLICredentials reads and parses the Claude Code CLI's stored
// credentials file. A missing file is not an error: it returns
// (OAuthCredential{}, false, nil).
func loadCLICredentials() (OAuthCredential, bool, error) {
	path, ok := credentialsPath()
	if !ok {
		return OAuthCredential{}, false, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return OAuthCredential{}, false, nil
		}
		return OAuthCredential{}, false, &errs.AuthError{Provider: "claude_cli", Message: "failed to read credentials file", Err: err}
	}

	var parsed cliCredentialsFile
	if err := json.Unmarshal(content, &parsed); err != nil {
		return OAuthCredential{}, false, &errs.AuthError{Provider: "claude_cli", Message: "failed to parse credentials file", Err: err}
	}

	oauth, ok := parsed.oauth()
	if !ok {
		return OAuthCredential{}, false, nil
	}
	return oauth, true, nil
}
