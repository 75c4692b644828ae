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
	"os"
	"strings"
)

// DefaultSystemPrompt is the system prompt OAuth authentication
// requires the first block of every request to carry.
const DefaultSystemPrompt = "You are Claude Code, Anthropic's official CLI for Claude."

// DefaultUserAgent identifies the runtime to the provider the way the
// CLI it borrows OAuth tokens from does.
const DefaultUserAgent = "claude-cli/2.0.76 (external, cli)"

// DefaultAppIdentifier is the x-app header value OAuth requests send.
const DefaultAppIdentifier = "cli"

// DefaultBetaFlags are the anthropic-beta values OAuth requests send.
var DefaultBetaFlags = []string{
	"claude-code-20250219",
	"oauth-2025-04-20",
	"interleaved-thinking-2025-05-14",
}

// OAuthConfig controls the headers, URL parameters, and system prompt
// OAuthStrategy attaches to every request.
type OAuthConfig struct {
	SystemPrompt  string
	BetaFlags     []string
	UserAgent     string
	AppIdentifier string
	URLParams     map[string]string
	ExtraHeaders  map[string]string
}

// DefaultOAuthConfig returns OAuthConfig populated with its defaults.
func DefaultOAuthConfig() OAuthConfig {
	return OAuthConfig{
		SystemPrompt:  DefaultSystemPrompt,
		BetaFlags:     append([]string(nil), DefaultBetaFlags...),
		UserAgent:     DefaultUserAgent,
		AppIdentifier: DefaultAppIdentifier,
		URLParams:     map[string]string{"beta": "true"},
		ExtraHeaders:  map[string]string{"anthropic-dangerous-direct-browser-access": "true"},
	}
}

// OAuthConfigFromEnv applies CLAUDE_AGENT_* environment overrides on
// top of the defaults.
func OAuthConfigFromEnv() OAuthConfig {
	cfg := DefaultOAuthConfig()

	if v := os.Getenv("CLAUDE_AGENT_SYSTEM_PROMPT"); v != "" {
		cfg.SystemPrompt = v
	}
	if v := os.Getenv("CLAUDE_AGENT_BETA_FLAGS"); v != "" {
		flags := strings.Split(v, ",")
		for i := range flags {
			flags[i] = strings.TrimSpace(flags[i])
		}
		cfg.BetaFlags = flags
	}
	if v := os.Getenv("CLAUDE_AGENT_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("CLAUDE_AGENT_APP_IDENTIFIER"); v != "" {
		cfg.AppIdentifier = v
	}

	return cfg
}

// BetaHeaderValue joins BetaFlags for the anthropic-beta header.
func (c OAuthConfig) BetaHeaderValue() string {
	return strings.Join(c.BetaFlags, ",")
}

// WithBetaFlag appends a single beta flag.
func (c OAuthConfig) WithBetaFlag(flag string) OAuthConfig {
	c.BetaFlags = append(append([]string(nil), c.BetaFlags...), flag)
	return c
}

// WithSystemPrompt overrides the system prompt.
func (c OAuthConfig) WithSystemPrompt(prompt string) OAuthConfig {
	c.SystemPrompt = prompt
	return c
}

// WithUserAgent overrides the user agent.
func (c OAuthConfig) WithUserAgent(ua string) OAuthConfig {
	c.UserAgent = ua
	return c
}
