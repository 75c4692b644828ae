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

// OAuthStrategy authenticates with a Claude Code CLI OAuth token. OAuth
// requires every request to self-identify as Claude Code: a fixed
// system-prompt block, a matching user agent, and a set of beta flags
// the direct API key path never sends.
type OAuthStrategy struct {
	credential OAuthCredential
	config     OAuthConfig
}

// NewOAuthStrategy builds a strategy with environment-overridden defaults.
func NewOAuthStrategy(credential OAuthCredential) *OAuthStrategy {
	return &OAuthStrategy{credential: credential, config: OAuthConfigFromEnv()}
}

// NewOAuthStrategyWithConfig builds a strategy with an explicit config.
func NewOAuthStrategyWithConfig(credential OAuthCredential, config OAuthConfig) *OAuthStrategy {
	return &OAuthStrategy{credential: credential, config: config}
}

// Config returns the strategy's OAuthConfig.
func (s *OAuthStrategy) Config() OAuthConfig { return s.config }

// Credential returns the wrapped OAuth credential.
func (s *OAuthStrategy) Credential() OAuthCredential { return s.credential }

func (s *OAuthStrategy) Name() string { return "oauth" }

func (s *OAuthStrategy) AuthHeader() (string, string) {
	return "Authorization", "Bearer " + s.credential.AccessToken
}

func (s *OAuthStrategy) ExtraHeaders() map[string]string {
	headers := make(map[string]string, len(s.config.ExtraHeaders)+3)
	if len(s.config.BetaFlags) > 0 {
		headers["anthropic-beta"] = s.config.BetaHeaderValue()
	}
	headers["user-agent"] = s.config.UserAgent
	headers["x-app"] = s.config.AppIdentifier
	for k, v := range s.config.ExtraHeaders {
		headers[k] = v
	}
	return headers
}

func (s *OAuthStrategy) URLQuery() (string, bool) {
	if len(s.config.URLParams) == 0 {
		return "", false
	}
	q := make([]byte, 0, 32)
	first := true
	for k, v := range s.config.URLParams {
		if !first {
			q = append(q, '&')
		}
		first = false
		q = append(q, k...)
		q = append(q, '=')
		q = append(q, v...)
	}
	return string(q), true
}

func (s *OAuthStrategy) PrepareSystemPrompt(existing []SystemPromptBlock) []SystemPromptBlock {
	claudeCodeBlock := SystemPromptBlock{Text: s.config.SystemPrompt, CacheControlEphem: true}
	return append([]SystemPromptBlock{claudeCodeBlock}, existing...)
}
