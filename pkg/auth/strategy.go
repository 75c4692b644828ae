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

// SystemPromptBlock is one block of a request's system prompt, carrying
// its own prompt-caching marker the way the Messages API's system-block
// array does.
type SystemPromptBlock struct {
	Text              string
	CacheControlEphem bool
}

// Strategy adapts a resolved Credential into the concrete wire details
// a deployment (direct Anthropic API, Bedrock, Vertex, Foundry) needs:
// which header carries the credential, which extra headers and URL
// parameters the deployment always sends, and — for OAuth — which
// system-prompt block must be prepended to every request.
type Strategy interface {
	// Name identifies the strategy for logging.
	Name() string

	// AuthHeader returns the header name/value pair carrying the credential.
	AuthHeader() (name, value string)

	// ExtraHeaders returns headers always attached by this strategy.
	ExtraHeaders() map[string]string

	// URLQuery returns a query string to append to the request URL, if any.
	URLQuery() (query string, ok bool)

	// PrepareSystemPrompt prepends any strategy-mandated block ahead of
	// the caller's own system prompt blocks.
	PrepareSystemPrompt(existing []SystemPromptBlock) []SystemPromptBlock
}

// baseStrategy supplies no-op defaults for the optional Strategy hooks.
type baseStrategy struct{}

func (baseStrategy) ExtraHeaders() map[string]string { return nil }

func (baseStrategy) URLQuery() (string, bool) { return "", false }

func (baseStrategy) PrepareSystemPrompt(existing []SystemPromptBlock) []SystemPromptBlock {
	return existing
}
