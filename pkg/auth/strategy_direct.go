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

// DirectStrategy authenticates straight to the Anthropic API with a
// plain API key sent in the x-api-key header, the deployment with no extra headers or prompt
// requirements.
type DirectStrategy struct {
	baseStrategy
	apiKey string
}

// NewDirectStrategy wraps a plain API key.
func NewDirectStrategy(apiKey string) *DirectStrategy {
	return &DirectStrategy{apiKey: apiKey}
}

func (s *DirectStrategy) Name() string { return "direct" }

func (s *DirectStrategy) AuthHeader() (string, string) {
	return "x-api-key", s.apiKey
}
