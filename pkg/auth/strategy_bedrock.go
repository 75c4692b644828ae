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

import "fmt"

// BedrockStrategy authenticates to Claude models served through AWS
// Bedrock. AWS SigV4 request signing happens at transport time outside
// this package; BedrockStrategy only supplies the bearer-token fast
// path and the headers SigV4 signing itself needs alongside it.
type BedrockStrategy struct {
	baseStrategy

	region           string
	smallModelRegion string
	baseURL          string
	skipAuth         bool
	sessionToken     string
	bearerToken      string
	inferenceProfile string
	disableCaching   bool
}

// NewBedrockStrategy builds a strategy for an explicit AWS region.
func NewBedrockStrategy(region string) *BedrockStrategy {
	return &BedrockStrategy{region: region}
}

// BedrockStrategyFromEnv builds a strategy from CLAUDE_CODE_USE_BEDROCK
// and its supporting AWS_* variables, returning ok=false when Bedrock
// is not requested.
func BedrockStrategyFromEnv() (*BedrockStrategy, bool) {
	if !envBool("CLAUDE_CODE_USE_BEDROCK") {
		return nil, false
	}

	smallModelRegion, _ := envOpt("ANTHROPIC_SMALL_FAST_MODEL_AWS_REGION")
	baseURL, _ := envOpt("ANTHROPIC_BEDROCK_BASE_URL")
	sessionToken, _ := envOpt("AWS_SESSION_TOKEN")
	bearerToken, _ := envOpt("AWS_BEARER_TOKEN_BEDROCK")
	inferenceProfile, _ := envOpt("AWS_BEDROCK_PROFILE_ARN")

	return &BedrockStrategy{
		region:           envWithFallbacksOr("us-east-1", "AWS_REGION", "AWS_DEFAULT_REGION"),
		smallModelRegion: smallModelRegion,
		baseURL:          baseURL,
		skipAuth:         envBool("CLAUDE_CODE_SKIP_BEDROCK_AUTH"),
		sessionToken:     sessionToken,
		bearerToken:      bearerToken,
		inferenceProfile: inferenceProfile,
		disableCaching:   envBool("DISABLE_PROMPT_CACHING"),
	}, true
}

func (s *BedrockStrategy) WithBaseURL(url string) *BedrockStrategy { s.baseURL = url; return s }

func (s *BedrockStrategy) WithSmallModelRegion(region string) *BedrockStrategy {
	s.smallModelRegion = region
	return s
}

func (s *BedrockStrategy) WithBearerToken(token string) *BedrockStrategy {
	s.bearerToken = token
	return s
}

func (s *BedrockStrategy) WithInferenceProfile(arn string) *BedrockStrategy {
	s.inferenceProfile = arn
	return s
}

func (s *BedrockStrategy) WithDisabledCaching() *BedrockStrategy { s.disableCaching = true; return s }

// Region returns the primary AWS region.
func (s *BedrockStrategy) Region() string { return s.region }

// SmallModelRegion returns the region for cross-region small-model
// inference, falling back to Region when unset.
func (s *BedrockStrategy) SmallModelRegion() string {
	if s.smallModelRegion != "" {
		return s.smallModelRegion
	}
	return s.region
}

// IsCachingDisabled reports whether prompt caching was explicitly disabled.
func (s *BedrockStrategy) IsCachingDisabled() bool { return s.disableCaching }

// BaseURL returns the Bedrock runtime endpoint.
func (s *BedrockStrategy) BaseURL() string {
	if s.baseURL != "" {
		return s.baseURL
	}
	return fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com", s.region)
}

// SmallModelBaseURL returns the endpoint for the small/fast model region.
func (s *BedrockStrategy) SmallModelBaseURL() string {
	return fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com", s.SmallModelRegion())
}

func (s *BedrockStrategy) Name() string { return "bedrock" }

func (s *BedrockStrategy) AuthHeader() (string, string) {
	if s.bearerToken != "" {
		return "Authorization", "Bearer " + s.bearerToken
	}
	// SigV4 signing happens in the transport layer; this placeholder
	// header tells it signing is still owed.
	return "x-bedrock-auth", "aws-sigv4"
}

func (s *BedrockStrategy) ExtraHeaders() map[string]string {
	headers := map[string]string{}
	if !s.skipAuth && s.sessionToken != "" {
		headers["x-amz-security-token"] = s.sessionToken
	}
	if s.inferenceProfile != "" {
		headers["x-bedrock-inference-profile"] = s.inferenceProfile
	}
	return headers
}
