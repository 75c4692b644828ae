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

// DefaultFoundryAPIVersion is the Azure AI Foundry API version used
// when none is configured.
const DefaultFoundryAPIVersion = "2024-06-01"

// FoundryStrategy authenticates to Claude models deployed on Microsoft
// Azure AI Foundry.
type FoundryStrategy struct {
	baseStrategy

	resourceName   string
	deploymentName string
	apiVersion     string
	baseURL        string
	skipAuth       bool
	apiKey         string
	accessToken    string
}

// NewFoundryStrategy builds a strategy for an explicit resource/deployment pair.
func NewFoundryStrategy(resourceName, deploymentName string) *FoundryStrategy {
	return &FoundryStrategy{
		resourceName:   resourceName,
		deploymentName: deploymentName,
		apiVersion:     DefaultFoundryAPIVersion,
	}
}

// FoundryStrategyFromEnv builds a strategy from CLAUDE_CODE_USE_FOUNDRY
// and its supporting AZURE_* variables, returning ok=false when Foundry
// is not requested or no resource name is configured.
func FoundryStrategyFromEnv() (*FoundryStrategy, bool) {
	if !envBool("CLAUDE_CODE_USE_FOUNDRY") {
		return nil, false
	}

	resourceName, ok := envWithFallbacks("AZURE_RESOURCE_NAME", "ANTHROPIC_FOUNDRY_RESOURCE")
	if !ok {
		return nil, false
	}

	deploymentName := envWithFallbacksOr("claude-sonnet", "AZURE_DEPLOYMENT_NAME", "ANTHROPIC_FOUNDRY_DEPLOYMENT")
	apiVersion := envWithFallbacksOr(DefaultFoundryAPIVersion, "AZURE_API_VERSION")
	baseURL, _ := envOpt("ANTHROPIC_FOUNDRY_BASE_URL")
	apiKey, _ := envOpt("AZURE_API_KEY")
	accessToken, _ := envOpt("AZURE_ACCESS_TOKEN")

	return &FoundryStrategy{
		resourceName:   resourceName,
		deploymentName: deploymentName,
		apiVersion:     apiVersion,
		baseURL:        baseURL,
		skipAuth:       envBool("CLAUDE_CODE_SKIP_FOUNDRY_AUTH"),
		apiKey:         apiKey,
		accessToken:    accessToken,
	}, true
}

func (s *FoundryStrategy) WithAPIVersion(v string) *FoundryStrategy { s.apiVersion = v; return s }

func (s *FoundryStrategy) WithBaseURL(url string) *FoundryStrategy { s.baseURL = url; return s }

func (s *FoundryStrategy) WithAPIKey(key string) *FoundryStrategy { s.apiKey = key; return s }

func (s *FoundryStrategy) WithAccessToken(token string) *FoundryStrategy {
	s.accessToken = token
	return s
}

// ResourceName returns the configured Azure resource name.
func (s *FoundryStrategy) ResourceName() string { return s.resourceName }

// DeploymentName returns the configured deployment name.
func (s *FoundryStrategy) DeploymentName() string { return s.deploymentName }

// BaseURL returns the Foundry deployment endpoint.
func (s *FoundryStrategy) BaseURL() string {
	if s.baseURL != "" {
		return s.baseURL
	}
	return fmt.Sprintf("https://%s.openai.azure.com/openai/deployments/%s", s.resourceName, s.deploymentName)
}

func (s *FoundryStrategy) Name() string { return "foundry" }

func (s *FoundryStrategy) AuthHeader() (string, string) {
	if s.accessToken != "" {
		return "Authorization", "Bearer " + s.accessToken
	}
	if s.apiKey != "" {
		return "api-key", s.apiKey
	}
	return "api-key", "<pending>"
}

func (s *FoundryStrategy) URLQuery() (string, bool) {
	return "api-version=" + s.apiVersion, true
}
