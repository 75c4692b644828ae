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

// VertexStrategy authenticates to Claude models served through Google
// Cloud Vertex AI. Vertex uses a short-lived Google access token
// (minted by Application Default Credentials, or supplied directly by
// the caller); this package only carries that bearer token, it never
// runs the ADC token exchange itself.
type VertexStrategy struct {
	baseStrategy

	project     string
	region      string
	baseURL     string
	skipAuth    bool
	accessToken string
}

// NewVertexStrategy builds a strategy for an explicit GCP project/region.
func NewVertexStrategy(project, region string) *VertexStrategy {
	return &VertexStrategy{project: project, region: region}
}

// VertexStrategyFromEnv builds a strategy from CLAUDE_CODE_USE_VERTEX
// and its supporting variables, returning ok=false when Vertex is not
// requested or no project is configured.
func VertexStrategyFromEnv() (*VertexStrategy, bool) {
	if !envBool("CLAUDE_CODE_USE_VERTEX") {
		return nil, false
	}

	project, ok := envWithFallbacks("ANTHROPIC_VERTEX_PROJECT_ID", "GOOGLE_CLOUD_PROJECT")
	if !ok {
		return nil, false
	}

	region := envWithFallbacksOr("us-east5", "CLOUD_ML_REGION", "ANTHROPIC_VERTEX_REGION")
	baseURL, _ := envOpt("ANTHROPIC_VERTEX_BASE_URL")
	accessToken, _ := envOpt("GOOGLE_ACCESS_TOKEN")

	return &VertexStrategy{
		project:     project,
		region:      region,
		baseURL:     baseURL,
		skipAuth:    envBool("CLAUDE_CODE_SKIP_VERTEX_AUTH"),
		accessToken: accessToken,
	}, true
}

func (s *VertexStrategy) WithBaseURL(url string) *VertexStrategy { s.baseURL = url; return s }

func (s *VertexStrategy) WithAccessToken(token string) *VertexStrategy {
	s.accessToken = token
	return s
}

// Project returns the configured GCP project ID.
func (s *VertexStrategy) Project() string { return s.project }

// Region returns the configured GCP region.
func (s *VertexStrategy) Region() string { return s.region }

// BaseURL returns the Vertex AI publisher-model endpoint.
func (s *VertexStrategy) BaseURL() string {
	if s.baseURL != "" {
		return s.baseURL
	}
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/anthropic/models",
		s.region, s.project, s.region)
}

func (s *VertexStrategy) Name() string { return "vertex" }

func (s *VertexStrategy) AuthHeader() (string, string) {
	if s.skipAuth || s.accessToken == "" {
		return "x-vertex-auth", "google-adc"
	}
	return "Authorization", "Bearer " + s.accessToken
}
