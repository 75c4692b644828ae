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

import "context"

// Mode selects which of Auth's variants is active.
type Mode int

const (
	// ModeFromEnv loads an API key from ANTHROPIC_API_KEY. The default.
	ModeFromEnv Mode = iota
	// ModeAPIKey uses a fixed, caller-supplied API key.
	ModeAPIKey
	// ModeClaudeCLI uses credentials the Claude Code CLI already logged in.
	ModeClaudeCLI
	// ModeOAuth uses a fixed, caller-supplied OAuth access token.
	ModeOAuth
	// ModeResolved uses an already-resolved credential directly.
	ModeResolved
	// ModeBedrock authenticates through AWS Bedrock.
	ModeBedrock
	// ModeVertex authenticates through GCP Vertex AI.
	ModeVertex
	// ModeFoundry authenticates through Azure AI Foundry.
	ModeFoundry
)

// String returns a human-readable deployment name, used for span/metric
// labels rather than any on-the-wire purpose.
func (m Mode) String() string {
	switch m {
	case ModeBedrock:
		return "bedrock"
	case ModeVertex:
		return "vertex"
	case ModeFoundry:
		return "foundry"
	default:
		return "anthropic"
	}
}

// Auth is the top-level authentication configuration callers hand the
// runtime: how to obtain a Credential, deferred until Resolve actually
// needs one.
type Auth struct {
	mode Mode

	apiKey     string
	oauthToken string
	credential Credential

	bedrockRegion   string
	vertexProject   string
	vertexRegion    string
	foundryResource string
}

// APIKey authenticates directly with a fixed API key.
func APIKey(key string) Auth { return Auth{mode: ModeAPIKey, apiKey: key} }

// FromEnv loads ANTHROPIC_API_KEY at resolve time. This is Auth's zero value.
func FromEnv() Auth { return Auth{mode: ModeFromEnv} }

// ClaudeCLI uses credentials the Claude Code CLI has already stored.
func ClaudeCLI() Auth { return Auth{mode: ModeClaudeCLI} }

// OAuth authenticates with a fixed OAuth access token.
func OAuth(token string) Auth { return Auth{mode: ModeOAuth, oauthToken: token} }

// Resolved wraps an already-resolved credential directly, e.g. for tests.
func Resolved(credential Credential) Auth { return Auth{mode: ModeResolved, credential: credential} }

// Bedrock authenticates through AWS Bedrock in region.
func Bedrock(region string) Auth { return Auth{mode: ModeBedrock, bedrockRegion: region} }

// Vertex authenticates through GCP Vertex AI.
func Vertex(project, region string) Auth {
	return Auth{mode: ModeVertex, vertexProject: project, vertexRegion: region}
}

// Foundry authenticates through Azure AI Foundry.
func Foundry(resource string) Auth { return Auth{mode: ModeFoundry, foundryResource: resource} }

// Mode reports which variant is active.
func (a Auth) Mode() Mode { return a.mode }

// Resolve dispatches to the provider appropriate for this Auth's mode.
// Cloud-provider modes (Bedrock/Vertex/Foundry) resolve to the default,
// empty credential: those deployments authenticate through their own
// strategy (see Bedrock/Vertex/FoundryStrategyFromEnv), not through a
// Credential carried in the request body.
func (a Auth) Resolve(ctx context.Context) (Credential, error) {
	switch a.mode {
	case ModeAPIKey:
		return APIKeyCredential(a.apiKey), nil
	case ModeFromEnv:
		return NewEnvironmentProvider().Resolve(ctx)
	case ModeClaudeCLI:
		return NewCLIProvider().Resolve(ctx)
	case ModeOAuth:
		return OAuthCredentialFrom(a.oauthToken), nil
	case ModeResolved:
		return a.credential, nil
	case ModeBedrock, ModeVertex, ModeFoundry:
		return Default(), nil
	default:
		return NewEnvironmentProvider().Resolve(ctx)
	}
}

// IsCloudProvider reports whether this Auth targets a cloud deployment
// (Bedrock/Vertex/Foundry) rather than the direct Anthropic API.
func (a Auth) IsCloudProvider() bool {
	switch a.mode {
	case ModeBedrock, ModeVertex, ModeFoundry:
		return true
	default:
		return false
	}
}

// IsOAuth reports whether this Auth resolves to an OAuth credential.
func (a Auth) IsOAuth() bool {
	switch a.mode {
	case ModeOAuth, ModeClaudeCLI:
		return true
	case ModeResolved:
		return a.credential.IsOAuth()
	default:
		return false
	}
}

// SupportsServerTools reports whether Anthropic's server-side tools
// (WebSearch, WebFetch) are available: true for the direct API (API
// key or OAuth), false for every cloud provider.
func (a Auth) SupportsServerTools() bool { return !a.IsCloudProvider() }

// Strategy builds the Strategy that matches this Auth's mode, binding the
// already-resolved credential where the deployment needs one carried in
// the request itself (direct API key, OAuth) rather than authenticating
// out of band (Bedrock/Vertex SigV4 or ADC, Foundry's own key).
func (a Auth) Strategy(credential Credential) (Strategy, error) {
	switch a.mode {
	case ModeOAuth, ModeClaudeCLI:
		return NewOAuthStrategy(credential.OAuth), nil
	case ModeBedrock:
		strategy := NewBedrockStrategy(a.bedrockRegion)
		if credential.IsOAuth() {
			strategy = strategy.WithBearerToken(credential.OAuth.AccessToken)
		}
		return strategy, nil
	case ModeVertex:
		strategy := NewVertexStrategy(a.vertexProject, a.vertexRegion)
		if credential.IsOAuth() {
			strategy = strategy.WithAccessToken(credential.OAuth.AccessToken)
		}
		return strategy, nil
	case ModeFoundry:
		strategy := NewFoundryStrategy(a.foundryResource, "")
		if credential.IsOAuth() {
			strategy = strategy.WithAccessToken(credential.OAuth.AccessToken)
		} else {
			strategy = strategy.WithAPIKey(credential.APIKey)
		}
		return strategy, nil
	default:
		if credential.IsOAuth() {
			return NewOAuthStrategy(credential.OAuth), nil
		}
		return NewDirectStrategy(credential.APIKey), nil
	}
}
