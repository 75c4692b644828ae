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

// Package auth resolves the credential the runtime presents to a model
// provider, independently of which deployment (direct API, Bedrock,
// Vertex, Foundry) ultimately receives it.
package auth

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// refreshWindow is how far ahead of expiry an OAuth credential is
// considered due for refresh.
const refreshWindow = 5 * time.Minute

// OAuthCredential is a Claude Code CLI-issued OAuth token.
type OAuthCredential struct {
	AccessToken      string
	RefreshToken     string
	ExpiresAt        *int64
	Scopes           []string
	SubscriptionType string
}

// ExpiresAtTime returns the credential's expiry as a time.Time, if known.
func (o OAuthCredential) ExpiresAtTime() (time.Time, bool) {
	if o.ExpiresAt == nil {
		return time.Time{}, false
	}
	return time.Unix(*o.ExpiresAt, 0), true
}

// IsExpired reports whether the access token has passed its expiry.
func (o OAuthCredential) IsExpired() bool {
	exp, ok := o.ExpiresAtTime()
	return ok && !time.Now().Before(exp)
}

// NeedsRefresh reports whether the token is within refreshWindow of expiry.
func (o OAuthCredential) NeedsRefresh() bool {
	exp, ok := o.ExpiresAtTime()
	return ok && !time.Now().Before(exp.Add(-refreshWindow))
}

func (o OAuthCredential) String() string {
	return fmt.Sprintf("OAuthCredential{access_token: [redacted], expires_at: %v, scopes: %v}", o.ExpiresAt, o.Scopes)
}

// Kind identifies which variant of Credential is held.
type Kind int

const (
	// KindAPIKey is a plain API key.
	KindAPIKey Kind = iota
	// KindOAuth is a Claude Code CLI OAuth token.
	KindOAuth
)

// Credential is the resolved, provider-agnostic authentication material
// attached to an outbound request. Exactly one of APIKey or OAuth is
// meaningful, selected by Kind.
type Credential struct {
	Kind   Kind
	APIKey string
	OAuth  OAuthCredential
}

// APIKeyCredential builds an API-key credential.
func APIKeyCredential(key string) Credential {
	return Credential{Kind: KindAPIKey, APIKey: key}
}

// OAuthCredentialFrom builds an OAuth credential from a bare access token,
// with no refresh token, expiry, or scopes attached.
func OAuthCredentialFrom(accessToken string) Credential {
	return Credential{Kind: KindOAuth, OAuth: OAuthCredential{AccessToken: accessToken}}
}

// Default is an empty API-key credential, the placeholder used by cloud
// providers (Bedrock/Vertex/Foundry) that authenticate out of band.
func Default() Credential { return Credential{Kind: KindAPIKey} }

// IsDefault reports whether this is the empty placeholder credential.
func (c Credential) IsDefault() bool {
	switch c.Kind {
	case KindOAuth:
		return c.OAuth.AccessToken == ""
	default:
		return c.APIKey == ""
	}
}

// IsExpired reports whether an OAuth credential has expired; API keys
// never expire.
func (c Credential) IsExpired() bool {
	return c.Kind == KindOAuth && c.OAuth.IsExpired()
}

// NeedsRefresh reports whether an OAuth credential is due for refresh.
func (c Credential) NeedsRefresh() bool {
	return c.Kind == KindOAuth && c.OAuth.NeedsRefresh()
}

// TypeName returns a short, stable name for the credential kind, used in
// logging and diagnostics.
func (c Credential) TypeName() string {
	switch c.Kind {
	case KindOAuth:
		return "oauth"
	default:
		return "api_key"
	}
}

// IsOAuth reports whether this is an OAuth credential.
func (c Credential) IsOAuth() bool { return c.Kind == KindOAuth }

// IsAPIKey reports whether this is an API-key credential.
func (c Credential) IsAPIKey() bool { return c.Kind == KindAPIKey }

func (c Credential) String() string {
	if c.Kind == KindOAuth {
		return c.OAuth.String()
	}
	return "Credential{ApiKey: [redacted]}"
}

// expiryFromJWT extracts the "exp" claim from an unverified access token,
// for OAuth credentials whose issuer embeds expiry in the token itself
// rather than alongside it in storage. The signature is never checked
// here; resolving trust in the token is the provider's job, not ours.
func expiryFromJWT(accessToken string) (int64, bool) {
	tok, err := jwt.ParseInsecure([]byte(accessToken))
	if err != nil {
		return 0, false
	}
	exp := tok.Expiration()
	if exp.IsZero() {
		return 0, false
	}
	return exp.Unix(), true
}
