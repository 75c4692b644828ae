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

// ExplicitProvider always resolves to a fixed, caller-supplied credential.
type ExplicitProvider struct {
	baseProvider
	credential Credential
}

// NewExplicitProvider wraps an already-resolved credential.
func NewExplicitProvider(c Credential) *ExplicitProvider {
	return &ExplicitProvider{credential: c}
}

// ExplicitAPIKey wraps a fixed API key.
func ExplicitAPIKey(key string) *ExplicitProvider {
	return NewExplicitProvider(APIKeyCredential(key))
}

// ExplicitOAuth wraps a fixed OAuth access token.
func ExplicitOAuth(token string) *ExplicitProvider {
	return NewExplicitProvider(OAuthCredentialFrom(token))
}

func (p *ExplicitProvider) Name() string { return "explicit" }

func (p *ExplicitProvider) Resolve(context.Context) (Credential, error) {
	return p.credential, nil
}
