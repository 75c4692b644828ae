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
	"context"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// CredentialProvider resolves a Credential from one particular source
// (an environment variable, the Claude Code CLI's stored tokens, a
// fixed value, ...).
type CredentialProvider interface {
	// Name identifies the provider for logging and diagnostics.
	Name() string

	// Resolve fetches (or recomputes) the credential.
	Resolve(ctx context.Context) (Credential, error)

	// Refresh re-derives an expired credential. Providers that cannot
	// refresh return an error; callers should check SupportsRefresh first.
	Refresh(ctx context.Context) (Credential, error)

	// SupportsRefresh reports whether Refresh is meaningful for this provider.
	SupportsRefresh() bool
}

// baseProvider gives providers that never refresh a default Refresh
// implementation to embed.
type baseProvider struct{}

func (baseProvider) Refresh(context.Context) (Credential, error) {
	return Credential{}, &errs.AuthError{Provider: "base", Message: "refresh not supported"}
}

func (baseProvider) SupportsRefresh() bool { return false }
