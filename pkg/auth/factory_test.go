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

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/auth"
)

func TestAuth_DefaultIsFromEnv(t *testing.T) {
	var a auth.Auth
	require.Equal(t, auth.ModeFromEnv, a.Mode())
}

func TestAuth_APIKeyResolve(t *testing.T) {
	a := auth.APIKey("sk-test")
	cred, err := a.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sk-test", cred.APIKey)
}

func TestAuth_OAuthResolve(t *testing.T) {
	a := auth.OAuth("sk-ant-oat01-test")
	cred, err := a.Resolve(context.Background())
	require.NoError(t, err)
	require.True(t, cred.IsOAuth())
}

func TestAuth_ResolvedPassthrough(t *testing.T) {
	cred := auth.APIKeyCredential("test-key")
	a := auth.Resolved(cred)
	resolved, err := a.Resolve(context.Background())
	require.NoError(t, err)
	require.False(t, resolved.IsDefault())
}

func TestAuth_CloudProviderClassification(t *testing.T) {
	require.True(t, auth.Bedrock("us-east-1").IsCloudProvider())
	require.True(t, auth.Vertex("p", "r").IsCloudProvider())
	require.True(t, auth.Foundry("r").IsCloudProvider())
	require.False(t, auth.APIKey("k").IsCloudProvider())
}

func TestAuth_SupportsServerTools(t *testing.T) {
	require.True(t, auth.APIKey("k").SupportsServerTools())
	require.False(t, auth.Bedrock("us-east-1").SupportsServerTools())
}

func TestAuth_CloudProviderResolvesToDefaultCredential(t *testing.T) {
	cred, err := auth.Bedrock("us-east-1").Resolve(context.Background())
	require.NoError(t, err)
	require.True(t, cred.IsDefault())
}
