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
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/auth"
)

func TestEnvironmentProvider_MissingVar(t *testing.T) {
	t.Setenv("TEST_API_KEY_NOT_SET_XYZ", "")
	p := auth.EnvironmentProviderFromVar("TEST_API_KEY_NOT_SET_XYZ")
	_, err := p.Resolve(context.Background())
	require.Error(t, err)
}

func TestEnvironmentProvider_Set(t *testing.T) {
	t.Setenv("TEST_API_KEY_SET_XYZ", "test-key")
	p := auth.EnvironmentProviderFromVar("TEST_API_KEY_SET_XYZ")
	cred, err := p.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "test-key", cred.APIKey)
}

func TestExplicitProvider(t *testing.T) {
	p := auth.ExplicitAPIKey("first")
	cred, err := p.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "first", cred.APIKey)
}

func TestChainProvider_FirstSuccess(t *testing.T) {
	chain := auth.NewChainProvider().With(auth.ExplicitAPIKey("first")).With(auth.ExplicitAPIKey("second"))
	cred, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "first", cred.APIKey)
}

func TestChainProvider_Fallback(t *testing.T) {
	t.Setenv("NONEXISTENT_VAR_XYZ", "")
	chain := auth.NewChainProvider().
		With(auth.EnvironmentProviderFromVar("NONEXISTENT_VAR_XYZ")).
		With(auth.ExplicitAPIKey("fallback"))

	cred, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fallback", cred.APIKey)
}

func TestChainProvider_AllFail(t *testing.T) {
	t.Setenv("NONEXISTENT_VAR_1", "")
	t.Setenv("NONEXISTENT_VAR_2", "")
	chain := auth.NewChainProvider().
		With(auth.EnvironmentProviderFromVar("NONEXISTENT_VAR_1")).
		With(auth.EnvironmentProviderFromVar("NONEXISTENT_VAR_2"))

	_, err := chain.Resolve(context.Background())
	require.Error(t, err)
}

type countingProvider struct {
	calls atomic.Int32
}

func (p *countingProvider) Name() string { return "counting" }
func (p *countingProvider) Resolve(context.Context) (auth.Credential, error) {
	p.calls.Add(1)
	return auth.APIKeyCredential("test-key"), nil
}
func (p *countingProvider) Refresh(ctx context.Context) (auth.Credential, error) {
	return p.Resolve(ctx)
}
func (p *countingProvider) SupportsRefresh() bool { return false }

func TestCachedProvider_CachesWithinTTL(t *testing.T) {
	inner := &countingProvider{}
	cached := auth.NewCachedProvider(inner)

	_, err := cached.Resolve(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, inner.calls.Load())

	_, err = cached.Resolve(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, inner.calls.Load())
}

func TestCachedProvider_Invalidate(t *testing.T) {
	inner := &countingProvider{}
	cached := auth.NewCachedProvider(inner)

	_, _ = cached.Resolve(context.Background())
	cached.Invalidate()
	_, _ = cached.Resolve(context.Background())

	require.EqualValues(t, 2, inner.calls.Load())
}
