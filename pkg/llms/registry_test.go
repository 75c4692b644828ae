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

package llms_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/llms"
)

func TestRegistry_ResolveByAlias(t *testing.T) {
	r := llms.NewBuiltinRegistry()

	for _, alias := range []string{"sonnet", "haiku", "opus"} {
		spec, ok := r.Resolve(context.Background(), alias)
		require.True(t, ok, alias)
		require.NotEmpty(t, spec.ID)
	}
}

func TestRegistry_ResolveByExactID(t *testing.T) {
	r := llms.NewBuiltinRegistry()
	spec, ok := r.Resolve(context.Background(), "claude-sonnet-4-5-20250929")
	require.True(t, ok)
	require.Equal(t, llms.FamilySonnet, spec.Family)
}

func TestRegistry_ResolveBySubstringFallback(t *testing.T) {
	r := llms.NewBuiltinRegistry()
	spec, ok := r.Resolve(context.Background(), "claude-3-opus-legacy")
	require.True(t, ok)
	require.Equal(t, llms.FamilyOpus, spec.Family)
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := llms.NewBuiltinRegistry()
	_, ok := r.Resolve(context.Background(), "gpt-4")
	require.False(t, ok)
}

func TestRegistry_DefaultRoles(t *testing.T) {
	r := llms.NewBuiltinRegistry()

	primary, ok := r.DefaultForRole(llms.RolePrimary)
	require.True(t, ok)
	require.Equal(t, llms.FamilySonnet, primary.Family)

	small, ok := r.DefaultForRole(llms.RoleSmall)
	require.True(t, ok)
	require.Equal(t, llms.FamilyHaiku, small.Family)

	reasoning, ok := r.DefaultForRole(llms.RoleReasoning)
	require.True(t, ok)
	require.Equal(t, llms.FamilyOpus, reasoning.Family)
}

func TestRegistry_ForProvider(t *testing.T) {
	r := llms.NewBuiltinRegistry()
	spec, ok := r.ForProvider(llms.ProviderBedrock, "anthropic.claude-haiku-4-5-20251001-v1:0")
	require.True(t, ok)
	require.Equal(t, "claude-haiku-4-5-20251001", spec.ID)
}

func TestRegistry_DefaultRegistrySingleton(t *testing.T) {
	a := llms.DefaultRegistry()
	b := llms.DefaultRegistry()
	require.Same(t, a, b)
}

func TestCapabilities_EffectiveContext(t *testing.T) {
	caps := llms.Capabilities{ContextWindow: 200_000, ExtendedContextWindow: 1_000_000}

	require.Equal(t, uint64(200_000), caps.EffectiveContext(false))
	require.Equal(t, uint64(1_000_000), caps.EffectiveContext(true))
	require.True(t, caps.SupportsExtendedContext())

	noExtended := llms.Capabilities{ContextWindow: 200_000}
	require.Equal(t, uint64(200_000), noExtended.EffectiveContext(true))
	require.False(t, noExtended.SupportsExtendedContext())
}
