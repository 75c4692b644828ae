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

package disclosure_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/disclosure"
)

func TestRegistry_BasicOperations(t *testing.T) {
	r := disclosure.NewRegistry[disclosure.SkillDefinition]()
	r.Register(disclosure.NewSkill("item1", "First", ""))
	r.Register(disclosure.NewSkill("item2", "Second", ""))

	require.Equal(t, 2, r.Len())
	_, ok := r.Get("item1")
	require.True(t, ok)
	_, ok = r.Get("missing")
	require.False(t, ok)
}

func TestRegistry_PriorityOverride(t *testing.T) {
	r := disclosure.NewRegistry[disclosure.SkillDefinition]()
	r.Register(disclosure.NewSkill("commit", "Builtin", "").WithSourceType(disclosure.SourceBuiltin))
	r.Register(disclosure.NewSkill("commit", "Project", "").WithSourceType(disclosure.SourceProject))

	got, ok := r.Get("commit")
	require.True(t, ok)
	require.Equal(t, "Project", got.Description())

	// A lower-priority registration after a higher-priority one must not win.
	r.Register(disclosure.NewSkill("commit", "User", "").WithSourceType(disclosure.SourceUser))
	got, _ = r.Get("commit")
	require.Equal(t, "Project", got.Description())
}

func TestRegistry_ByType(t *testing.T) {
	r := disclosure.NewRegistry[disclosure.SkillDefinition]()
	r.Register(disclosure.NewSkill("user1", "U", "").WithSourceType(disclosure.SourceUser))
	r.Register(disclosure.NewSkill("builtin1", "B1", "").WithSourceType(disclosure.SourceBuiltin))
	r.Register(disclosure.NewSkill("builtin2", "B2", "").WithSourceType(disclosure.SourceBuiltin))

	require.Len(t, r.ByType(disclosure.SourceUser), 1)
	require.Len(t, r.ByType(disclosure.SourceBuiltin), 2)
}

func TestRegistry_BuildSummary(t *testing.T) {
	r := disclosure.NewRegistry[disclosure.SkillDefinition]()
	r.Register(disclosure.NewSkill("b-skill", "Second", ""))
	r.Register(disclosure.NewSkill("a-skill", "First", ""))

	summary := r.BuildSummary()
	require.Equal(t, "- a-skill: First\n- b-skill: Second", summary)
}

func TestRegistry_BuildPrioritySummary(t *testing.T) {
	r := disclosure.NewRegistry[disclosure.SkillDefinition]()
	r.Register(disclosure.NewSkill("low", "Low", "").WithSourceType(disclosure.SourceBuiltin))
	r.Register(disclosure.NewSkill("high", "High", "").WithSourceType(disclosure.SourceProject))

	summary := r.BuildPrioritySummary()
	require.Equal(t, "- high: High\n- low: Low", summary)
}

func TestRegistry_LoadContentCaches(t *testing.T) {
	r := disclosure.NewRegistry[disclosure.SkillDefinition]()
	r.Register(disclosure.NewSkill("test", "Test", "body content"))

	content, err := r.LoadContent(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, "body content", content)

	r.InvalidateCache("test")
	content, err = r.LoadContent(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, "body content", content)
}

func TestRegistry_LoadContentMissing(t *testing.T) {
	r := disclosure.NewRegistry[disclosure.SkillDefinition]()
	_, err := r.LoadContent(context.Background(), "nope")
	require.Error(t, err)
}

func TestRegistry_Remove(t *testing.T) {
	r := disclosure.NewRegistry[disclosure.SkillDefinition]()
	r.Register(disclosure.NewSkill("test", "Test", ""))

	_, ok := r.Remove("test")
	require.True(t, ok)
	require.True(t, r.IsEmpty())
}
