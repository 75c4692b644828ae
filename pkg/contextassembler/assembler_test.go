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

package contextassembler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/contextassembler"
	"github.com/kaidrach/agentrun/pkg/disclosure"
)

func TestAssembler_Build_ComposesSections(t *testing.T) {
	memory := contextassembler.NewInMemoryProvider().WithClaudeMD("Base instructions")

	skills := disclosure.NewRegistry[disclosure.SkillDefinition]()
	skills.Register(disclosure.NewSkill("commit", "Create a commit", "").WithTrigger("/commit"))

	subagents := disclosure.NewRegistry[disclosure.SubagentDefinition]()
	subagents.Register(disclosure.NewSubagent("explore", "Explore the codebase", ""))

	asm := contextassembler.NewAssembler(memory).WithSkills(skills).WithSubagents(subagents)

	prompt, err := asm.Build(context.Background())
	require.NoError(t, err)
	require.Contains(t, prompt, "Base instructions")
	require.Contains(t, prompt, "commit: Create a commit")
	require.Contains(t, prompt, "explore: Explore the codebase")
}

func TestAssembler_Build_DynamicAndConditionalBlocks(t *testing.T) {
	asm := contextassembler.NewAssembler(nil).
		WithDynamicBlock(func(ctx context.Context) (string, error) { return "dynamic text", nil }).
		WithConditionalBlock(func() bool { return true }, "always shown").
		WithConditionalBlock(func() bool { return false }, "never shown")

	prompt, err := asm.Build(context.Background())
	require.NoError(t, err)
	require.Contains(t, prompt, "dynamic text")
	require.Contains(t, prompt, "always shown")
	require.NotContains(t, prompt, "never shown")
}

func TestMatchCommand_ExactLeadingSlash(t *testing.T) {
	skills := disclosure.NewRegistry[disclosure.SkillDefinition]()
	skills.Register(disclosure.NewSkill("commit", "Create a commit", "body"))

	skill, args, ok := contextassembler.MatchCommand(skills, "/commit fix the bug")
	require.True(t, ok)
	require.Equal(t, "commit", skill.Name())
	require.Equal(t, "fix the bug", args)
}

func TestMatchCommand_NoSlashPrefix(t *testing.T) {
	skills := disclosure.NewRegistry[disclosure.SkillDefinition]()
	skills.Register(disclosure.NewSkill("commit", "Create a commit", "body"))

	_, _, ok := contextassembler.MatchCommand(skills, "commit please")
	require.False(t, ok)
}

func TestMatchByTrigger(t *testing.T) {
	skills := disclosure.NewRegistry[disclosure.SkillDefinition]()
	skills.Register(disclosure.NewSkill("commit", "Create a commit", "body").WithTrigger("/commit"))

	skill, ok := contextassembler.MatchByTrigger(skills, "/commit please")
	require.True(t, ok)
	require.Equal(t, "commit", skill.Name())

	_, ok = contextassembler.MatchByTrigger(skills, "something else")
	require.False(t, ok)
}
