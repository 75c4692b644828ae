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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/disclosure"
)

func TestSkill_TriggerLookup(t *testing.T) {
	skill := disclosure.NewSkill("commit", "Commit", "content").WithTrigger("/commit")

	require.True(t, skill.MatchesTrigger("/commit please"))
	require.False(t, skill.MatchesTrigger("something else"))
}

func TestSkillLoader_ParseInline(t *testing.T) {
	content := "---\nname: inline-skill\ndescription: An inline skill\n---\n\nSkill content here.\n"

	skill, err := disclosure.NewSkillLoader().ParseContent(content, "")
	require.NoError(t, err)
	require.Equal(t, "inline-skill", skill.Name())
	require.Equal(t, "An inline skill", skill.Description())
}

func TestBuiltinSkills_IncludesCommit(t *testing.T) {
	skills := disclosure.BuiltinSkills()
	require.Len(t, skills, 1)
	require.Equal(t, "commit", skills[0].Name())
	require.Equal(t, disclosure.SourceBuiltin, skills[0].SourceType())
}

func TestToSummaryLine(t *testing.T) {
	skill := disclosure.NewSkill("commit", "Create a commit", "")
	require.Equal(t, "- commit: Create a commit", disclosure.ToSummaryLine(skill))
}
