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

package disclosure

import (
	"path/filepath"
	"strings"
)

// SkillDefinition is a named, invocable procedure: a short description
// for the model to decide whether it applies, a trigger pattern a user
// can type to invoke it explicitly (e.g. "/commit"), and a body loaded
// on demand through its ContentSource.
type SkillDefinition struct {
	BaseIndex
	Trigger string
}

func NewSkill(name, description, content string) SkillDefinition {
	return SkillDefinition{
		BaseIndex: BaseIndex{
			IndexName:        name,
			IndexDescription: description,
			IndexSourceType:  SourceUser,
			IndexSource:      InMemorySource(content),
		},
	}
}

func (s SkillDefinition) WithSourceType(st SourceType) SkillDefinition {
	s.IndexSourceType = st
	return s
}

func (s SkillDefinition) WithTrigger(trigger string) SkillDefinition {
	s.Trigger = trigger
	return s
}

// MatchesTrigger reports whether input begins with this skill's
// trigger pattern, the "/commit" convention a user types to invoke a
// skill explicitly rather than relying on the model to pick it.
func (s SkillDefinition) MatchesTrigger(input string) bool {
	if s.Trigger == "" {
		return false
	}
	return strings.HasPrefix(input, s.Trigger)
}

var _ Index = SkillDefinition{}

// SkillLoader parses a skill file: YAML frontmatter (name,
// description, trigger) followed by the skill's prompt body.
type SkillLoader struct{}

func NewSkillLoader() SkillLoader { return SkillLoader{} }

func (SkillLoader) ParseContent(content string, path string) (SkillDefinition, error) {
	doc, err := ParseFrontmatter(content)
	if err != nil {
		return SkillDefinition{}, err
	}

	name := frontmatterString(doc.Frontmatter, "name")
	if name == "" && path != "" {
		name = fileStem(path)
	}

	skill := SkillDefinition{
		BaseIndex: BaseIndex{
			IndexName:        name,
			IndexDescription: frontmatterString(doc.Frontmatter, "description"),
			IndexSourceType:  SourceTypeFromString(frontmatterString(doc.Frontmatter, "source")),
		},
		Trigger: frontmatterString(doc.Frontmatter, "trigger"),
	}

	if path != "" {
		skill.IndexSource = FileSource(path)
	} else {
		skill.IndexSource = InMemorySource(doc.Body)
	}

	return skill, nil
}

func (SkillLoader) FileFilter(path string) bool {
	return filepath.Ext(path) == ".md"
}

var _ DocumentLoader[SkillDefinition] = SkillLoader{}

// BuiltinSkills returns the skills shipped with the runtime.
func BuiltinSkills() []SkillDefinition {
	return []SkillDefinition{
		NewSkill("commit", "Create a git commit with a well-formatted message", commitSkillPrompt).
			WithSourceType(SourceBuiltin).
			WithTrigger("/commit"),
	}
}

const commitSkillPrompt = `Create a git commit for the currently staged changes.

Write a concise, imperative-mood summary line (under 72 characters)
describing what changed, followed by a blank line and, if useful, a
short body explaining why. Do not describe the diff line by line.`
