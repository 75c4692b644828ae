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

import "path/filepath"

// SubagentDefinition describes a nested agent a Task tool can dispatch
// a turn to: a short description the dispatching model reads to
// decide whether this subagent fits the task, and a system prompt
// loaded on demand.
type SubagentDefinition struct {
	BaseIndex
	// ToolAccess, when non-empty, restricts the subagent to this tool
	// name allowlist instead of inheriting the parent's access.
	ToolAccess []string
}

func NewSubagent(name, description, prompt string) SubagentDefinition {
	return SubagentDefinition{
		BaseIndex: BaseIndex{
			IndexName:        name,
			IndexDescription: description,
			IndexSourceType:  SourceUser,
			IndexSource:      InMemorySource(prompt),
		},
	}
}

func (s SubagentDefinition) WithSourceType(st SourceType) SubagentDefinition {
	s.IndexSourceType = st
	return s
}

func (s SubagentDefinition) WithToolAccess(tools []string) SubagentDefinition {
	s.ToolAccess = tools
	return s
}

var _ Index = SubagentDefinition{}

type SubagentLoader struct{}

func NewSubagentLoader() SubagentLoader { return SubagentLoader{} }

func (SubagentLoader) ParseContent(content string, path string) (SubagentDefinition, error) {
	doc, err := ParseFrontmatter(content)
	if err != nil {
		return SubagentDefinition{}, err
	}

	name := frontmatterString(doc.Frontmatter, "name")
	if name == "" && path != "" {
		name = fileStem(path)
	}

	sub := SubagentDefinition{
		BaseIndex: BaseIndex{
			IndexName:        name,
			IndexDescription: frontmatterString(doc.Frontmatter, "description"),
			IndexSourceType:  SourceTypeFromString(frontmatterString(doc.Frontmatter, "source")),
		},
		ToolAccess: frontmatterStringSlice(doc.Frontmatter, "tools"),
	}

	if path != "" {
		sub.IndexSource = FileSource(path)
	} else {
		sub.IndexSource = InMemorySource(doc.Body)
	}

	return sub, nil
}

func (SubagentLoader) FileFilter(path string) bool {
	return filepath.Ext(path) == ".md"
}

var _ DocumentLoader[SubagentDefinition] = SubagentLoader{}

// BuiltinSubagents returns the subagents shipped with the runtime:
// explore (read-only investigation), plan (design without editing),
// and general (unrestricted, the default delegate).
func BuiltinSubagents() []SubagentDefinition {
	return []SubagentDefinition{
		NewSubagent("explore", "Investigates the codebase read-only and reports findings",
			"You explore the codebase to answer a question. Do not edit any files; read, search, and report back a concise summary of what you found.").
			WithSourceType(SourceBuiltin),
		NewSubagent("plan", "Designs an approach without making any edits",
			"You design an implementation plan for the given task. Do not edit any files; produce a concrete, ordered plan a future turn can execute.").
			WithSourceType(SourceBuiltin),
		NewSubagent("general", "General-purpose subagent with full tool access",
			"You carry out the given task using whatever tools are available, reporting back a concise summary of what you did and found.").
			WithSourceType(SourceBuiltin),
	}
}
