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

package contextassembler

import (
	"context"
	"strings"

	"github.com/kaidrach/agentrun/pkg/disclosure"
)

// DynamicBlock is a thunk evaluated at system-prompt build time, e.g.
// to splice in the current date or a git status summary. A block
// returning an empty string contributes nothing.
type DynamicBlock func(ctx context.Context) (string, error)

// ConditionalBlock is included in the assembled prompt only if
// Predicate returns true at build time.
type ConditionalBlock struct {
	Predicate func() bool
	Content   string
}

// Assembler builds the system-prompt content an agent turn sends to
// the model, from a memory provider, the skill and subagent index
// registries (summary lines only — full content stays behind
// progressive disclosure), and author-supplied dynamic/conditional
// blocks.
type Assembler struct {
	memory      MemoryProvider
	skills      *disclosure.Registry[disclosure.SkillDefinition]
	subagents   *disclosure.Registry[disclosure.SubagentDefinition]
	dynamic     []DynamicBlock
	conditional []ConditionalBlock
	workingDir  string
}

func NewAssembler(memory MemoryProvider) *Assembler {
	return &Assembler{memory: memory}
}

func (a *Assembler) WithWorkingDir(dir string) *Assembler {
	a.workingDir = dir
	return a
}

func (a *Assembler) WithSkills(registry *disclosure.Registry[disclosure.SkillDefinition]) *Assembler {
	a.skills = registry
	return a
}

func (a *Assembler) WithSubagents(registry *disclosure.Registry[disclosure.SubagentDefinition]) *Assembler {
	a.subagents = registry
	return a
}

func (a *Assembler) WithDynamicBlock(block DynamicBlock) *Assembler {
	a.dynamic = append(a.dynamic, block)
	return a
}

func (a *Assembler) WithConditionalBlock(predicate func() bool, content string) *Assembler {
	a.conditional = append(a.conditional, ConditionalBlock{Predicate: predicate, Content: content})
	return a
}

// Build assembles the final system prompt: memory content, skill and
// subagent summaries, dynamic blocks (in registration order),
// conditional blocks whose predicate holds, then resolves any
// "@path" file references and “ !`cmd` “ backtick executions the
// authored content contains.
func (a *Assembler) Build(ctx context.Context) (string, error) {
	var sections []string

	if a.memory != nil {
		content, err := a.memory.Load(ctx)
		if err != nil {
			return "", err
		}
		if combined := content.CombinedClaudeMD(); combined != "" {
			sections = append(sections, combined)
		}
	}

	if a.skills != nil && !a.skills.IsEmpty() {
		sections = append(sections, "Available skills:\n"+a.skills.BuildSummary())
	}

	if a.subagents != nil && !a.subagents.IsEmpty() {
		sections = append(sections, "Available subagents:\n"+a.subagents.BuildSummary())
	}

	for _, block := range a.dynamic {
		text, err := block(ctx)
		if err != nil {
			return "", err
		}
		if text != "" {
			sections = append(sections, text)
		}
	}

	for _, cond := range a.conditional {
		if cond.Predicate() {
			sections = append(sections, cond.Content)
		}
	}

	prompt := strings.Join(sections, "\n\n")
	prompt = disclosure.ProcessFileReferences(prompt, a.workingDir)
	prompt = disclosure.ProcessBashBackticks(ctx, prompt, a.workingDir)
	return prompt, nil
}

// MatchCommand surfaces the skill whose name matches an exact leading
// "/<name>" in input, returning the remainder of input as args.
func MatchCommand(registry *disclosure.Registry[disclosure.SkillDefinition], input string) (disclosure.SkillDefinition, string, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return disclosure.SkillDefinition{}, "", false
	}

	rest := trimmed[1:]
	name, args, _ := strings.Cut(rest, " ")
	skill, ok := registry.Get(name)
	if !ok {
		return disclosure.SkillDefinition{}, "", false
	}
	return skill, strings.TrimSpace(args), true
}

// MatchByTrigger returns the first registered skill whose trigger
// prefix-matches input, in registration order.
func MatchByTrigger(registry *disclosure.Registry[disclosure.SkillDefinition], input string) (disclosure.SkillDefinition, bool) {
	for _, skill := range registry.All() {
		if skill.MatchesTrigger(input) {
			return skill, true
		}
	}
	return disclosure.SkillDefinition{}, false
}
