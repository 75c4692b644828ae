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
	"context"
	"os"
	"path/filepath"
)

// claudeDir is the project/user configuration directory every
// disclosure type is authored under (".claude/skills", ".claude/rules",
// ".claude/subagents", ".claude/output-styles").
const claudeDir = ".claude"

// Manager owns the four progressive-disclosure registries (skills,
// rules, subagents, output styles) and loads them from the built-ins
// plus the project and user ".claude" directories, project entries
// overriding user entries overriding built-ins on a name collision.
type Manager struct {
	Skills       *Registry[SkillDefinition]
	Rules        *Registry[RuleDefinition]
	Subagents    *Registry[SubagentDefinition]
	OutputStyles *Registry[OutputStyle]
}

func NewManager() *Manager {
	return &Manager{
		Skills:       NewRegistry[SkillDefinition](),
		Rules:        NewRegistry[RuleDefinition](),
		Subagents:    NewRegistry[SubagentDefinition](),
		OutputStyles: NewRegistry[OutputStyle](),
	}
}

// LoadFromDirectories populates every registry from built-ins plus the
// project directory's and the current user's ".claude" trees.
// workingDir may be empty, in which case no project-level directory is
// consulted.
func (m *Manager) LoadFromDirectories(ctx context.Context, workingDir string) error {
	home, _ := os.UserHomeDir()

	skills, err := loadChain(ctx,
		NewInMemoryProvider[SkillDefinition]().WithItems(BuiltinSkills()).WithPriority(0).WithSourceType(SourceBuiltin),
		projectFileProvider[SkillDefinition](NewSkillLoader(), workingDir, "skills"),
		userFileProvider[SkillDefinition](NewSkillLoader(), home, "skills"),
	)
	if err != nil {
		return err
	}
	m.Skills.RegisterAll(skills)

	rules, err := loadChain(ctx,
		NewInMemoryProvider[RuleDefinition]().WithPriority(0).WithSourceType(SourceBuiltin),
		projectFileProvider[RuleDefinition](NewRuleLoader(), workingDir, "rules"),
		userFileProvider[RuleDefinition](NewRuleLoader(), home, "rules"),
	)
	if err != nil {
		return err
	}
	m.Rules.RegisterAll(rules)

	subagents, err := loadChain(ctx,
		NewInMemoryProvider[SubagentDefinition]().WithItems(BuiltinSubagents()).WithPriority(0).WithSourceType(SourceBuiltin),
		projectFileProvider[SubagentDefinition](NewSubagentLoader(), workingDir, "subagents"),
		userFileProvider[SubagentDefinition](NewSubagentLoader(), home, "subagents"),
	)
	if err != nil {
		return err
	}
	m.Subagents.RegisterAll(subagents)

	styles, err := loadChain(ctx,
		NewInMemoryProvider[OutputStyle]().WithItems(BuiltinStyles()).WithPriority(0).WithSourceType(SourceBuiltin),
		projectFileProvider[OutputStyle](NewOutputStyleLoader(), workingDir, "output-styles"),
		userFileProvider[OutputStyle](NewOutputStyleLoader(), home, "output-styles"),
	)
	if err != nil {
		return err
	}
	m.OutputStyles.RegisterAll(styles)

	return nil
}

// RulesForPath returns every registered rule that applies to path:
// global rules and rules with a matching path pattern. The order of
// the returned rules is not defined.
func (m *Manager) RulesForPath(path string) []RuleDefinition {
	return m.Rules.Filter(func(r RuleDefinition) bool {
		return r.MatchesPath(path)
	})
}

func projectFileProvider[T Named](loader DocumentLoader[T], workingDir, subdir string) Provider[T] {
	p := NewFileProvider[T](loader).WithPriority(20).WithSourceType(SourceProject)
	if workingDir != "" {
		p = p.WithPath(filepath.Join(workingDir, claudeDir, subdir))
	}
	return p
}

func userFileProvider[T Named](loader DocumentLoader[T], home, subdir string) Provider[T] {
	p := NewFileProvider[T](loader).WithPriority(10).WithSourceType(SourceUser)
	if home != "" {
		p = p.WithPath(filepath.Join(home, claudeDir, subdir))
	}
	return p
}

func loadChain[T Named](ctx context.Context, providers ...Provider[T]) ([]T, error) {
	chain := NewChainProvider[T]()
	for _, p := range providers {
		chain.With(p)
	}
	return chain.LoadAll(ctx)
}
