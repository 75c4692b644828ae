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

// Package contextassembler builds the system-prompt content an agent
// turn sends to the model: memory files (CLAUDE.md-equivalent content
// merged from enterprise, user, project, and local sources), skill and
// subagent index summaries, and author-supplied dynamic/conditional
// blocks. It uses pkg/disclosure's templating primitives for @path
// inclusion and backtick command execution rather than reimplementing
// them; it does not apply $ARGUMENTS or $1..$9 substitution
// (disclosure.SubstituteArgs) anywhere.
package contextassembler

import "strings"

// RuleFile is a single named rule's raw content, as opposed to
// pkg/disclosure's lazily-loaded RuleDefinition index entry. Memory
// providers carry rules at full content since they're assembled
// directly into the system prompt rather than surfaced as a summary
// line the model can request on demand.
type RuleFile struct {
	Name    string
	Content string
	Path    string
}

// MemoryContent is the aggregate a MemoryProvider produces: zero or
// more CLAUDE.md-equivalent documents, zero or more CLAUDE.local.md
// documents, and zero or more named rules. Multiple providers' outputs
// are merged in priority order.
type MemoryContent struct {
	SystemPrompt string
	ClaudeMD     []string
	LocalMD      []string
	Rules        []RuleFile
}

// Merge appends other's content onto c, other taking precedence by
// virtue of being appended last (callers merge in ascending-priority
// order, so the highest-priority provider's content lands last in the
// combined text).
func (c *MemoryContent) Merge(other MemoryContent) {
	if other.SystemPrompt != "" {
		c.SystemPrompt = other.SystemPrompt
	}
	c.ClaudeMD = append(c.ClaudeMD, other.ClaudeMD...)
	c.LocalMD = append(c.LocalMD, other.LocalMD...)
	c.Rules = append(c.Rules, other.Rules...)
}

// CombinedClaudeMD joins every CLAUDE.md and CLAUDE.local.md document
// into the single block that's spliced into the system prompt, in
// load order, separated by blank lines.
func (c MemoryContent) CombinedClaudeMD() string {
	var parts []string
	parts = append(parts, c.ClaudeMD...)
	parts = append(parts, c.LocalMD...)
	return strings.Join(parts, "\n\n")
}
