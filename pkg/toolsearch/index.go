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

// Package toolsearch indexes a tool set by its estimated prompt-token
// cost and, once that cost crosses a configured share of the context
// window, defers most tools out of the system prompt in favor of a
// meta-tool a model can use to search for the one it actually needs.
package toolsearch

import (
	"encoding/json"
	"strings"
)

// IndexEntry is one tool's searchable record: its qualified name, the
// server and tool it was split from, and an estimate of how many
// prompt tokens declaring it costs.
type IndexEntry struct {
	QualifiedName   string
	ServerName      string
	ToolName        string
	Description     string
	ArgNames        []string
	ArgDescriptions []string
	EstimatedTokens int
}

// NewIndexEntry builds an entry from a tool's unqualified name,
// description and schema, already split from its qualified form.
func NewIndexEntry(qualifiedName, serverName, toolName, description string, inputSchema map[string]any) IndexEntry {
	argNames, argDescriptions := extractArgInfo(inputSchema)
	return IndexEntry{
		QualifiedName:   qualifiedName,
		ServerName:      serverName,
		ToolName:        toolName,
		Description:     description,
		ArgNames:        argNames,
		ArgDescriptions: argDescriptions,
		EstimatedTokens: estimateTokens(toolName, description, inputSchema),
	}
}

func extractArgInfo(schema map[string]any) ([]string, []string) {
	var names, descs []string
	props, _ := schema["properties"].(map[string]any)
	for name, prop := range props {
		names = append(names, name)
		if propMap, ok := prop.(map[string]any); ok {
			if desc, ok := propMap["description"].(string); ok {
				descs = append(descs, desc)
			}
		}
	}
	return names, descs
}

// estimateTokens approximates the prompt-token cost of declaring this
// tool as name_len/4 + desc_len/4 + schema_len/4 + 20, matching the
// rough chars-per-token heuristic the rest of this runtime uses
// elsewhere plus a fixed per-tool declaration overhead.
func estimateTokens(name, description string, inputSchema map[string]any) int {
	schemaJSON, _ := json.Marshal(inputSchema)
	return len(name)/4 + len(description)/4 + len(schemaJSON)/4 + 20
}

// SearchableText concatenates every field a search query might match
// against into one space-joined blob.
func (e IndexEntry) SearchableText() string {
	var b strings.Builder
	b.WriteString(e.ToolName)
	b.WriteByte(' ')
	b.WriteString(e.Description)
	b.WriteByte(' ')
	b.WriteString(strings.Join(e.ArgNames, " "))
	b.WriteByte(' ')
	b.WriteString(strings.Join(e.ArgDescriptions, " "))
	return b.String()
}

// Index holds every indexed tool and the running total of their
// estimated token cost.
type Index struct {
	entries     []IndexEntry
	totalTokens int
}

// NewIndex builds an empty index.
func NewIndex() *Index { return &Index{} }

// Add appends entry and folds its estimated cost into the running
// total.
func (idx *Index) Add(entry IndexEntry) {
	idx.totalTokens += entry.EstimatedTokens
	idx.entries = append(idx.entries, entry)
}

// TotalTokens returns the summed estimated cost of every entry.
func (idx *Index) TotalTokens() int { return idx.totalTokens }

// Len returns the number of indexed entries.
func (idx *Index) Len() int { return len(idx.entries) }

// IsEmpty reports whether the index holds no entries.
func (idx *Index) IsEmpty() bool { return len(idx.entries) == 0 }

// Entries returns every indexed entry.
func (idx *Index) Entries() []IndexEntry { return idx.entries }

// Get looks an entry up by its qualified name.
func (idx *Index) Get(qualifiedName string) (IndexEntry, bool) {
	for _, e := range idx.entries {
		if e.QualifiedName == qualifiedName {
			return e, true
		}
	}
	return IndexEntry{}, false
}

// Clear empties the index.
func (idx *Index) Clear() {
	idx.entries = nil
	idx.totalTokens = 0
}
