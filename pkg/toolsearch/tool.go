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

package toolsearch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaidrach/agentrun/pkg/tool"
)

// SearchTool is the meta-tool a model calls to discover a deferred
// tool by keyword or pattern instead of having every tool's full
// schema declared up front. It is only useful once PreparedTools
// actually deferred something; an embedding host registers it
// alongside the built-ins whenever Manager.ShouldUseSearch is true.
type SearchTool struct {
	manager *Manager
}

// NewSearchTool builds the tool_search meta-tool over manager.
func NewSearchTool(manager *Manager) *SearchTool {
	return &SearchTool{manager: manager}
}

func (t *SearchTool) Name() string { return "tool_search" }

func (t *SearchTool) Description() string {
	return "Search for tools that were omitted from this prompt to save context. " +
		"Returns matching tool names and descriptions; call the tool normally once you know its name."
}

func (t *SearchTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Keyword, phrase, or (in regex mode) pattern to search tool names, descriptions, and arguments.",
			},
		},
		"required": []string{"query"},
	}
}

type searchToolInput struct {
	Query string `json:"query"`
}

func (t *SearchTool) Execute(_ tool.ExecContext, raw json.RawMessage) (tool.Result, error) {
	var in searchToolInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return tool.ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if strings.TrimSpace(in.Query) == "" {
		return tool.ErrorResult("query is required"), nil
	}

	names := t.manager.Search(in.Query)
	if len(names) == 0 {
		return tool.OKResult("no matching tools found"), nil
	}
	// Discovered tools ship their full schemas on the next request.
	t.manager.Unlock(names...)

	var b strings.Builder
	for _, name := range names {
		def, ok := t.manager.GetDefinition(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", def.Name, def.Description)
	}
	return tool.OKResult(strings.TrimRight(b.String(), "\n")), nil
}

var _ tool.Tool = (*SearchTool)(nil)
