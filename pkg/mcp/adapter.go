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

package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/kaidrach/agentrun/pkg/tool"
)

// ToolAdapter exposes one of a Manager's qualified tools as a
// tool.Tool, so it can be registered into a tool.Registry alongside
// the runtime's built-in tools.
type ToolAdapter struct {
	manager *Manager
	def     ToolDefinition
}

// NewToolAdapter wraps def (a qualified tool definition, as returned
// by Manager.ListTools) for registration into a tool.Registry.
func NewToolAdapter(manager *Manager, def ToolDefinition) *ToolAdapter {
	return &ToolAdapter{manager: manager, def: def}
}

func (a *ToolAdapter) Name() string                { return a.def.Name }
func (a *ToolAdapter) Description() string         { return a.def.Description }
func (a *ToolAdapter) InputSchema() map[string]any { return a.def.InputSchema }

// Execute forwards to Manager.CallTool, decoding the raw tool input
// into a map the MCP wire protocol expects for arguments.
func (a *ToolAdapter) Execute(ectx tool.ExecContext, input json.RawMessage) (tool.Result, error) {
	var args map[string]any
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return tool.ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
		}
	}

	output, isError, err := a.manager.CallTool(ectx.Context, a.def.Name, args)
	if err != nil {
		return tool.ErrorResult(err.Error()), nil
	}
	if isError {
		return tool.ErrorResult(output), nil
	}
	return tool.OKResult(output), nil
}

// RegisterTools registers an adapter for every tool currently known
// to manager into registry. Call it again after a server is added to
// pick up its tools, since the registry holds a static snapshot.
func RegisterTools(registry *tool.Registry, manager *Manager) {
	for _, def := range manager.ListTools() {
		registry.Register(NewToolAdapter(manager, def))
	}
}

var _ tool.Tool = (*ToolAdapter)(nil)
