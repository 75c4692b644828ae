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

// Package tool is the name-indexed dispatch map of tool handlers the
// agent loop calls into: every built-in (file read/write/edit, grep,
// glob, bash, notebook edit, TodoWrite, plan, task/subagent, killshell)
// plus whatever MCP servers register at startup.
package tool

import (
	"context"
	"encoding/json"
)

// Result is what a tool invocation returns to the agent loop.
type Result struct {
	Output  string
	IsError bool
}

// ErrorResult builds a Result carrying a failure message, the common
// case for a tool whose handler returned a typed error.
func ErrorResult(message string) Result { return Result{Output: message, IsError: true} }

// OKResult builds a successful Result.
func OKResult(output string) Result { return Result{Output: output} }

// ExecContext carries the per-call state a handler needs beyond its raw
// input: a context carrying cancellation shared with the rest of the
// turn, the originating tool-use ID (for correlating streamed
// partials), and the working directory. The security context is not
// part of it; each file or process tool holds its own.
type ExecContext struct {
	Context context.Context

	// CallID is the tool_use_id on the content block that triggered
	// this invocation.
	CallID string

	// WorkingDir is the directory relative paths in input resolve
	// against, independent of the security root.
	WorkingDir string
}

// Tool is one registered capability; every method is mandatory.
// Registry.Definitions declares every registered tool that the access
// filter allows; there is no per-tool opt-out.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Execute(ectx ExecContext, input json.RawMessage) (Result, error)
}

// Definition reports the wire-level description of t, suitable for
// inclusion in a llms.ToolDefinition list.
func Definition(t Tool) (name, description string, schema map[string]any) {
	return t.Name(), t.Description(), t.InputSchema()
}
