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

package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Subagent runs one independent, nested agent turn for subagentType on
// prompt and returns its final text. The runtime's agent loop supplies
// this; the tool itself only knows the dispatch shape.
type Subagent func(ctx context.Context, subagentType, prompt string) (string, error)

// TaskTool delegates a self-contained unit of work to a named
// subagent, running in its own isolated turn with its own tool
// access and context budget.
type TaskTool struct {
	run   Subagent
	types []string
}

// NewTaskTool builds a TaskTool that dispatches through run, accepting
// only the named subagent types.
func NewTaskTool(run Subagent, types ...string) *TaskTool {
	return &TaskTool{run: run, types: types}
}

func (t *TaskTool) Name() string { return "Task" }

func (t *TaskTool) Description() string {
	return "Delegate a self-contained task to a named subagent, running in its own isolated turn, and return its final result."
}

func (t *TaskTool) InputSchema() map[string]any {
	schema := map[string]any{
		"description":   str("Short (3-5 word) description of the task."),
		"prompt":        str("The task for the subagent to perform."),
		"subagent_type": str("Which subagent type to dispatch to."),
	}
	if len(t.types) > 0 {
		schema["subagent_type"] = strEnum("Which subagent type to dispatch to.", t.types...)
	}
	return object(schema, "prompt", "subagent_type")
}

type taskInput struct {
	Description  string `json:"description"`
	Prompt       string `json:"prompt"`
	SubagentType string `json:"subagent_type"`
}

func (t *TaskTool) Execute(ectx ExecContext, raw json.RawMessage) (Result, error) {
	var in taskInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if in.Prompt == "" || in.SubagentType == "" {
		return ErrorResult("prompt and subagent_type are required"), nil
	}
	if len(t.types) > 0 && !contains(t.types, in.SubagentType) {
		return ErrorResult(fmt.Sprintf("unknown subagent_type %q", in.SubagentType)), nil
	}
	if t.run == nil {
		return ErrorResult("no subagent runner configured"), nil
	}

	output, err := t.run(ectx.Context, in.SubagentType, in.Prompt)
	if err != nil {
		return ErrorResult(fmt.Sprintf("subagent failed: %v", err)), nil
	}
	return OKResult(output), nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
