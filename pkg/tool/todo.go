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
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// TodoItem is one entry in a session's task list.
type TodoItem struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

var todoStatuses = map[string]struct{}{
	"pending": {}, "in_progress": {}, "completed": {}, "cancelled": {},
}

// TodoTool keeps a per-call-site task list the model can replace or
// merge on each call, used to make multi-step work legible mid-turn.
type TodoTool struct {
	mu    sync.Mutex
	lists map[string][]TodoItem
}

// NewTodoTool builds an empty TodoTool.
func NewTodoTool() *TodoTool {
	return &TodoTool{lists: make(map[string][]TodoItem)}
}

func (t *TodoTool) Name() string { return "TodoWrite" }

func (t *TodoTool) Description() string {
	return "Create or update a structured task list for the current turn, to track progress on multi-step work."
}

func (t *TodoTool) InputSchema() map[string]any {
	return object(map[string]any{
		"merge": boolean("If true, merge todos into the existing list by ID; if false, replace the list."),
		"todos": array(object(map[string]any{
			"id":      str("Stable identifier for this todo."),
			"content": str("What the task is."),
			"status":  strEnum("Current status.", "pending", "in_progress", "completed", "cancelled"),
		}, "id", "content", "status"), "Todo items."),
	}, "merge", "todos")
}

type todoWriteInput struct {
	Merge bool       `json:"merge"`
	Todos []TodoItem `json:"todos"`
}

func (t *TodoTool) Execute(ectx ExecContext, raw json.RawMessage) (Result, error) {
	var in todoWriteInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	for _, item := range in.Todos {
		if item.ID == "" || item.Content == "" {
			return ErrorResult("every todo needs an id and content"), nil
		}
		if _, ok := todoStatuses[item.Status]; !ok {
			return ErrorResult(fmt.Sprintf("invalid status %q", item.Status)), nil
		}
	}

	key := ectx.CallID
	t.mu.Lock()
	defer t.mu.Unlock()

	if in.Merge {
		t.lists[key] = mergeTodos(t.lists[key], in.Todos)
	} else {
		t.lists[key] = in.Todos
	}

	return OKResult(renderTodos(t.lists[key])), nil
}

func mergeTodos(existing, updates []TodoItem) []TodoItem {
	byID := make(map[string]int, len(existing))
	merged := append([]TodoItem{}, existing...)
	for i, item := range merged {
		byID[item.ID] = i
	}
	for _, u := range updates {
		if i, ok := byID[u.ID]; ok {
			merged[i] = u
		} else {
			byID[u.ID] = len(merged)
			merged = append(merged, u)
		}
	}
	return merged
}

func renderTodos(todos []TodoItem) string {
	if len(todos) == 0 {
		return "(no todos)"
	}
	var b strings.Builder
	for _, item := range todos {
		fmt.Fprintf(&b, "[%s] %s (%s)\n", item.Status, item.Content, item.ID)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
