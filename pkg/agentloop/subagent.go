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

package agentloop

import (
	"context"

	"github.com/kaidrach/agentrun/pkg/disclosure"
	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/tokens"
	"github.com/kaidrach/agentrun/pkg/tool"
)

// NewLoopFunc builds a fresh Loop scoped to a nested turn's tool
// access, letting a subagent dispatch run under restricted tools
// without sharing mutable state with the parent turn's Loop.
type NewLoopFunc func(access tool.Access) *Loop

// NewTrackerFunc builds a fresh token accountant for a nested turn.
// A subagent gets its own budget rather than sharing the parent's
// running totals, matching the isolated-turn description a Task tool
// call promises the model.
type NewTrackerFunc func() *tokens.Tracker

// SubagentDispatcher builds a tool.Subagent (the dispatch function
// tool.TaskTool delegates to) that resolves subagentType against a
// disclosure registry of available subagents and runs it as a fully
// isolated nested Loop turn: its own system prompt (the subagent
// definition's on-demand-loaded content), its own token budget, and —
// when the definition names one — a restricted tool allowlist instead
// of inheriting the parent's access.
func SubagentDispatcher(subagents *disclosure.Registry[disclosure.SubagentDefinition], newLoop NewLoopFunc, newTracker NewTrackerFunc) tool.Subagent {
	return func(ctx context.Context, subagentType, prompt string) (string, error) {
		def, ok := subagents.Get(subagentType)
		if !ok {
			return "", &errs.NotFoundError{Path: subagentType}
		}

		systemPrompt, err := subagents.LoadContent(ctx, subagentType)
		if err != nil {
			return "", err
		}

		access := tool.AllTools()
		if len(def.ToolAccess) > 0 {
			access = tool.Only(def.ToolAccess...)
		}

		nested := newLoop(access).WithSystemText(systemPrompt)
		session := NewSession(newTracker())

		result, err := nested.Execute(ctx, session, prompt)
		if err != nil {
			return "", err
		}
		return result.Text, nil
	}
}
