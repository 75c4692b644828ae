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
)

// PlanHook is notified whenever the model exits plan mode with a
// proposed plan, so the embedding host can gate execution on approval.
type PlanHook func(plan string) error

// PlanTool lets the model present a plan and request permission to
// leave read-only planning mode before taking any mutating action.
type PlanTool struct {
	onExit PlanHook
}

// NewPlanTool builds a PlanTool. onExit may be nil, in which case
// every plan is accepted unconditionally.
func NewPlanTool(onExit PlanHook) *PlanTool {
	return &PlanTool{onExit: onExit}
}

func (t *PlanTool) Name() string { return "ExitPlanMode" }

func (t *PlanTool) Description() string {
	return "Present a plan for the work about to be done and request permission to leave planning mode and start executing it."
}

func (t *PlanTool) InputSchema() map[string]any {
	return object(map[string]any{
		"plan": str("The plan, in markdown, to present for approval."),
	}, "plan")
}

type planInput struct {
	Plan string `json:"plan"`
}

func (t *PlanTool) Execute(_ ExecContext, raw json.RawMessage) (Result, error) {
	var in planInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if in.Plan == "" {
		return ErrorResult("plan is required"), nil
	}

	if t.onExit != nil {
		if err := t.onExit(in.Plan); err != nil {
			return ErrorResult(fmt.Sprintf("plan rejected: %v", err)), nil
		}
	}

	return OKResult("plan approved"), nil
}
