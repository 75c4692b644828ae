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
	"os/exec"
	"sync"
)

// backgroundShell tracks one Bash invocation started with
// run_in_background so KillShell can later terminate it.
type backgroundShell struct {
	cmd *exec.Cmd
}

// ShellRegistry is the shared table of in-flight background shells a
// BashTool registers into and a KillShellTool reads from.
type ShellRegistry struct {
	mu     sync.Mutex
	shells map[string]*backgroundShell
	nextID int
}

// NewShellRegistry builds an empty ShellRegistry.
func NewShellRegistry() *ShellRegistry {
	return &ShellRegistry{shells: make(map[string]*backgroundShell)}
}

func (r *ShellRegistry) register(cmd *exec.Cmd) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("shell_%d", r.nextID)
	r.shells[id] = &backgroundShell{cmd: cmd}
	return id
}

func (r *ShellRegistry) forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shells, id)
}

// KillShellTool terminates a background shell previously started by a
// BashTool sharing the same ShellRegistry.
type KillShellTool struct {
	registry *ShellRegistry
}

// NewKillShellTool builds a KillShellTool operating on registry.
func NewKillShellTool(registry *ShellRegistry) *KillShellTool {
	return &KillShellTool{registry: registry}
}

func (t *KillShellTool) Name() string { return "KillShell" }

func (t *KillShellTool) Description() string {
	return "Terminate a background shell previously started with run_in_background, identified by its shell ID."
}

func (t *KillShellTool) InputSchema() map[string]any {
	return object(map[string]any{
		"shell_id": str("ID returned when the background shell was started."),
	}, "shell_id")
}

type killShellInput struct {
	ShellID string `json:"shell_id"`
}

func (t *KillShellTool) Execute(_ ExecContext, raw json.RawMessage) (Result, error) {
	var in killShellInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if in.ShellID == "" {
		return ErrorResult("shell_id is required"), nil
	}

	t.registry.mu.Lock()
	shell, ok := t.registry.shells[in.ShellID]
	t.registry.mu.Unlock()
	if !ok {
		return ErrorResult(fmt.Sprintf("no background shell %q", in.ShellID)), nil
	}

	if shell.cmd.Process == nil {
		return ErrorResult(fmt.Sprintf("shell %q has no running process", in.ShellID)), nil
	}
	if err := shell.cmd.Process.Kill(); err != nil {
		return ErrorResult(fmt.Sprintf("kill %q: %v", in.ShellID, err)), nil
	}

	t.registry.forget(in.ShellID)
	return OKResult(fmt.Sprintf("killed %s", in.ShellID)), nil
}
