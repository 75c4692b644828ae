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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kaidrach/agentrun/pkg/security"
	"github.com/kaidrach/agentrun/pkg/security/rlimit"
)

const defaultBashTimeout = 2 * time.Minute

// BashTool runs a shell command after the command analyzer and OS
// sandbox have had a chance to reject or rewrite it.
type BashTool struct {
	sc         *security.Context
	shells     *ShellRegistry
	maxTimeout time.Duration
}

// NewBashTool builds a BashTool confined to sc, registering any
// command started with run_in_background into shells so a
// KillShellTool sharing the same registry can terminate it later.
func NewBashTool(sc *security.Context, shells *ShellRegistry) *BashTool {
	return &BashTool{sc: sc, shells: shells, maxTimeout: defaultBashTimeout}
}

func (t *BashTool) Name() string { return "Bash" }

func (t *BashTool) Description() string {
	return "Execute a shell command. Commands run under static analysis and, where available, an OS-level process sandbox."
}

func (t *BashTool) InputSchema() map[string]any {
	return object(map[string]any{
		"command":           str("Shell command to run via sh -c."),
		"timeout_ms":        number("Maximum time to allow the command to run, in milliseconds."),
		"description":       str("One-line description of what the command does, for transcript readability."),
		"run_in_background": boolean("Run the command detached and return immediately with a shell ID instead of waiting for it to finish."),
	}, "command")
}

type bashInput struct {
	Command         string `json:"command"`
	TimeoutMs       int    `json:"timeout_ms"`
	Description     string `json:"description"`
	RunInBackground bool   `json:"run_in_background"`
}

func (t *BashTool) Execute(ectx ExecContext, raw json.RawMessage) (Result, error) {
	var in bashInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if strings.TrimSpace(in.Command) == "" {
		return ErrorResult("command is required"), nil
	}

	if _, err := t.sc.Bash.Validate(in.Command); err != nil {
		return ErrorResult(fmt.Sprintf("command rejected: %v", err)), nil
	}

	wrapped, err := t.sc.Sandbox.WrapCommand(in.Command)
	if err != nil {
		return ErrorResult(fmt.Sprintf("sandbox rejected command: %v", err)), nil
	}
	wrapped = prependRlimits(t.sc.Limits, wrapped)

	if in.RunInBackground {
		return t.startBackground(wrapped)
	}

	timeout := t.maxTimeout
	if in.TimeoutMs > 0 {
		timeout = time.Duration(in.TimeoutMs) * time.Millisecond
		if timeout > t.maxTimeout {
			timeout = t.maxTimeout
		}
	}

	runCtx, cancel := context.WithTimeout(ectx.Context, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", wrapped)
	cmd.Dir = t.sc.Root()

	env := cmd.Environ()
	for k, v := range t.sc.Sandbox.EnvironmentVars() {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	runErr := cmd.Run()
	output := buf.String()

	if runCtx.Err() == context.DeadlineExceeded {
		return ErrorResult(fmt.Sprintf("command timed out after %s\n%s", timeout, output)), nil
	}
	if runErr != nil {
		return Result{Output: fmt.Sprintf("%s\n(exit error: %v)", output, runErr), IsError: true}, nil
	}
	return OKResult(output), nil
}

// startBackground launches command detached from the calling turn and
// registers it so a later KillShell call can terminate it; it never
// waits for completion, so its output is not captured here.
func (t *BashTool) startBackground(command string) (Result, error) {
	if t.shells == nil {
		return ErrorResult("run_in_background requires a shell registry"), nil
	}

	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = t.sc.Root()
	env := cmd.Environ()
	for k, v := range t.sc.Sandbox.EnvironmentVars() {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	if err := cmd.Start(); err != nil {
		return ErrorResult(fmt.Sprintf("failed to start: %v", err)), nil
	}

	id := t.shells.register(cmd)
	go func() { _ = cmd.Wait() }()

	return OKResult(fmt.Sprintf("started background shell %s (pid %d)", id, cmd.Process.Pid)), nil
}

// prependRlimits encodes limits as a leading ulimit clause, since Go's
// os/exec has no pre-exec hook to call rlimit.Limits.Apply inside the
// child before it execs the shell; the shell itself applies the
// ulimits to its own process before running command.
func prependRlimits(limits rlimit.Limits, command string) string {
	var clauses []string
	add := func(flag string, v *uint64) {
		if v != nil {
			clauses = append(clauses, fmt.Sprintf("ulimit -%s %d", flag, *v))
		}
	}
	add("t", limits.CPUTimeSeconds)
	add("f", blocksFromBytes(limits.FileSizeBytes))
	add("n", limits.OpenFiles)
	add("u", limits.Processes)
	add("v", blocksFromBytes(limits.VirtualMemory))
	add("d", blocksFromBytes(limits.DataSizeBytes))
	add("s", blocksFromBytes(limits.StackSizeBytes))

	if len(clauses) == 0 {
		return command
	}
	return strings.Join(clauses, "; ") + "; " + command
}

// blocksFromBytes converts a byte ceiling to the 1024-byte blocks
// ulimit -f/-v/-d/-s expects.
func blocksFromBytes(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	blocks := *v / 1024
	return &blocks
}
