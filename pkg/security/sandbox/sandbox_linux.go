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

//go:build linux

package sandbox

import (
	"os"

	"github.com/landlock-lsm/go-landlock/landlock"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// landlockRuntime confines the process's filesystem access via the
// Landlock LSM (kernel 5.13+, ABI v1 for path restriction up through
// v4 for richer rule types). It negotiates the richest ABI the
// running kernel supports and degrades gracefully on older kernels
// via BestEffort.
type landlockRuntime struct {
	config Config
}

func newPlatformRuntime(cfg Config) Runtime {
	return &landlockRuntime{config: cfg}
}

func (r *landlockRuntime) IsAvailable() bool {
	return landlockBestEffortConfig().RestrictPaths() == nil
}

func landlockBestEffortConfig() landlock.Config {
	return landlock.V5.BestEffort()
}

func (r *landlockRuntime) Apply() error {
	var rules []landlock.Rule

	if r.config.WorkingDir != "" {
		if _, err := os.Stat(r.config.WorkingDir); err == nil {
			rules = append(rules, landlock.RWDirs(r.config.WorkingDir))
		}
	}

	for _, p := range r.config.AllowedPaths {
		if _, err := os.Stat(p); err == nil {
			rules = append(rules, landlock.RODirs(p))
		}
	}

	for _, p := range systemReadPaths {
		if _, err := os.Stat(p); err == nil {
			rules = append(rules, landlock.RODirs(p))
		}
	}
	for _, p := range systemReadWritePaths {
		if _, err := os.Stat(p); err == nil {
			rules = append(rules, landlock.RWDirs(p))
		}
	}

	if err := landlockBestEffortConfig().RestrictPaths(rules...); err != nil {
		return &errs.SandboxError{Kind: errs.SandboxRuleApplication, Message: "landlock restrict_self failed", Err: err}
	}
	return nil
}

// WrapCommand is a no-op under Landlock: restrictions are applied to
// the current process (via Apply, before fork+exec) rather than by
// rewriting the command line.
func (r *landlockRuntime) WrapCommand(command string) (string, error) { return command, nil }

func (r *landlockRuntime) EnvironmentVars() map[string]string { return map[string]string{} }

// IsSupported reports whether Landlock is usable on this kernel.
func IsSupported() bool {
	return landlockBestEffortConfig().RestrictPaths() == nil
}
