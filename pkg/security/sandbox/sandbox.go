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

// Package sandbox applies OS-level process confinement on top of the
// filesystem/bash-level checks in the sibling security packages:
// Landlock on Linux, Seatbelt (sandbox-exec) on macOS, and a no-op
// elsewhere. Callers always go through Sandbox, never the
// platform-specific Runtime directly, so the rest of the module is
// oblivious to which (if any) backend is active.
package sandbox

import (
	"context"
	"strings"

	"github.com/kaidrach/agentrun/internal/rtlog"
	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/security/netguard"
)

// Config describes the sandbox policy for one working directory.
type Config struct {
	Enabled                   bool
	WorkingDir                string
	AllowedPaths              []string
	ExcludedCommands          map[string]struct{}
	AllowUnsandboxedCommands  bool
	AutoAllowBashIfSandboxed  bool
	EnableWeakerNestedSandbox bool
	Network                   netguard.Config
}

// NewConfig returns an enabled Config rooted at workingDir with the
// default auto-allow-bash and bypass behavior.
func NewConfig(workingDir string) Config {
	return Config{
		Enabled:                  true,
		WorkingDir:               workingDir,
		ExcludedCommands:         make(map[string]struct{}),
		AllowUnsandboxedCommands: true,
		AutoAllowBashIfSandboxed: true,
	}
}

// Disabled returns a Config with sandboxing turned off.
func Disabled() Config {
	return Config{ExcludedCommands: make(map[string]struct{}), AllowUnsandboxedCommands: true}
}

// WithExcludedCommands returns a copy of c whose named base commands
// always bypass the sandbox.
func (c Config) WithExcludedCommands(commands ...string) Config {
	c.ExcludedCommands = make(map[string]struct{}, len(commands))
	for _, cmd := range commands {
		c.ExcludedCommands[cmd] = struct{}{}
	}
	return c
}

// WithAllowedPaths returns a copy of c with additional read-allowed paths.
func (c Config) WithAllowedPaths(paths ...string) Config {
	c.AllowedPaths = paths
	return c
}

// WithNetwork returns a copy of c with its network policy replaced.
func (c Config) WithNetwork(n netguard.Config) Config {
	c.Network = n
	return c
}

// WithAutoAllowBash returns a copy of c with auto-allow-bash set.
func (c Config) WithAutoAllowBash(allow bool) Config {
	c.AutoAllowBashIfSandboxed = allow
	return c
}

// IsCommandExcluded reports whether command's base program always
// bypasses the sandbox under this config.
func (c Config) IsCommandExcluded(command string) bool {
	base := command
	if i := strings.IndexAny(command, " \t"); i >= 0 {
		base = command[:i]
	}
	_, excluded := c.ExcludedCommands[base]
	return excluded
}

// ShouldAutoAllowBash reports whether bash invocations should be
// auto-approved because the sandbox itself already confines them.
func (c Config) ShouldAutoAllowBash() bool { return c.Enabled && c.AutoAllowBashIfSandboxed }

// CanBypassSandbox reports whether an explicitly requested unsandboxed
// command is permitted under this config.
func (c Config) CanBypassSandbox(explicitlyRequested bool) bool {
	return explicitlyRequested && c.AllowUnsandboxedCommands
}

// Runtime is the platform-specific sandbox backend.
type Runtime interface {
	IsAvailable() bool
	Apply() error
	WrapCommand(command string) (string, error)
	EnvironmentVars() map[string]string
}

// Sandbox is the platform-independent façade the rest of the runtime
// calls into.
type Sandbox struct {
	config  Config
	runtime Runtime
}

// New builds a Sandbox for cfg, selecting and probing the
// platform-specific runtime. If the platform has no working runtime,
// the sandbox falls back to unconfined execution and logs a warning
// (the caller decides via Config.Enabled/AllowUnsandboxedCommands
// whether that is acceptable).
func New(ctx context.Context, cfg Config) *Sandbox {
	if !cfg.Enabled {
		return &Sandbox{config: cfg}
	}
	rt := newPlatformRuntime(cfg)
	if rt != nil && rt.IsAvailable() {
		return &Sandbox{config: cfg, runtime: rt}
	}
	rtlog.Get(ctx).Warn("sandbox requested but no runtime is available on this platform; commands will execute without OS-level isolation")
	return &Sandbox{config: cfg}
}

// DisabledSandbox returns a Sandbox with no active runtime.
func DisabledSandbox() *Sandbox { return &Sandbox{config: Disabled()} }

// IsEnabled reports whether a runtime is actually confining commands.
func (s *Sandbox) IsEnabled() bool { return s.config.Enabled && s.runtime != nil }

// IsAvailable reports whether the selected runtime reports itself
// operational, independent of whether sandboxing was requested.
func (s *Sandbox) IsAvailable() bool { return s.runtime != nil && s.runtime.IsAvailable() }

// Config returns the sandbox's configuration.
func (s *Sandbox) Config() Config { return s.config }

// Apply installs the sandbox's restrictions on the current process
// (Landlock). The Seatbelt backend cannot restrict a running process:
// its Apply returns an error, and it confines commands through
// WrapCommand instead. With no runtime, Apply returns an error when
// sandboxing was requested and nil otherwise.
func (s *Sandbox) Apply() error {
	if s.runtime == nil {
		if s.config.Enabled {
			return &errs.SandboxError{Kind: errs.SandboxNotAvailable, Message: "no sandbox runtime available"}
		}
		return nil
	}
	return s.runtime.Apply()
}

// WrapCommand rewrites command as needed to run it under the active
// sandbox backend (e.g. prefixing with `sandbox-exec -f <profile>` on
// macOS), or returns it unchanged if no runtime applies.
func (s *Sandbox) WrapCommand(command string) (string, error) {
	if s.config.IsCommandExcluded(command) {
		if s.config.AllowUnsandboxedCommands {
			return command, nil
		}
		base := command
		if i := strings.IndexAny(command, " \t"); i >= 0 {
			base = command[:i]
		}
		return "", &errs.SandboxError{Kind: errs.SandboxInvalidConfig, Message: "command '" + base + "' is excluded but unsandboxed commands are not allowed"}
	}
	if s.runtime == nil {
		return command, nil
	}
	return s.runtime.WrapCommand(command)
}

// EnvironmentVars returns every environment variable the active
// runtime and network policy imply (proxy vars, Seatbelt helpers).
func (s *Sandbox) EnvironmentVars() map[string]string {
	env := make(map[string]string)
	if s.runtime != nil {
		for k, v := range s.runtime.EnvironmentVars() {
			env[k] = v
		}
	}
	for k, v := range s.config.Network.ProxyEnv() {
		env[k] = v
	}
	return env
}

// ShouldAutoAllowBash reports whether the active sandbox confines
// bash tightly enough that bash invocations can be auto-approved.
func (s *Sandbox) ShouldAutoAllowBash() bool {
	return s.IsEnabled() && s.config.ShouldAutoAllowBash()
}

// CanBypass reports whether an explicitly requested unsandboxed
// command is permitted.
func (s *Sandbox) CanBypass(explicitlyRequested bool) bool {
	return s.config.CanBypassSandbox(explicitlyRequested)
}

// systemReadPaths lists host paths every sandbox backend grants
// read-only access to so ordinary toolchains keep working.
var systemReadPaths = []string{
	"/usr", "/lib", "/lib64", "/lib32", "/bin", "/sbin", "/etc", "/proc", "/sys", "/dev",
}

// systemReadWritePaths lists paths every backend grants read-write
// access to, mainly scratch space.
var systemReadWritePaths = []string{"/tmp", "/var/tmp"}
