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

// Package security composes the filesystem, bash, environment,
// resource-limit, and OS-sandbox controls in its sibling packages
// into a single SecurityContext that the rest of the runtime depends
// on for every filesystem or process operation a tool performs on
// behalf of the model.
package security

import (
	"context"
	"os"

	"github.com/kaidrach/agentrun/pkg/security/bashguard"
	"github.com/kaidrach/agentrun/pkg/security/envguard"
	"github.com/kaidrach/agentrun/pkg/security/netguard"
	"github.com/kaidrach/agentrun/pkg/security/rlimit"
	"github.com/kaidrach/agentrun/pkg/security/safepath"
	"github.com/kaidrach/agentrun/pkg/security/sandbox"
)

// Context bundles every security control active for one agent run.
type Context struct {
	rootFd     int
	rootPath   string
	permissive bool

	allowedPaths    []string
	deniedPatterns  []string
	maxSymlinkDepth int

	Bash    *bashguard.Analyzer
	Limits  rlimit.Limits
	EnvSan  *envguard.Sanitizer
	Network netguard.Config
	Sandbox *sandbox.Sandbox
}

// Builder constructs a Context.
type Builder struct {
	root            string
	allowedPaths    []string
	deniedPatterns  []string
	limits          *rlimit.Limits
	bashPolicy      *bashguard.Policy
	maxSymlinkDepth int
	network         netguard.Config
	sandboxCfg      *sandbox.Config
}

// NewBuilder starts a Context builder with depth/limits defaults.
func NewBuilder() *Builder {
	return &Builder{maxSymlinkDepth: safepath.DefaultMaxSymlinkDepth}
}

func (b *Builder) Root(path string) *Builder { b.root = path; return b }

func (b *Builder) AllowedPaths(paths ...string) *Builder { b.allowedPaths = paths; return b }

func (b *Builder) DeniedPatterns(patterns ...string) *Builder {
	b.deniedPatterns = patterns
	return b
}

func (b *Builder) Limits(l rlimit.Limits) *Builder { b.limits = &l; return b }

func (b *Builder) BashPolicy(p bashguard.Policy) *Builder { b.bashPolicy = &p; return b }

func (b *Builder) MaxSymlinkDepth(depth int) *Builder { b.maxSymlinkDepth = depth; return b }

func (b *Builder) Network(n netguard.Config) *Builder { b.network = n; return b }

func (b *Builder) SandboxConfig(c sandbox.Config) *Builder { b.sandboxCfg = &c; return b }

// SandboxEnabled sets the sandbox config to an enabled (or disabled)
// default rooted at b.Root(), unless a more specific SandboxConfig
// was already set.
func (b *Builder) SandboxEnabled(enabled bool) *Builder {
	if b.sandboxCfg != nil {
		return b
	}
	root := b.rootOrCwd()
	if enabled {
		cfg := sandbox.NewConfig(root)
		b.sandboxCfg = &cfg
	} else {
		cfg := sandbox.Disabled()
		b.sandboxCfg = &cfg
	}
	return b
}

func (b *Builder) rootOrCwd() string {
	if b.root != "" {
		return b.root
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// Build resolves the root directory and assembles the Context.
func (b *Builder) Build(ctx context.Context) (*Context, error) {
	root := b.rootOrCwd()

	fd, err := safepath.Root(root)
	if err != nil {
		return nil, err
	}

	limits := rlimit.Default()
	if b.limits != nil {
		limits = *b.limits
	}

	bashPolicy := bashguard.Default()
	if b.bashPolicy != nil {
		bashPolicy = *b.bashPolicy
	}

	sandboxCfg := sandbox.Disabled()
	if b.sandboxCfg != nil {
		sandboxCfg = *b.sandboxCfg
	}
	sandboxCfg = sandboxCfg.WithNetwork(b.network)

	return &Context{
		rootFd:          fd,
		rootPath:        root,
		allowedPaths:    b.allowedPaths,
		deniedPatterns:  b.deniedPatterns,
		maxSymlinkDepth: b.maxSymlinkDepth,
		Bash:            bashguard.New(bashPolicy),
		Limits:          limits,
		EnvSan:          envguard.New(nil, nil),
		Network:         b.network,
		Sandbox:         sandbox.New(ctx, sandboxCfg),
	}, nil
}

// New builds a default, enabled Context rooted at root.
func New(ctx context.Context, root string) (*Context, error) {
	return NewBuilder().Root(root).SandboxEnabled(true).Build(ctx)
}

// Permissive builds a Context with every control relaxed: no
// symlink checking, no resource limits, a permissive bash policy, and
// no OS sandbox. Intended for trusted, already-isolated execution
// environments (e.g. this runtime embedded inside its own container).
func Permissive(ctx context.Context, root string) (*Context, error) {
	c, err := NewBuilder().
		Root(root).
		Limits(rlimit.None()).
		BashPolicy(bashguard.Permissive()).
		SandboxEnabled(false).
		Build(ctx)
	if err != nil {
		return nil, err
	}
	c.permissive = true
	return c, nil
}

// Close releases the root directory descriptor.
func (c *Context) Close() error { return safepath.Close(c.rootFd) }

// Root returns the root directory this context confines paths to.
func (c *Context) Root() string { return c.rootPath }

// IsSandboxed reports whether an OS-level sandbox runtime is active.
func (c *Context) IsSandboxed() bool { return c.Sandbox.IsEnabled() }

// ShouldAutoAllowBash reports whether bash invocations can skip
// interactive/explicit approval because the OS sandbox already
// confines them.
func (c *Context) ShouldAutoAllowBash() bool { return c.Sandbox.ShouldAutoAllowBash() }

// Resolve validates relativePath against this context's root,
// bypassing symlink checking entirely when the context is permissive.
func (c *Context) Resolve(ctx context.Context, relativePath string) (*safepath.SafePath, error) {
	if c.permissive {
		return safepath.Unchecked(c.rootFd, c.rootPath+"/"+relativePath), nil
	}
	return safepath.Resolve(ctx, c.rootFd, c.rootPath, relativePath, c.maxSymlinkDepth)
}
