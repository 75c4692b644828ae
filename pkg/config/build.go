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

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kaidrach/agentrun/pkg/auth"
	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/mcp"
	"github.com/kaidrach/agentrun/pkg/security"
	"github.com/kaidrach/agentrun/pkg/security/bashguard"
	"github.com/kaidrach/agentrun/pkg/security/rlimit"
	"github.com/kaidrach/agentrun/pkg/toolsearch"
)

// SecurityBuilder starts a security.Builder pre-configured from c,
// rooted at workDir. The caller still finishes it with Build().
func (c SecurityConfig) SecurityBuilder(workDir string) (*security.Builder, error) {
	policy, err := c.bashPolicy()
	if err != nil {
		return nil, err
	}
	limits, err := c.resourceLimits()
	if err != nil {
		return nil, err
	}
	b := security.NewBuilder().
		Root(workDir).
		AllowedPaths(c.AllowedPaths...).
		BashPolicy(policy).
		Limits(limits).
		SandboxEnabled(c.SandboxEnabled)
	return b, nil
}

func (c SecurityConfig) bashPolicy() (bashguard.Policy, error) {
	switch c.Mode {
	case "", "default":
		return bashguard.Default(), nil
	case "strict":
		return bashguard.Strict(), nil
	case "permissive":
		return bashguard.Permissive(), nil
	default:
		return bashguard.Policy{}, &errs.ConfigError{Message: "unknown security.mode: " + c.Mode}
	}
}

func (c SecurityConfig) resourceLimits() (rlimit.Limits, error) {
	switch c.ResourceLimits {
	case "", "default":
		return rlimit.Default(), nil
	case "strict":
		return rlimit.Strict(), nil
	case "none":
		return rlimit.None(), nil
	default:
		return rlimit.Limits{}, &errs.ConfigError{Message: "unknown security.resourceLimits: " + c.ResourceLimits}
	}
}

// BuildChain builds the credential-provider chain named by c.Chain, in
// order. An empty chain falls back to auth.DefaultChain()'s
// environment-then-CLI order.
func (c AuthConfig) BuildChain() (*auth.ChainProvider, error) {
	if len(c.Chain) == 0 {
		return auth.DefaultChain(), nil
	}
	chain := auth.NewChainProvider()
	for _, name := range c.Chain {
		switch strings.ToLower(name) {
		case "environment", "env":
			if c.EnvVar != "" {
				chain.With(auth.EnvironmentProviderFromVar(c.EnvVar))
			} else {
				chain.With(auth.NewEnvironmentProvider())
			}
		case "cli":
			chain.With(auth.NewCLIProvider())
		default:
			return nil, &errs.ConfigError{Message: "unknown auth.chain entry: " + name}
		}
	}
	return chain, nil
}

// ToMCPServers converts RuntimeConfig.MCPServers into the pkg/mcp
// server-config map the Manager consumes.
func (r RuntimeConfig) ToMCPServers() map[string]mcp.ServerConfig {
	out := make(map[string]mcp.ServerConfig, len(r.MCPServers))
	for name, entry := range r.MCPServers {
		out[name] = mcp.ServerConfig{
			Transport: mcp.TransportStdio,
			Command:   entry.Command,
			Args:      entry.Args,
			Env:       entry.Env,
		}
	}
	return out
}

// ToToolSearchConfig converts the toolSearch section into
// pkg/toolsearch.Config, falling back to toolsearch.DefaultConfig's
// search mode and result cap where the section leaves them zero.
func (t ToolSearchConfig) ToToolSearchConfig(contextWindow int) toolsearch.Config {
	cfg := toolsearch.DefaultConfig()
	if t.ThresholdRatio > 0 {
		cfg.Threshold = t.ThresholdRatio
	}
	if contextWindow > 0 {
		cfg.ContextWindow = contextWindow
	}
	if t.MaxResults > 0 {
		cfg.MaxResults = t.MaxResults
	}
	if strings.EqualFold(t.Backend, "bm25") {
		cfg.SearchMode = toolsearch.ModeBM25
	}
	cfg.AlwaysLoad = t.AlwaysLoad
	return cfg
}

// ProjectPath and UserPath join the disclosure directories with a
// subdirectory name ("skills", "rules", "agents", "output-styles"),
// expanding a leading "~" in UserDir to the caller's home directory.
func (d DisclosureConfig) ProjectPath(subdir string) string {
	return filepath.Join(d.ProjectDir, subdir)
}

func (d DisclosureConfig) UserPath(subdir string) string {
	dir := d.UserDir
	if strings.HasPrefix(dir, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return filepath.Join(dir, subdir)
}
