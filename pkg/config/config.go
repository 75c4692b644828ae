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

// Package config assembles the runtime's bootstrap configuration —
// the sandbox mode, auth provider chain, per-provider base URLs, MCP
// server list, tool-search threshold, and disclosure directories
// described in spec §6's "Config surface" — from layered YAML plus
// environment overrides.
package config

// RuntimeConfig is the root of the layered config tree. Every field
// has a koanf tag matching the YAML key and can be overridden by an
// AGENTRUN_-prefixed environment variable, with "__" between nesting
// levels (AGENTRUN_SECURITY__MODE for security.mode).
type RuntimeConfig struct {
	Security   SecurityConfig            `koanf:"security"`
	Auth       AuthConfig                `koanf:"auth"`
	Providers  ProvidersConfig           `koanf:"providers"`
	MCPServers map[string]MCPServerEntry `koanf:"mcpServers"`
	ToolSearch ToolSearchConfig          `koanf:"toolSearch"`
	Disclosure DisclosureConfig          `koanf:"disclosure"`
}

// SecurityConfig selects the sandbox mode, allowed paths outside the
// working directory, and the named resource-limit preset.
type SecurityConfig struct {
	// Mode is one of "default", "strict", or "permissive"; see
	// bashguard's preset policies of the same names.
	Mode string `koanf:"mode"`
	// AllowedPaths are extra roots the SafeFs may read from besides
	// the working directory.
	AllowedPaths []string `koanf:"allowedPaths"`
	// ResourceLimits is one of "default", "strict", or "none".
	ResourceLimits string `koanf:"resourceLimits"`
	// SandboxEnabled turns on the OS-level sandbox (Landlock/Seatbelt).
	SandboxEnabled bool `koanf:"sandboxEnabled"`
}

// AuthConfig selects which credential providers the chain tries, in
// order.
type AuthConfig struct {
	// Chain lists provider names to try in order: "environment" (or
	// "env") and "cli". Defaults to ["environment", "cli"].
	Chain []string `koanf:"chain"`
	// EnvVar is the environment variable the "environment" provider
	// reads. Defaults to ANTHROPIC_API_KEY.
	EnvVar string `koanf:"envVar"`
	// CredentialsPath is decoded from the config tree, but BuildChain
	// does not pass it on: the CLI provider always reads
	// ~/.claude/.credentials.json.
	CredentialsPath string `koanf:"credentialsPath"`
}

// ProvidersConfig carries per-deployment base URL overrides and model
// ID aliases, layered on top of the built-in model registry.
type ProvidersConfig struct {
	BedrockBaseURL string            `koanf:"bedrockBaseURL"`
	VertexBaseURL  string            `koanf:"vertexBaseURL"`
	FoundryBaseURL string            `koanf:"foundryBaseURL"`
	ModelAliases   map[string]string `koanf:"modelAliases"`
}

// MCPServerEntry configures one stdio MCP server.
type MCPServerEntry struct {
	Command string            `koanf:"command"`
	Args    []string          `koanf:"args"`
	Env     map[string]string `koanf:"env"`
}

// ToolSearchConfig governs progressive disclosure of MCP tool schemas.
type ToolSearchConfig struct {
	ThresholdRatio float64  `koanf:"thresholdRatio"`
	Backend        string   `koanf:"backend"`
	MaxResults     int      `koanf:"maxResults"`
	AlwaysLoad     []string `koanf:"alwaysLoad"`
}

// DisclosureConfig lists the project and user directories scanned for
// skills, rules, subagents, and output styles.
type DisclosureConfig struct {
	ProjectDir string `koanf:"projectDir"`
	UserDir    string `koanf:"userDir"`
}

// Defaults returns the configuration the runtime uses when no file or
// env override is present.
func Defaults() RuntimeConfig {
	return RuntimeConfig{
		Security: SecurityConfig{
			Mode:           "default",
			ResourceLimits: "default",
			SandboxEnabled: true,
		},
		Auth: AuthConfig{
			Chain:  []string{"environment", "cli"},
			EnvVar: "ANTHROPIC_API_KEY",
		},
		ToolSearch: ToolSearchConfig{
			ThresholdRatio: 0.10,
			Backend:        "regex",
			MaxResults:     5,
		},
		Disclosure: DisclosureConfig{
			ProjectDir: ".claude",
			UserDir:    "~/.claude",
		},
	}
}
