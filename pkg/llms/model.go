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

package llms

// ModelFamily groups model snapshots that share a lineage (sonnet, haiku,
// opus) for alias resolution and "give me the latest" lookups.
type ModelFamily int

const (
	FamilySonnet ModelFamily = iota
	FamilyHaiku
	FamilyOpus
)

func (f ModelFamily) String() string {
	switch f {
	case FamilySonnet:
		return "sonnet"
	case FamilyHaiku:
		return "haiku"
	case FamilyOpus:
		return "opus"
	default:
		return "unknown"
	}
}

// aliases returns the bare family names that resolve to this family's
// current default snapshot, e.g. "sonnet" -> claude-sonnet-4-5-20250929.
func (f ModelFamily) aliases() []string {
	return []string{f.String()}
}

// ModelRole names a slot the runtime fills with a default model: the
// primary conversational model, a small/fast model for cheap subtasks,
// and a reasoning-heavy model for harder turns.
type ModelRole int

const (
	RolePrimary ModelRole = iota
	RoleSmall
	RoleReasoning
)

// ProviderKind is a deployment mode a model ID can be addressed under.
type ProviderKind int

const (
	ProviderAnthropic ProviderKind = iota
	ProviderBedrock
	ProviderVertex
	ProviderFoundry
)

// ProviderIDs maps a canonical model ID to the identifier each deployment
// mode expects in its own request. A nil/empty entry means the model is
// not offered under that deployment.
type ProviderIDs struct {
	Anthropic string
	Bedrock   string
	Vertex    string
	Foundry   string
}

// ForProvider returns the deployment-specific ID and whether one is set.
func (p ProviderIDs) ForProvider(kind ProviderKind) (string, bool) {
	var id string
	switch kind {
	case ProviderAnthropic:
		id = p.Anthropic
	case ProviderBedrock:
		id = p.Bedrock
	case ProviderVertex:
		id = p.Vertex
	case ProviderFoundry:
		id = p.Foundry
	}
	return id, id != ""
}

// ModelVersion records the human-facing version string plus the
// machine-facing snapshot date and training cutoff, when known.
type ModelVersion struct {
	Version         string
	Snapshot        string
	KnowledgeCutoff string
}

// LongContextThreshold is the cumulative-context point (input tokens plus
// cache read/write) past which a model's long-context pricing multiplier
// applies.
const LongContextThreshold = 200_000

// Capabilities records what a model supports, independent of pricing.
type Capabilities struct {
	ContextWindow         uint64
	ExtendedContextWindow uint64 // 0 means "no extended window offered"
	MaxOutputTokens       uint64
	Thinking              bool
	Vision                bool
	ToolUse               bool
	Caching               bool
}

// EffectiveContext returns the context window to use for preflight
// checks: the extended window when the caller requested it and the model
// offers one, else the base window.
func (c Capabilities) EffectiveContext(extendedEnabled bool) uint64 {
	if extendedEnabled && c.ExtendedContextWindow > 0 {
		return c.ExtendedContextWindow
	}
	return c.ContextWindow
}

// SupportsExtendedContext reports whether the model offers a window wider
// than its base ContextWindow.
func (c Capabilities) SupportsExtendedContext() bool {
	return c.ExtendedContextWindow > 0
}

// ModelSpec is one entry in the model registry: identity, capability
// table, and the per-deployment IDs needed to address it. Pricing lives
// in the token accountant, keyed by ID, to keep this package free of a
// dependency on the cost-calculation package.
type ModelSpec struct {
	ID           string
	Family       ModelFamily
	Version      ModelVersion
	Capabilities Capabilities
	ProviderIDs  ProviderIDs
}

// ProviderID returns the model's identifier for the given deployment mode.
func (m ModelSpec) ProviderID(kind ProviderKind) (string, bool) {
	return m.ProviderIDs.ForProvider(kind)
}
