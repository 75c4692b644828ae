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

// registerBuiltins populates r with the shipped Sonnet, Haiku and Opus 4.5
// model specs and assigns them as the default primary, small and
// reasoning models respectively.
func registerBuiltins(r *ModelRegistry) {
	r.Register(sonnet45())
	r.SetDefault(RolePrimary, "claude-sonnet-4-5-20250929")

	r.Register(haiku45())
	r.SetDefault(RoleSmall, "claude-haiku-4-5-20251001")

	r.Register(opus45())
	r.SetDefault(RoleReasoning, "claude-opus-4-5-20251101")
}

func sonnet45() ModelSpec {
	return ModelSpec{
		ID:     "claude-sonnet-4-5-20250929",
		Family: FamilySonnet,
		Version: ModelVersion{
			Version:         "4.5",
			Snapshot:        "20250929",
			KnowledgeCutoff: "2025-01",
		},
		Capabilities: Capabilities{
			ContextWindow:         200_000,
			ExtendedContextWindow: 1_000_000,
			MaxOutputTokens:       64_000,
			Thinking:              true,
			Vision:                true,
			ToolUse:               true,
			Caching:               true,
		},
		ProviderIDs: ProviderIDs{
			Anthropic: "claude-sonnet-4-5-20250929",
			Bedrock:   "anthropic.claude-sonnet-4-5-20250929-v1:0",
			Vertex:    "claude-sonnet-4-5@20250929",
			Foundry:   "claude-sonnet-4-5",
		},
	}
}

func haiku45() ModelSpec {
	return ModelSpec{
		ID:     "claude-haiku-4-5-20251001",
		Family: FamilyHaiku,
		Version: ModelVersion{
			Version:         "4.5",
			Snapshot:        "20251001",
			KnowledgeCutoff: "2025-01",
		},
		Capabilities: Capabilities{
			ContextWindow:   200_000,
			MaxOutputTokens: 64_000,
			Thinking:        true,
			Vision:          true,
			ToolUse:         true,
			Caching:         true,
		},
		ProviderIDs: ProviderIDs{
			Anthropic: "claude-haiku-4-5-20251001",
			Bedrock:   "anthropic.claude-haiku-4-5-20251001-v1:0",
			Vertex:    "claude-haiku-4-5@20251001",
			Foundry:   "claude-haiku-4-5",
		},
	}
}

func opus45() ModelSpec {
	return ModelSpec{
		ID:     "claude-opus-4-5-20251101",
		Family: FamilyOpus,
		Version: ModelVersion{
			Version:         "4.5",
			Snapshot:        "20251101",
			KnowledgeCutoff: "2025-05",
		},
		Capabilities: Capabilities{
			ContextWindow:   200_000,
			MaxOutputTokens: 64_000,
			Thinking:        true,
			Vision:          true,
			ToolUse:         true,
			Caching:         true,
		},
		ProviderIDs: ProviderIDs{
			Anthropic: "claude-opus-4-5-20251101",
			Bedrock:   "anthropic.claude-opus-4-5-20251101-v1:0",
			Vertex:    "claude-opus-4-5@20251101",
			Foundry:   "claude-opus-4-5",
		},
	}
}
