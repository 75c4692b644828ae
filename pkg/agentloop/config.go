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

// Package agentloop drives the turn/iteration state machine that sends
// a session's messages to a model, dispatches whatever tool_use blocks
// come back, and keeps going until the model stops asking for tools,
// an iteration or time budget runs out, or the context window would
// overflow. It wires pkg/messageclient for the wire round trip,
// pkg/tool for dispatch, pkg/tokens for preflight and compaction, and
// pkg/contextassembler for the system prompt.
package agentloop

import (
	"time"

	"github.com/kaidrach/agentrun/pkg/llms"
	"github.com/kaidrach/agentrun/pkg/resilience"
	"github.com/kaidrach/agentrun/pkg/tool"
)

// Config governs one Loop's behavior across every turn it runs.
type Config struct {
	Model    string
	Fallback resilience.FallbackConfig

	MaxIterations int
	Timeout       time.Duration
	ToolTimeout   time.Duration

	MaxTokens  int
	ToolAccess tool.Access

	AutoCompact      bool
	CompactThreshold float64
	CompactKeepLast  int

	// ServerTools are provider-executed tool declarations (web search,
	// web fetch) appended to every request; the provider runs them and
	// reports their request counts in the response usage.
	ServerTools []llms.ToolDefinition
}

// DefaultConfig returns the loop's defaults for model, everything else
// matching the upstream client's own defaults: 100 max iterations, a
// ten-minute outer timeout, a two-minute per-tool timeout, and
// compaction enabled at 85% context utilization.
func DefaultConfig(model string) Config {
	return Config{
		Model:            model,
		MaxIterations:    100,
		Timeout:          600 * time.Second,
		ToolTimeout:      120 * time.Second,
		MaxTokens:        llms.DefaultMaxTokens,
		ToolAccess:       tool.AllTools(),
		AutoCompact:      true,
		CompactThreshold: 0.85,
		CompactKeepLast:  3,
	}
}
