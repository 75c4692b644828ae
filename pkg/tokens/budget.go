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

package tokens

import "math"

// TokenBudget is one turn's (or one run's cumulative) token spend,
// broken out by the categories the API bills separately.
type TokenBudget struct {
	InputTokens      uint64 `json:"input_tokens"`
	CacheReadTokens  uint64 `json:"cache_read_tokens"`
	CacheWriteTokens uint64 `json:"cache_write_tokens"`
	OutputTokens     uint64 `json:"output_tokens"`

	WebSearchRequests uint64 `json:"web_search_requests,omitempty"`
	WebFetchRequests  uint64 `json:"web_fetch_requests,omitempty"`
}

// BudgetFromUsage converts a response's usage block into a TokenBudget.
func BudgetFromUsage(usage Usage) TokenBudget {
	return TokenBudget{
		InputTokens:       usage.InputTokens,
		CacheReadTokens:   usage.cacheRead(),
		CacheWriteTokens:  usage.cacheWrite(),
		OutputTokens:      usage.OutputTokens,
		WebSearchRequests: usage.webSearch(),
		WebFetchRequests:  usage.webFetch(),
	}
}

// ContextUsage is the portion of this budget counted against the context
// window: everything except generated output.
func (b TokenBudget) ContextUsage() uint64 {
	return b.InputTokens + b.CacheReadTokens + b.CacheWriteTokens
}

// Total is context usage plus output tokens.
func (b TokenBudget) Total() uint64 {
	return b.ContextUsage() + b.OutputTokens
}

// IsEmpty reports whether no tokens were spent at all.
func (b TokenBudget) IsEmpty() bool {
	return b.ContextUsage() == 0 && b.OutputTokens == 0
}

func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return math.MaxUint64
	}
	return sum
}

// Add accumulates other into a copy of b and returns it; overflow
// saturates at math.MaxUint64 rather than wrapping.
func (b TokenBudget) Add(other TokenBudget) TokenBudget {
	return TokenBudget{
		InputTokens:       saturatingAdd(b.InputTokens, other.InputTokens),
		CacheReadTokens:   saturatingAdd(b.CacheReadTokens, other.CacheReadTokens),
		CacheWriteTokens:  saturatingAdd(b.CacheWriteTokens, other.CacheWriteTokens),
		OutputTokens:      saturatingAdd(b.OutputTokens, other.OutputTokens),
		WebSearchRequests: saturatingAdd(b.WebSearchRequests, other.WebSearchRequests),
		WebFetchRequests:  saturatingAdd(b.WebFetchRequests, other.WebFetchRequests),
	}
}
