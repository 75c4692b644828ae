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

package tokens_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/tokens"
)

func TestTokenBudget_ContextUsageAndTotal(t *testing.T) {
	b := tokens.TokenBudget{InputTokens: 100, CacheReadTokens: 200_000, CacheWriteTokens: 0, OutputTokens: 500}

	require.EqualValues(t, 200_100, b.ContextUsage())
	require.EqualValues(t, 200_600, b.Total())
}

func TestTokenBudget_Add(t *testing.T) {
	a := tokens.TokenBudget{InputTokens: 100, CacheReadTokens: 50, CacheWriteTokens: 25, OutputTokens: 200}
	b := tokens.TokenBudget{InputTokens: 100, CacheReadTokens: 50, CacheWriteTokens: 25, OutputTokens: 200}

	sum := a.Add(b)
	require.EqualValues(t, 200, sum.InputTokens)
	require.EqualValues(t, 100, sum.CacheReadTokens)
}

func TestTokenBudget_IsEmpty(t *testing.T) {
	require.True(t, tokens.TokenBudget{}.IsEmpty())
	require.False(t, tokens.TokenBudget{OutputTokens: 1}.IsEmpty())
}

func TestBudgetFromUsage(t *testing.T) {
	cacheRead := uint64(50)
	usage := tokens.Usage{InputTokens: 100, OutputTokens: 20, CacheReadInputTokens: &cacheRead}

	b := tokens.BudgetFromUsage(usage)
	require.EqualValues(t, 100, b.InputTokens)
	require.EqualValues(t, 50, b.CacheReadTokens)
	require.EqualValues(t, 0, b.CacheWriteTokens)
}

func TestBudgetFromUsage_ServerToolCounters(t *testing.T) {
	usage := tokens.Usage{
		InputTokens:   100,
		ServerToolUse: &tokens.ServerToolUsage{WebSearchRequests: 3, WebFetchRequests: 1},
	}

	b := tokens.BudgetFromUsage(usage)
	require.EqualValues(t, 3, b.WebSearchRequests)
	require.EqualValues(t, 1, b.WebFetchRequests)

	sum := b.Add(b)
	require.EqualValues(t, 6, sum.WebSearchRequests)
	require.EqualValues(t, 2, sum.WebFetchRequests)
}
