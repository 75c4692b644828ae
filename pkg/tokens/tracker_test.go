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

func newTestTracker(t *testing.T, extended bool) *tokens.Tracker {
	t.Helper()
	return tokens.NewTracker(sonnetSpec(t), extended, tokens.NewPricing(3.0, 15.0))
}

func TestTracker_PreflightOK(t *testing.T) {
	tr := newTestTracker(t, false)
	result := tr.Check(50_000)
	require.True(t, result.ShouldProceed())
	require.Equal(t, tokens.PreflightOK, result.Kind)
}

func TestTracker_PreflightWarning(t *testing.T) {
	tr := newTestTracker(t, false)
	result := tr.Check(180_000)
	require.True(t, result.ShouldProceed())
	require.Equal(t, tokens.PreflightWarning, result.Kind)
}

func TestTracker_PreflightExceeded(t *testing.T) {
	tr := newTestTracker(t, false)
	result := tr.Check(250_000)
	require.False(t, result.ShouldProceed())
	require.Equal(t, tokens.PreflightExceeded, result.Kind)
}

func TestTracker_ExtendedContextNotExceeded(t *testing.T) {
	tr := newTestTracker(t, true)
	result := tr.Check(500_000)
	require.True(t, result.ShouldProceed())
}

func TestTracker_RecordAccumulatesAndPricesCost(t *testing.T) {
	tr := newTestTracker(t, false)

	tr.Record(tokens.Usage{InputTokens: 100_000, OutputTokens: 100_000})
	require.EqualValues(t, 100_000, tr.ContextWindow().Usage())
	require.EqualValues(t, 100_000, tr.Cumulative().InputTokens)
	require.EqualValues(t, 100_000, tr.LastTurn().OutputTokens)

	cost, _ := tr.TotalCost().Float64()
	require.InDelta(t, 1.8, cost, 0.01)
}

func TestTracker_ResetOverwritesWindowUsage(t *testing.T) {
	tr := newTestTracker(t, false)
	tr.Record(tokens.Usage{InputTokens: 100_000})
	tr.Reset(10_000)
	require.EqualValues(t, 10_000, tr.ContextWindow().Usage())
}
