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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/llms"
	"github.com/kaidrach/agentrun/pkg/tokens"
)

func sonnetSpec(t *testing.T) llms.ModelSpec {
	t.Helper()
	spec, ok := llms.DefaultRegistry().Resolve(context.Background(), "sonnet")
	require.True(t, ok)
	return spec
}

func TestContextWindow_StatusBands(t *testing.T) {
	w := tokens.NewContextWindow(sonnetSpec(t), false)

	w.Update(100_000)
	require.Equal(t, tokens.WindowOK, w.Status().Kind)

	w.Update(180_000)
	require.Equal(t, tokens.WindowWarning, w.Status().Kind)

	w.Update(195_000)
	require.Equal(t, tokens.WindowCritical, w.Status().Kind)

	w.Update(250_000)
	require.Equal(t, tokens.WindowExceeded, w.Status().Kind)
}

func TestContextWindow_ExtendedContext(t *testing.T) {
	spec := sonnetSpec(t)

	standard := tokens.NewContextWindow(spec, false)
	require.EqualValues(t, 200_000, standard.Limit())

	extended := tokens.NewContextWindow(spec, true)
	require.EqualValues(t, 1_000_000, extended.Limit())
}

func TestContextWindow_CanFitAndRemaining(t *testing.T) {
	w := tokens.NewContextWindow(sonnetSpec(t), false)
	w.Update(190_000)

	require.True(t, w.CanFit(5_000))
	require.False(t, w.CanFit(20_000))
	require.EqualValues(t, 10_000, w.Remaining())
}

func TestContextWindow_PeakTracksMaximum(t *testing.T) {
	w := tokens.NewContextWindow(sonnetSpec(t), false)
	w.Update(50_000)
	w.Update(30_000)
	require.EqualValues(t, 50_000, w.Peak())
}
