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

package disclosure_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/disclosure"
)

func TestRule_GlobalMatchesAll(t *testing.T) {
	global := disclosure.NewRule("global", "Global rule", "")
	require.True(t, disclosure.IsGlobal(global))
	require.True(t, global.MatchesPath("any/file.rs"))
	require.True(t, global.MatchesPath("other/path.ts"))
}

func TestRule_PatternMatching(t *testing.T) {
	rustOnly := disclosure.NewRule("rust", "Rust rule", "").WithPaths([]string{"**/*.rs"})
	require.False(t, disclosure.IsGlobal(rustOnly))
	require.True(t, rustOnly.MatchesPath("src/lib.rs"))
	require.True(t, rustOnly.MatchesPath("tests/integration.rs"))
	require.False(t, rustOnly.MatchesPath("src/lib.ts"))
}

func TestRule_MultiplePatterns(t *testing.T) {
	web := disclosure.NewRule("web", "Web rule", "").WithPaths([]string{"**/*.ts", "**/*.tsx"})
	require.True(t, web.MatchesPath("src/app.ts"))
	require.True(t, web.MatchesPath("components/Button.tsx"))
	require.False(t, web.MatchesPath("src/lib.rs"))
}

func TestRule_EmptyPatternsMatchNothing(t *testing.T) {
	empty := disclosure.NewRule("empty", "Empty rule", "").WithPaths([]string{})
	require.False(t, disclosure.IsGlobal(empty))
	require.False(t, empty.MatchesPath("any/file.rs"))
}
