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

func TestOutputStyle_New(t *testing.T) {
	style := disclosure.NewOutputStyle("test", "A test style", "Test prompt")

	require.Equal(t, "test", style.Name())
	require.Equal(t, "A test style", style.Description())
	require.Equal(t, disclosure.SourceUser, style.SourceType())
	require.True(t, style.KeepCodingInstructions)
}

func TestOutputStyle_Builder(t *testing.T) {
	style := disclosure.NewOutputStyle("custom", "Custom style", "Custom prompt").
		WithSourceType(disclosure.SourceProject).
		WithKeepCodingInstructions(true)

	require.Equal(t, disclosure.SourceProject, style.SourceType())
	require.True(t, style.KeepCodingInstructions)
}

func TestDefaultStyle(t *testing.T) {
	style := disclosure.DefaultStyle()
	require.True(t, style.IsDefault())
	require.Equal(t, "default", style.Name())
	require.True(t, style.KeepCodingInstructions)
}

func TestFindBuiltinStyle(t *testing.T) {
	style, ok := disclosure.FindBuiltinStyle("EXPLANATORY")
	require.True(t, ok)
	require.Equal(t, "explanatory", style.Name())

	_, ok = disclosure.FindBuiltinStyle("nonexistent")
	require.False(t, ok)
}

func TestSourceType_Display(t *testing.T) {
	require.Equal(t, "builtin", disclosure.SourceBuiltin.String())
	require.Equal(t, "user", disclosure.SourceUser.String())
	require.Equal(t, "project", disclosure.SourceProject.String())
	require.Equal(t, "managed", disclosure.SourceManaged.String())
}
