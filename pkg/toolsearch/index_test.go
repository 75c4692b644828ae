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

package toolsearch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"arg1": map[string]any{"type": "string", "description": "First argument"},
		},
	}
}

func TestIndexEntry_Creation(t *testing.T) {
	entry := NewIndexEntry("mcp__filesystem_read_file", "filesystem", "read_file", "Read a file from disk", testSchema())

	require.Equal(t, "mcp__filesystem_read_file", entry.QualifiedName)
	require.Equal(t, "filesystem", entry.ServerName)
	require.Equal(t, "read_file", entry.ToolName)
	require.Greater(t, entry.EstimatedTokens, 0)
}

func TestIndexEntry_SearchableText(t *testing.T) {
	entry := NewIndexEntry("mcp__weather_get_weather", "weather", "get_weather", "Get weather for location", testSchema())
	text := entry.SearchableText()

	require.Contains(t, text, "get_weather")
	require.Contains(t, text, "weather")
	require.Contains(t, text, "location")
}

func TestIndex_Operations(t *testing.T) {
	index := NewIndex()
	require.True(t, index.IsEmpty())

	entry := NewIndexEntry("mcp__server_test", "server", "test", "Test tool", testSchema())
	tokens := entry.EstimatedTokens
	index.Add(entry)

	require.Equal(t, 1, index.Len())
	require.Equal(t, tokens, index.TotalTokens())
	_, ok := index.Get("mcp__server_test")
	require.True(t, ok)

	index.Clear()
	require.True(t, index.IsEmpty())
	require.Equal(t, 0, index.TotalTokens())
}
