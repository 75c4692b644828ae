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

package toolsearch_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/mcp"
	"github.com/kaidrach/agentrun/pkg/tool"
	"github.com/kaidrach/agentrun/pkg/toolsearch"
)

func TestSearchTool_FindsMatch(t *testing.T) {
	m := toolsearch.NewManager(toolsearch.DefaultConfig(), nil)
	m.BuildIndexFromTools([]mcp.ToolDefinition{
		{Name: "mcp__weather_get_weather", Description: "Get current weather for a location"},
	})

	st := toolsearch.NewSearchTool(m)
	in, _ := json.Marshal(map[string]any{"query": "weather"})
	result, err := st.Execute(tool.ExecContext{Context: context.Background()}, in)

	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Contains(t, result.Output, "mcp__weather_get_weather")
}

func TestSearchTool_UnlocksHits(t *testing.T) {
	config := toolsearch.DefaultConfig().WithContextWindow(1000).WithThreshold(0.0)
	m := toolsearch.NewManager(config, nil)
	m.BuildIndexFromTools([]mcp.ToolDefinition{
		{Name: "mcp__weather_get_weather", Description: "Get current weather for a location"},
		{Name: "mcp__database_query", Description: "Execute database query"},
	})

	st := toolsearch.NewSearchTool(m)
	in, _ := json.Marshal(map[string]any{"query": "weather"})
	_, err := st.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)

	prepared := m.PrepareTools()
	require.Len(t, prepared.Immediate, 1)
	require.Equal(t, "mcp__weather_get_weather", prepared.Immediate[0].Name)
}

func TestSearchTool_RequiresQuery(t *testing.T) {
	m := toolsearch.NewManager(toolsearch.DefaultConfig(), nil)
	st := toolsearch.NewSearchTool(m)

	in, _ := json.Marshal(map[string]any{"query": ""})
	result, err := st.Execute(tool.ExecContext{Context: context.Background()}, in)

	require.NoError(t, err)
	require.True(t, result.IsError)
}
