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

package llms_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/auth"
	"github.com/kaidrach/agentrun/pkg/llms"
)

func basicRequest() llms.CreateMessageRequest {
	return llms.CreateMessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
		Messages: []llms.Message{
			{Role: llms.RoleUser, Content: []llms.ContentBlock{llms.TextBlock("hello")}},
		},
	}
}

func decodeBody(t *testing.T, body io.ReadCloser) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func TestAdapter_DirectStrategy(t *testing.T) {
	strategy := auth.NewDirectStrategy("sk-ant-api-test")
	a := llms.NewAdapter(strategy)

	req, err := a.Build(context.Background(), basicRequest(), "claude-sonnet-4-5-20250929")
	require.NoError(t, err)

	require.Equal(t, "https://api.anthropic.com/v1/messages", req.URL.String())
	require.Equal(t, "sk-ant-api-test", req.Header.Get("x-api-key"))
	require.Equal(t, "2023-06-01", req.Header.Get("anthropic-version"))

	body := decodeBody(t, req.Body)
	require.Equal(t, "claude-sonnet-4-5-20250929", body["model"])
	require.EqualValues(t, 1024, body["max_tokens"])
}

func TestAdapter_OAuthStrategyPrependsSystemPrompt(t *testing.T) {
	strategy := auth.NewOAuthStrategy(auth.OAuthCredential{AccessToken: "sk-ant-oat01-test"})
	a := llms.NewAdapter(strategy)

	req, err := a.Build(context.Background(), basicRequest(), "")
	require.NoError(t, err)
	require.Equal(t, "Bearer sk-ant-oat01-test", req.Header.Get("Authorization"))
	require.Contains(t, req.Header.Get("anthropic-beta"), "oauth")
	require.Contains(t, req.URL.RawQuery, "beta=true")

	body := decodeBody(t, req.Body)
	system, ok := body["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
}

func TestAdapter_BedrockStrategyUsesInvokePath(t *testing.T) {
	strategy := auth.NewBedrockStrategy("us-east-1")
	a := llms.NewAdapter(strategy)

	req, err := a.Build(context.Background(), basicRequest(), "anthropic.claude-sonnet-4-5-20250929-v1:0")
	require.NoError(t, err)

	require.Contains(t, req.URL.String(), "bedrock-runtime.us-east-1.amazonaws.com")
	require.Contains(t, req.URL.String(), "/model/anthropic.claude-sonnet-4-5-20250929-v1:0/invoke")
	require.Empty(t, req.Header.Get("anthropic-version"))
}

func TestAdapter_BedrockStreamingUsesStreamPath(t *testing.T) {
	strategy := auth.NewBedrockStrategy("us-east-1")
	a := llms.NewAdapter(strategy)

	r := basicRequest()
	r.Stream = true
	req, err := a.Build(context.Background(), r, "anthropic.claude-sonnet-4-5-20250929-v1:0")
	require.NoError(t, err)
	require.Contains(t, req.URL.String(), "/invoke-with-response-stream")
}

func TestAdapter_FoundryStrategyUsesAPIVersionQuery(t *testing.T) {
	strategy := auth.NewFoundryStrategy("my-resource", "claude-sonnet").WithAPIKey("azure-key")
	a := llms.NewAdapter(strategy)

	req, err := a.Build(context.Background(), basicRequest(), "claude-sonnet-4-5")
	require.NoError(t, err)
	require.Equal(t, "azure-key", req.Header.Get("api-key"))
	require.Contains(t, req.URL.RawQuery, "api-version")
}

func TestAdapter_ToolsAndToolChoiceEncode(t *testing.T) {
	strategy := auth.NewDirectStrategy("sk-ant-api-test")
	a := llms.NewAdapter(strategy)

	r := basicRequest()
	r.Tools = []llms.ToolDefinition{{Name: "grep", Description: "search files", InputSchema: map[string]any{"type": "object"}}}
	r.ToolChoice = &llms.ToolChoice{Kind: llms.ToolChoiceTool, Name: "grep"}

	req, err := a.Build(context.Background(), r, "")
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)

	toolChoice, ok := body["tool_choice"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "tool", toolChoice["type"])
	require.Equal(t, "grep", toolChoice["name"])
}

func TestAdapter_DeferredAndServerToolsEncode(t *testing.T) {
	strategy := auth.NewDirectStrategy("sk-ant-api-test")
	a := llms.NewAdapter(strategy)

	r := basicRequest()
	r.Tools = []llms.ToolDefinition{
		{Name: "mcp__fs_read_file", Description: "read a file", InputSchema: map[string]any{"type": "object"}, DeferLoading: true},
		llms.WebSearchTool(5),
	}

	req, err := a.Build(context.Background(), r, "")
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 2)

	deferred := tools[0].(map[string]any)
	require.Equal(t, true, deferred["defer_loading"])
	require.NotContains(t, deferred, "input_schema")

	search := tools[1].(map[string]any)
	require.Equal(t, "web_search_20250305", search["type"])
	require.Equal(t, "web_search", search["name"])
	require.EqualValues(t, 5, search["max_uses"])
	require.NotContains(t, search, "input_schema")
}

func TestAdapter_ToolUseBlockNeverOmitsInput(t *testing.T) {
	block := llms.ToolUseBlock("call-1", "grep", nil)
	require.Equal(t, []byte("{}"), block.ToolInput)
}
