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

	"github.com/kaidrach/agentrun/pkg/llms"
	"github.com/kaidrach/agentrun/pkg/tokens"
)

func TestEstimator_CountIsPositiveForNonEmptyText(t *testing.T) {
	est, err := tokens.NewEstimator()
	require.NoError(t, err)

	require.Zero(t, est.Count(""))
	require.Greater(t, est.Count("the quick brown fox jumps over the lazy dog"), uint64(0))
}

func TestEstimator_CountMessagesIncludesOverhead(t *testing.T) {
	est, err := tokens.NewEstimator()
	require.NoError(t, err)

	messages := []llms.Message{
		{Role: llms.RoleUser, Content: []llms.ContentBlock{llms.TextBlock("hello there")}},
	}

	total := est.CountMessages(messages)
	require.Greater(t, total, est.Count("hello there"))
}

func TestEstimator_EstimateRequestIncludesSystemAndTools(t *testing.T) {
	est, err := tokens.NewEstimator()
	require.NoError(t, err)

	req := llms.CreateMessageRequest{
		Messages: []llms.Message{
			{Role: llms.RoleUser, Content: []llms.ContentBlock{llms.TextBlock("hi")}},
		},
		Tools: []llms.ToolDefinition{{Name: "grep", Description: "search files"}},
	}

	withoutTools := est.EstimateRequest(llms.CreateMessageRequest{Messages: req.Messages})
	withTools := est.EstimateRequest(req)
	require.Greater(t, withTools, withoutTools)
}
