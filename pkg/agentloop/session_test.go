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

package agentloop_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/agentloop"
	"github.com/kaidrach/agentrun/pkg/llms"
	"github.com/kaidrach/agentrun/pkg/tokens"
)

func TestSession_ForkCopiesHistoryUnderNewID(t *testing.T) {
	session := agentloop.NewSession(newTestTracker(t))
	require.NotEmpty(t, session.ID)

	session.Append(llms.Message{Role: llms.RoleUser, Content: []llms.ContentBlock{llms.TextBlock("hello")}})
	session.Append(llms.Message{Role: llms.RoleAssistant, Content: []llms.ContentBlock{
		llms.ToolUseBlock("tu_1", "grep", []byte(`{"pattern":"x"}`)),
	}})
	session.Tracker.Record(tokens.Usage{InputTokens: 100, OutputTokens: 50})

	fork := session.Fork()
	require.NotEqual(t, session.ID, fork.ID)
	require.Equal(t, session.Messages, fork.Messages)
	require.Equal(t, session.Tracker.Cumulative(), fork.Tracker.Cumulative())

	// Divergence after the fork point stays on one side only.
	fork.Append(llms.Message{Role: llms.RoleUser, Content: []llms.ContentBlock{llms.TextBlock("forked")}})
	fork.Messages[1].Content[0].ToolInput[0] = 'X'
	fork.Tracker.Record(tokens.Usage{InputTokens: 10})

	require.Len(t, session.Messages, 2)
	require.Equal(t, byte('{'), session.Messages[1].Content[0].ToolInput[0])
	require.Equal(t, uint64(100), session.Tracker.Cumulative().InputTokens)
	require.Equal(t, uint64(110), fork.Tracker.Cumulative().InputTokens)
}

func TestSession_CheckpointRoundTrip(t *testing.T) {
	session := agentloop.NewSession(newTestTracker(t))
	session.Append(llms.Message{Role: llms.RoleUser, Content: []llms.ContentBlock{llms.TextBlock("hello")}})
	session.Tracker.Record(tokens.Usage{InputTokens: 1000, OutputTokens: 200})

	data, err := json.Marshal(session)
	require.NoError(t, err)

	restored := agentloop.NewSession(newTestTracker(t))
	require.NoError(t, json.Unmarshal(data, restored))

	require.Equal(t, session.ID, restored.ID)
	require.Equal(t, session.Messages, restored.Messages)
	require.Equal(t, session.Tracker.Cumulative(), restored.Tracker.Cumulative())
	require.Equal(t, session.Tracker.ContextWindow().Usage(), restored.Tracker.ContextWindow().Usage())
}
