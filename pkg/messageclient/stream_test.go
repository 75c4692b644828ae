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

package messageclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sseBody(lines ...string) *strings.Reader {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("data: ")
		b.WriteString(l)
		b.WriteString("\n\n")
	}
	return strings.NewReader(b.String())
}

func TestDecodeStream_TextDeltas(t *testing.T) {
	body := sseBody(
		`{"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`,
		`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":2}}`,
		`{"type":"message_stop"}`,
	)

	var events []Event
	err := decodeStream(body, func(e Event) bool { events = append(events, e); return true })
	require.NoError(t, err)

	coll := newCollector()
	for _, e := range events {
		coll.apply(e)
	}
	resp := coll.result()
	require.Equal(t, "Hello", resp.Text)
	require.Equal(t, StopEndTurn, resp.StopReason)
	require.EqualValues(t, 2, resp.Usage.OutputTokens)
}

func TestDecodeStream_ServerToolUsage(t *testing.T) {
	body := sseBody(
		`{"type":"message_start","message":{"usage":{"input_tokens":10,"output_tokens":0}}}`,
		`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":4,"server_tool_use":{"web_search_requests":2,"web_fetch_requests":1}}}`,
		`{"type":"message_stop"}`,
	)

	var events []Event
	err := decodeStream(body, func(e Event) bool { events = append(events, e); return true })
	require.NoError(t, err)

	final := events[len(events)-1]
	require.Equal(t, EventMessageComplete, final.Kind)
	require.NotNil(t, final.Usage.ServerToolUse)
	require.EqualValues(t, 2, final.Usage.ServerToolUse.WebSearchRequests)
	require.EqualValues(t, 1, final.Usage.ServerToolUse.WebFetchRequests)
}

func TestDecodeStream_ErrorEventStopsDecoding(t *testing.T) {
	body := sseBody(`{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`)

	var events []Event
	err := decodeStream(body, func(e Event) bool { events = append(events, e); return true })
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventError, events[0].Kind)
	require.Equal(t, "overloaded", events[0].ErrorMessage)
}

func TestDecodeStream_EmitFalseStopsEarly(t *testing.T) {
	body := sseBody(
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"a"}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"b"}}`,
	)

	var events []Event
	err := decodeStream(body, func(e Event) bool {
		events = append(events, e)
		return false
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestDecodeStream_PingIsIgnored(t *testing.T) {
	body := sseBody(
		`{"type":"ping"}`,
		`{"type":"message_stop"}`,
	)

	var events []Event
	err := decodeStream(body, func(e Event) bool { events = append(events, e); return true })
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventMessageComplete, events[0].Kind)
}

func TestCollector_ToolUseInputAssembled(t *testing.T) {
	coll := newCollector()
	coll.apply(Event{Kind: EventToolUseStart, ToolUseID: "tu_1", ToolUseName: "grep"})
	coll.apply(Event{Kind: EventToolUseInput, InputDelta: `{"q":`})
	coll.apply(Event{Kind: EventToolUseInput, InputDelta: `"x"}`})
	coll.apply(Event{Kind: EventToolUseEnd})

	resp := coll.result()
	require.Len(t, resp.ToolUses, 1)
	require.Equal(t, "grep", resp.ToolUses[0].Name)
	require.JSONEq(t, `{"q":"x"}`, string(resp.ToolUses[0].Input))
}
