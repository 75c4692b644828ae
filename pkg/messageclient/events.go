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

// Package messageclient sends a llms.CreateMessageRequest over HTTP and
// decodes the response, either as a single collected Response (Send) or
// as a lazy, finite, non-restartable stream of Events (Stream). It wires
// pkg/httpclient for transport, pkg/llms.Adapter for request/response
// shape, and pkg/resilience for retry/circuit-breaking; a 401 triggers
// exactly one credential refresh and resend.
package messageclient

import "github.com/kaidrach/agentrun/pkg/tokens"

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	EventText EventKind = iota
	EventToolUseStart
	EventToolUseInput
	EventToolUseEnd
	EventMessageComplete
	EventError
)

// StopReason is why the model stopped generating.
type StopReason string

const (
	StopEndTurn      StopReason = "end_turn"
	StopMaxTokens    StopReason = "max_tokens"
	StopStopSequence StopReason = "stop_sequence"
	StopToolUse      StopReason = "tool_use"
	StopPauseTurn    StopReason = "pause_turn"
	StopRefusal      StopReason = "refusal"
)

// Event is the streaming protocol's sum type. Exactly one field group
// applies, selected by Kind.
type Event struct {
	Kind EventKind

	Text string // EventText: partial assistant text delta

	ToolUseID   string // EventToolUseStart
	ToolUseName string // EventToolUseStart
	InputDelta  string // EventToolUseInput: partial JSON fragment

	StopReason StopReason   // EventMessageComplete
	Usage      tokens.Usage // EventMessageComplete

	ErrorStatus  int    // EventError
	ErrorMessage string // EventError
	ErrorType    string // EventError
}
