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

package agentloop

import (
	"github.com/kaidrach/agentrun/pkg/messageclient"
	"github.com/kaidrach/agentrun/pkg/tokens"
)

// EventKind tags the variant carried by an Event. These are a turn's
// own lifecycle events, distinct from (and built atop) the lower-level
// messageclient.Event stream: ToolStart/ToolEnd bracket actual tool
// dispatch, not the model's construction of a tool_use block over the
// wire.
type EventKind int

const (
	EventStart EventKind = iota
	EventText
	EventToolStart
	EventToolEnd
	EventComplete
	EventError
)

// ToolCall records one dispatched tool invocation for the final
// CompleteResult.
type ToolCall struct {
	ID      string
	Name    string
	Input   []byte
	Output  string
	IsError bool
}

// CompleteResult is the loop's final outcome, also carried by the last
// Event a streaming run emits.
type CompleteResult struct {
	Text       string
	ToolCalls  []ToolCall
	Iterations int
	Usage      tokens.Usage
	StopReason messageclient.StopReason
}

// Event is the event-sink protocol's sum type. Exactly one field
// group applies, selected by Kind.
type Event struct {
	Kind EventKind

	Text string // EventText

	ToolID      string // EventToolStart, EventToolEnd
	ToolName    string // EventToolStart
	ToolOutput  string // EventToolEnd
	ToolIsError bool   // EventToolEnd

	Complete CompleteResult // EventComplete

	Err error // EventError
}
