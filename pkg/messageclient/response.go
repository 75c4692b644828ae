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
	"encoding/json"

	"github.com/kaidrach/agentrun/pkg/tokens"
)

// ToolUse is one assembled tool invocation the model requested.
type ToolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// Response is a fully collected reply, whether it arrived in one HTTP
// body (Send, non-streaming) or was assembled from a stream (Stream,
// read to completion by the caller).
type Response struct {
	Text       string
	ToolUses   []ToolUse
	StopReason StopReason
	Usage      tokens.Usage
}

// wireResponse is the non-streaming messages API response body.
type wireResponse struct {
	Content    []wireContentOut  `json:"content"`
	StopReason string            `json:"stop_reason"`
	Usage      wireResponseUsage `json:"usage"`
}

type wireContentOut struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

func responseFromWire(w wireResponse) Response {
	resp := Response{StopReason: StopReason(w.StopReason), Usage: toTokensUsage(w.Usage)}
	for _, block := range w.Content {
		switch block.Type {
		case "text":
			resp.Text += block.Text
		case "tool_use":
			resp.ToolUses = append(resp.ToolUses, ToolUse{ID: block.ID, Name: block.Name, Input: block.Input})
		}
	}
	return resp
}

// collector accumulates Events from a stream into a Response, tracking
// in-flight tool_use input fragments by content-block arrival order.
type collector struct {
	resp       Response
	pending    *ToolUse
	pendingBuf []byte
}

func newCollector() *collector { return &collector{} }

func (c *collector) apply(evt Event) {
	switch evt.Kind {
	case EventText:
		c.resp.Text += evt.Text
	case EventToolUseStart:
		c.flushPending()
		c.pending = &ToolUse{ID: evt.ToolUseID, Name: evt.ToolUseName}
		c.pendingBuf = c.pendingBuf[:0]
	case EventToolUseInput:
		c.pendingBuf = append(c.pendingBuf, evt.InputDelta...)
	case EventToolUseEnd:
		c.flushPending()
	case EventMessageComplete:
		c.resp.StopReason = evt.StopReason
		c.resp.Usage = evt.Usage
	}
}

func (c *collector) flushPending() {
	if c.pending == nil {
		return
	}
	input := c.pendingBuf
	if len(input) == 0 {
		input = []byte("{}")
	}
	c.pending.Input = json.RawMessage(input)
	c.resp.ToolUses = append(c.resp.ToolUses, *c.pending)
	c.pending = nil
}

func (c *collector) result() Response {
	c.flushPending()
	return c.resp
}
