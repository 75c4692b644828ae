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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kaidrach/agentrun/pkg/tokens"
)

// wireStreamEvent is the envelope every upstream SSE "data:" line decodes
// into; only the fields matching Type are populated.
type wireStreamEvent struct {
	Type string `json:"type"`

	Index        int                  `json:"index"`
	ContentBlock *wireContentBlock    `json:"content_block,omitempty"`
	Delta        *wireDelta           `json:"delta,omitempty"`
	Usage        *wireResponseUsage   `json:"usage,omitempty"`
	Message      *wireMessageEnvelope `json:"message,omitempty"`
	Error        *wireErrorBody       `json:"error,omitempty"`
}

type wireContentBlock struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type wireDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}

type wireResponseUsage struct {
	InputTokens              uint64             `json:"input_tokens"`
	OutputTokens             uint64             `json:"output_tokens"`
	CacheReadInputTokens     *uint64            `json:"cache_read_input_tokens,omitempty"`
	CacheCreationInputTokens *uint64            `json:"cache_creation_input_tokens,omitempty"`
	ServerToolUse            *wireServerToolUse `json:"server_tool_use,omitempty"`
}

type wireServerToolUse struct {
	WebSearchRequests uint64 `json:"web_search_requests"`
	WebFetchRequests  uint64 `json:"web_fetch_requests"`
}

type wireMessageEnvelope struct {
	StopReason string             `json:"stop_reason,omitempty"`
	Usage      *wireResponseUsage `json:"usage,omitempty"`
}

type wireErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// decodeStream reads an SSE body line by line, translating each "data:"
// payload into zero or more Events. A "message_start" event's usage
// seeds the running usage, so its input and cache token counts survive
// a "message_delta" that omits them; output_tokens comes from the last
// "message_delta" that carries a usage object. "message_stop" reports
// the usage gathered so far.
func decodeStream(body io.Reader, emit func(Event) bool) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		stopReason string
		usage      wireResponseUsage
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var wireEvt wireStreamEvent
		if err := json.Unmarshal([]byte(payload), &wireEvt); err != nil {
			return fmt.Errorf("messageclient: decode stream event: %w", err)
		}

		switch wireEvt.Type {
		case "content_block_start":
			if wireEvt.ContentBlock != nil && wireEvt.ContentBlock.Type == "tool_use" {
				if !emit(Event{Kind: EventToolUseStart, ToolUseID: wireEvt.ContentBlock.ID, ToolUseName: wireEvt.ContentBlock.Name}) {
					return nil
				}
			}
		case "content_block_delta":
			if wireEvt.Delta == nil {
				continue
			}
			switch wireEvt.Delta.Type {
			case "text_delta":
				if !emit(Event{Kind: EventText, Text: wireEvt.Delta.Text}) {
					return nil
				}
			case "input_json_delta":
				if !emit(Event{Kind: EventToolUseInput, InputDelta: wireEvt.Delta.PartialJSON}) {
					return nil
				}
			}
		case "content_block_stop":
			if !emit(Event{Kind: EventToolUseEnd}) {
				return nil
			}
		case "message_start":
			if wireEvt.Message != nil && wireEvt.Message.Usage != nil {
				usage = *wireEvt.Message.Usage
			}
		case "message_delta":
			if wireEvt.Delta != nil && wireEvt.Delta.StopReason != "" {
				stopReason = wireEvt.Delta.StopReason
			}
			if wireEvt.Usage != nil {
				usage.OutputTokens = wireEvt.Usage.OutputTokens
				if wireEvt.Usage.InputTokens > 0 {
					usage.InputTokens = wireEvt.Usage.InputTokens
				}
				if wireEvt.Usage.CacheReadInputTokens != nil {
					usage.CacheReadInputTokens = wireEvt.Usage.CacheReadInputTokens
				}
				if wireEvt.Usage.CacheCreationInputTokens != nil {
					usage.CacheCreationInputTokens = wireEvt.Usage.CacheCreationInputTokens
				}
				if wireEvt.Usage.ServerToolUse != nil {
					usage.ServerToolUse = wireEvt.Usage.ServerToolUse
				}
			}
		case "message_stop":
			if !emit(Event{
				Kind:       EventMessageComplete,
				StopReason: StopReason(stopReason),
				Usage:      toTokensUsage(usage),
			}) {
				return nil
			}
		case "error":
			if wireEvt.Error != nil {
				emit(Event{Kind: EventError, ErrorMessage: wireEvt.Error.Message, ErrorType: wireEvt.Error.Type})
			}
			return nil
		case "ping":
			// keep-alive, nothing to surface
		}
	}

	return scanner.Err()
}

func toTokensUsage(w wireResponseUsage) tokens.Usage {
	usage := tokens.Usage{
		InputTokens:              w.InputTokens,
		OutputTokens:             w.OutputTokens,
		CacheReadInputTokens:     w.CacheReadInputTokens,
		CacheCreationInputTokens: w.CacheCreationInputTokens,
	}
	if w.ServerToolUse != nil {
		usage.ServerToolUse = &tokens.ServerToolUsage{
			WebSearchRequests: w.ServerToolUse.WebSearchRequests,
			WebFetchRequests:  w.ServerToolUse.WebFetchRequests,
		}
	}
	return usage
}
