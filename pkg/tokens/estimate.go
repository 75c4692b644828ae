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

package tokens

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/kaidrach/agentrun/pkg/llms"
)

// Estimator produces a preflight token estimate for a turn before it is
// sent. Claude does not publish a tokenizer, so cl100k_base is used as a
// close approximation, matching the estimation bias of other clients in
// this space rather than the provider's own (undisclosed) tokenizer.
type Estimator struct {
	mu       sync.RWMutex
	encoding *tiktoken.Tiktoken
}

var (
	sharedEncoding   *tiktoken.Tiktoken
	sharedEncodingMu sync.Mutex
)

// NewEstimator builds an Estimator, lazily initializing and caching the
// shared cl100k_base encoding across all callers.
func NewEstimator() (*Estimator, error) {
	sharedEncodingMu.Lock()
	defer sharedEncodingMu.Unlock()

	if sharedEncoding == nil {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("tokens: load cl100k_base encoding: %w", err)
		}
		sharedEncoding = enc
	}
	return &Estimator{encoding: sharedEncoding}, nil
}

// Count returns the estimated token count for a single string.
func (e *Estimator) Count(text string) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(len(e.encoding.Encode(text, nil, nil)))
}

// tokensPerMessage approximates the fixed per-message framing overhead
// (role marker, separators) the provider's tokenizer adds on top of the
// raw text content.
const tokensPerMessage = 4

// CountMessages estimates the total input-token cost of a message list,
// including a fixed per-message overhead and the trailing assistant
// priming tokens.
func (e *Estimator) CountMessages(messages []llms.Message) uint64 {
	var total uint64
	for _, msg := range messages {
		total += tokensPerMessage
		for _, block := range msg.Content {
			switch block.Kind {
			case llms.BlockText:
				total += e.Count(block.Text)
			case llms.BlockToolResult:
				total += e.Count(block.ToolOutput)
			case llms.BlockToolUse:
				total += e.Count(string(block.ToolInput))
			}
		}
	}
	return total + tokensPerMessage
}

// EstimateRequest estimates the full input-token cost of req: system
// prompt, every message, and tool definitions' JSON schemas.
func (e *Estimator) EstimateRequest(req llms.CreateMessageRequest) uint64 {
	var total uint64
	for _, block := range req.System {
		total += e.Count(block.Text)
	}
	total += e.CountMessages(req.Messages)
	for _, tool := range req.Tools {
		schema, _ := json.Marshal(tool.InputSchema)
		total += e.Count(tool.Name) + e.Count(tool.Description) + e.Count(string(schema))
	}
	return total
}
