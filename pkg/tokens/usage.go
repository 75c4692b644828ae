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

// Package tokens accounts for context-window usage and model spend: a
// per-turn token budget, a context window with warning/critical
// thresholds, a preflight check before sending a request, and a cost
// calculator keyed by model pricing.
package tokens

// Usage mirrors the messages API's response usage object. Cache fields
// are pointers because the API omits them entirely on requests that
// never touched prompt caching.
type Usage struct {
	InputTokens              uint64
	OutputTokens             uint64
	CacheReadInputTokens     *uint64
	CacheCreationInputTokens *uint64
	ServerToolUse            *ServerToolUsage
}

// ServerToolUsage counts requests the provider executed server-side on
// the model's behalf (the client only declares these tools).
type ServerToolUsage struct {
	WebSearchRequests uint64
	WebFetchRequests  uint64
}

func (u Usage) webSearch() uint64 {
	if u.ServerToolUse == nil {
		return 0
	}
	return u.ServerToolUse.WebSearchRequests
}

func (u Usage) webFetch() uint64 {
	if u.ServerToolUse == nil {
		return 0
	}
	return u.ServerToolUse.WebFetchRequests
}

func (u Usage) cacheRead() uint64 {
	if u.CacheReadInputTokens == nil {
		return 0
	}
	return *u.CacheReadInputTokens
}

func (u Usage) cacheWrite() uint64 {
	if u.CacheCreationInputTokens == nil {
		return 0
	}
	return *u.CacheCreationInputTokens
}
