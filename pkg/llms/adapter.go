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

package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kaidrach/agentrun/pkg/auth"
)

// anthropicVersion is sent as the anthropic-version header on direct
// and OAuth requests only; Bedrock, Vertex and Foundry requests carry
// no such header (see requiresAnthropicVersionHeader).
const anthropicVersion = "2023-06-01"

const defaultBaseURL = "https://api.anthropic.com"

// baseURLer is implemented by strategies that override the default
// Anthropic-direct base URL (Bedrock, Vertex, Foundry). Strategies that
// don't implement it (direct, OAuth) use defaultBaseURL.
type baseURLer interface {
	BaseURL() string
}

// Adapter lowers a CreateMessageRequest into a bytes-level *http.Request
// for one deployment mode, selected by the supplied auth.Strategy.
type Adapter struct {
	strategy auth.Strategy
}

// NewAdapter returns an adapter bound to a single auth strategy.
func NewAdapter(strategy auth.Strategy) *Adapter {
	return &Adapter{strategy: strategy}
}

// Build encodes req, applies the strategy's headers/query/system-prompt
// transformations and auth credential, and returns a request ready to
// send. The caller is responsible for actually issuing it (and for the
// retry-after-refresh-on-401 policy, which lives in the message client).
func (a *Adapter) Build(ctx context.Context, req CreateMessageRequest, modelID string) (*http.Request, error) {
	if modelID == "" {
		modelID = req.Model
	}

	wire := a.toWire(req, modelID)
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("llms: marshal request: %w", err)
	}

	url := a.url(modelID, req.Stream)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llms: build request: %w", err)
	}
	httpReq.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if a.requiresAnthropicVersionHeader() {
		httpReq.Header.Set("anthropic-version", anthropicVersion)
	}

	name, value := a.strategy.AuthHeader()
	if name != "" {
		httpReq.Header.Set(name, value)
	}
	for k, v := range a.strategy.ExtraHeaders() {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// requiresAnthropicVersionHeader reports whether the bound strategy talks
// to the direct Anthropic API surface, where the version header is
// mandatory; cloud deployments (Bedrock, Vertex, Foundry) version their
// own gateway instead.
func (a *Adapter) requiresAnthropicVersionHeader() bool {
	switch a.strategy.(type) {
	case *auth.DirectStrategy, *auth.OAuthStrategy:
		return true
	default:
		return false
	}
}

// url composes the endpoint for the bound strategy. Bedrock addresses a
// model-specific invoke path rather than the shared /v1/messages route
// every other deployment mode uses.
func (a *Adapter) url(modelID string, stream bool) string {
	if bedrock, ok := a.strategy.(*auth.BedrockStrategy); ok {
		base := bedrock.BaseURL()
		if stream {
			return base + "/model/" + modelID + "/invoke-with-response-stream"
		}
		return base + "/model/" + modelID + "/invoke"
	}

	base := defaultBaseURL
	if b, ok := a.strategy.(baseURLer); ok {
		base = b.BaseURL()
	}
	url := base + "/v1/messages"
	if query, ok := a.strategy.URLQuery(); ok && query != "" {
		url += "?" + query
	}
	return url
}

// toWire converts the high-level request into the JSON shape the upstream
// messages API expects, applying the strategy's system-prompt rewrite.
func (a *Adapter) toWire(req CreateMessageRequest, modelID string) wireRequest {
	w := wireRequest{
		Model:     modelID,
		Messages:  make([]wireMessage, 0, len(req.Messages)),
		MaxTokens: req.MaxTokens,
		Stream:    req.Stream,
	}

	for _, msg := range req.Messages {
		w.Messages = append(w.Messages, toWireMessage(msg))
	}

	if system := a.strategy.PrepareSystemPrompt(req.System); len(system) > 0 {
		w.System = toWireSystem(system)
	}

	if len(req.Tools) > 0 {
		w.Tools = make([]wireTool, len(req.Tools))
		for i, t := range req.Tools {
			wt := wireTool{
				Name:         t.Name,
				Type:         t.Type,
				Description:  t.Description,
				MaxUses:      t.MaxUses,
				Strict:       t.Strict,
				DeferLoading: t.DeferLoading,
			}
			// A deferred tool is declared by reference only; its
			// schema is withheld until a tool search unlocks it.
			// Server-side tools never carry a schema at all.
			if t.Type == "" && !t.DeferLoading {
				wt.InputSchema = t.InputSchema
			}
			w.Tools[i] = wt
		}
	}

	if req.ToolChoice != nil {
		w.ToolChoice = &wireToolChoice{Type: string(req.ToolChoice.Kind), Name: req.ToolChoice.Name}
	}

	if req.Thinking != nil && req.Thinking.Enabled {
		w.Thinking = &wireThinking{Type: "enabled", BudgetTokens: req.Thinking.BudgetTokens}
	}

	if len(req.ContextManagement) > 0 {
		edits := make([]wireContextEdit, len(req.ContextManagement))
		for i, e := range req.ContextManagement {
			edits[i] = toWireContextEdit(e)
		}
		w.ContextManagement = &wireContextManagement{Edits: edits}
	}

	if req.OutputFormat != nil {
		w.OutputFormat = &wireOutputFormat{Type: req.OutputFormat.Type, Schema: req.OutputFormat.Schema}
	}

	if len(req.Metadata) > 0 {
		w.Metadata = req.Metadata
	}

	return w
}

func toWireSystem(blocks []auth.SystemPromptBlock) []wireSystemBlock {
	wire := make([]wireSystemBlock, len(blocks))
	for i, b := range blocks {
		wb := wireSystemBlock{Type: "text", Text: b.Text}
		if b.CacheControlEphem {
			wb.CacheControl = &wireCacheControl{Type: "ephemeral"}
		}
		wire[i] = wb
	}
	return wire
}

func toWireMessage(msg Message) wireMessage {
	content := make([]wireContent, 0, len(msg.Content))
	for _, block := range msg.Content {
		content = append(content, toWireContent(block))
	}
	return wireMessage{Role: string(msg.Role), Content: content}
}

func toWireContent(block ContentBlock) wireContent {
	switch block.Kind {
	case BlockText:
		return wireContent{Type: "text", Text: block.Text}
	case BlockImage:
		return wireContent{Type: "image", Source: toWireImageSource(block.Image)}
	case BlockToolUse:
		input := json.RawMessage(block.ToolInput)
		return wireContent{Type: "tool_use", ID: block.ToolUseID, Name: block.ToolName, Input: &input}
	case BlockToolResult:
		return wireContent{Type: "tool_result", ToolUseID: block.ToolUseID, Content: block.ToolOutput, IsError: block.ToolIsError}
	case BlockToolReference:
		return wireContent{Type: "tool_reference", Name: block.ToolName}
	case BlockToolSearchResult:
		return wireContent{Type: "tool_search_result", ToolNames: block.ToolSearchNames, Error: block.ToolSearchError}
	default:
		return wireContent{Type: "text", Text: block.Text}
	}
}

// toWireContextEdit lowers a declarative trim directive into the
// upstream API's tagged-union shape: clear_tool_uses carries an optional
// trigger (by input tokens or tool-use count) and an optional "keep"
// count; clear_thinking carries a "keep" that is either a turn count or
// the literal "all" when KeepLast is zero.
func toWireContextEdit(e ContextManagementEdit) wireContextEdit {
	edit := wireContextEdit{Type: string(e.Kind)}

	switch e.Kind {
	case EditClearToolUses:
		switch {
		case e.TriggerInputTokens > 0:
			edit.Trigger = &wireTaggedValue{Type: "input_tokens", Value: e.TriggerInputTokens}
		case e.TriggerToolUses > 0:
			edit.Trigger = &wireTaggedValue{Type: "tool_uses", Value: e.TriggerToolUses}
		}
		if e.KeepLast > 0 {
			edit.Keep = &wireTaggedValue{Type: "tool_uses", Value: e.KeepLast}
		}
	case EditClearThinkingBlock:
		if e.KeepLast > 0 {
			edit.Keep = &wireTaggedValue{Type: "thinking_turns", Value: e.KeepLast}
		} else {
			edit.Keep = &wireTaggedValue{Type: "all"}
		}
	}

	return edit
}

func toWireImageSource(src ImageSource) *wireImageSource {
	w := &wireImageSource{MediaType: src.MediaType}
	switch src.Kind {
	case ImageSourceBase64:
		w.Type = "base64"
		w.Data = src.Data
	case ImageSourceURL:
		w.Type = "url"
		w.URL = src.Data
	case ImageSourceFileID:
		w.Type = "file"
		w.FileID = src.Data
	}
	return w
}

// wire* types mirror the upstream messages API's JSON shape exactly;
// field ordering in struct tags is irrelevant to Go's encoder but is kept
// stable here for readability against the HTTP spec.
type wireRequest struct {
	Model             string                 `json:"model"`
	Messages          []wireMessage          `json:"messages"`
	MaxTokens         int                    `json:"max_tokens"`
	System            []wireSystemBlock      `json:"system,omitempty"`
	Tools             []wireTool             `json:"tools,omitempty"`
	ToolChoice        *wireToolChoice        `json:"tool_choice,omitempty"`
	Thinking          *wireThinking          `json:"thinking,omitempty"`
	ContextManagement *wireContextManagement `json:"context_management,omitempty"`
	OutputFormat      *wireOutputFormat      `json:"output_format,omitempty"`
	Metadata          map[string]string      `json:"metadata,omitempty"`
	Stream            bool                   `json:"stream,omitempty"`
}

type wireSystemBlock struct {
	Type         string            `json:"type"`
	Text         string            `json:"text"`
	CacheControl *wireCacheControl `json:"cache_control,omitempty"`
}

type wireCacheControl struct {
	Type string `json:"type"`
}

type wireMessage struct {
	Role    string        `json:"role"`
	Content []wireContent `json:"content"`
}

type wireContent struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	Source *wireImageSource `json:"source,omitempty"`

	ID    string           `json:"id,omitempty"`
	Name  string           `json:"name,omitempty"`
	Input *json.RawMessage `json:"input,omitempty"`

	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`

	ToolNames []string `json:"tool_names,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type wireImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
	FileID    string `json:"file_id,omitempty"`
}

type wireTool struct {
	Name         string         `json:"name"`
	Type         string         `json:"type,omitempty"`
	Description  string         `json:"description,omitempty"`
	InputSchema  map[string]any `json:"input_schema,omitempty"`
	MaxUses      int            `json:"max_uses,omitempty"`
	Strict       bool           `json:"strict,omitempty"`
	DeferLoading bool           `json:"defer_loading,omitempty"`
}

type wireToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type wireThinking struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens,omitempty"`
}

type wireContextManagement struct {
	Edits []wireContextEdit `json:"edits"`
}

type wireContextEdit struct {
	Type    string           `json:"type"`
	Trigger *wireTaggedValue `json:"trigger,omitempty"`
	Keep    *wireTaggedValue `json:"keep,omitempty"`
}

// wireTaggedValue is the {"type": "...", "value": N} shape the upstream
// API uses for ClearTrigger/KeepConfig/KeepThinkingConfig; Value is
// omitted for the "all" variant, which carries only a type tag.
type wireTaggedValue struct {
	Type  string `json:"type"`
	Value int    `json:"value,omitempty"`
}

type wireOutputFormat struct {
	Type   string         `json:"type"`
	Schema map[string]any `json:"schema,omitempty"`
}
