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

// Package llms prepares requests for the upstream messages API: the wire
// vocabulary (messages, content blocks, tool definitions), the model
// registry (capabilities, aliases, per-deployment IDs), and the adapter
// that turns a high-level request into a bytes-level HTTP request for a
// chosen authentication strategy.
package llms

import (
	"encoding/base64"

	"github.com/kaidrach/agentrun/pkg/auth"
)

// Role identifies the speaker of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockKind tags the variant carried by a ContentBlock.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockImage
	BlockToolUse
	BlockToolResult
	BlockToolReference
	BlockToolSearchResult
)

// ImageSourceKind distinguishes how image bytes are addressed.
type ImageSourceKind int

const (
	ImageSourceBase64 ImageSourceKind = iota
	ImageSourceURL
	ImageSourceFileID
)

// ImageSource points at inline base64 data, a remote URL, or a previously
// uploaded Files API identifier.
type ImageSource struct {
	Kind      ImageSourceKind
	MediaType string // e.g. "image/png"; required for Base64
	Data      string // base64 payload, URL, or file-id depending on Kind
}

// ContentBlock is the core's sum type for one unit of message content.
// Exactly one field group applies, selected by Kind.
type ContentBlock struct {
	Kind BlockKind

	Text string // BlockText

	Image ImageSource // BlockImage

	ToolUseID   string // BlockToolUse, BlockToolResult
	ToolName    string // BlockToolUse, BlockToolReference
	ToolInput   []byte // BlockToolUse: raw JSON object, never nil
	ToolOutput  string // BlockToolResult
	ToolIsError bool   // BlockToolResult

	ToolSearchNames []string // BlockToolSearchResult: matched tool names
	ToolSearchError string   // BlockToolSearchResult: set instead of names on failure
}

// TextBlock is a convenience constructor for the common case.
func TextBlock(text string) ContentBlock { return ContentBlock{Kind: BlockText, Text: text} }

// ToolResultBlock builds a tool_result content block.
func ToolResultBlock(toolUseID, output string, isError bool) ContentBlock {
	return ContentBlock{Kind: BlockToolResult, ToolUseID: toolUseID, ToolOutput: output, ToolIsError: isError}
}

// ToolUseBlock builds a tool_use content block. input must be a JSON object;
// a nil or empty input is replaced by {} so the field is never omitted.
func ToolUseBlock(id, name string, input []byte) ContentBlock {
	if len(input) == 0 {
		input = []byte("{}")
	}
	return ContentBlock{Kind: BlockToolUse, ToolUseID: id, ToolName: name, ToolInput: input}
}

// ImageBlockFromBytes builds an inline base64 image block, detecting the
// media type from the image's magic number when mediaType is empty.
func ImageBlockFromBytes(data []byte, mediaType string) ContentBlock {
	if mediaType == "" {
		mediaType = DetectImageMediaType(data)
	}
	return ContentBlock{
		Kind: BlockImage,
		Image: ImageSource{
			Kind:      ImageSourceBase64,
			MediaType: mediaType,
			Data:      base64.StdEncoding.EncodeToString(data),
		},
	}
}

// Message is a single turn: a role plus an ordered list of content blocks.
type Message struct {
	Role    Role
	Content []ContentBlock
}

// Clone deep-copies the message, including each block's owned slices,
// so a forked history can't alias the original's tool inputs.
func (m Message) Clone() Message {
	content := make([]ContentBlock, len(m.Content))
	for i, b := range m.Content {
		if b.ToolInput != nil {
			b.ToolInput = append([]byte(nil), b.ToolInput...)
		}
		if b.ToolSearchNames != nil {
			b.ToolSearchNames = append([]string(nil), b.ToolSearchNames...)
		}
		content[i] = b
	}
	return Message{Role: m.Role, Content: content}
}

// ToolDefinition describes a tool the model may invoke, in the shape the
// messages API expects (name, description, JSON-Schema input_schema).
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any

	// Type is set only for server-side tools the provider executes
	// itself (e.g. "web_search_20250305"); such definitions carry no
	// input schema.
	Type    string
	MaxUses int

	// Strict asks the provider to enforce InputSchema exactly.
	Strict bool

	// DeferLoading declares this tool by reference only; its full
	// schema is withheld until the model asks for it via tool search.
	DeferLoading bool
}

// WebSearchTool declares the provider-executed web-search tool.
// maxUses of zero leaves the cap unset.
func WebSearchTool(maxUses int) ToolDefinition {
	return ToolDefinition{Name: "web_search", Type: "web_search_20250305", MaxUses: maxUses}
}

// WebFetchTool declares the provider-executed web-fetch tool.
func WebFetchTool(maxUses int) ToolDefinition {
	return ToolDefinition{Name: "web_fetch", Type: "web_fetch_20250910", MaxUses: maxUses}
}

// ToolChoice constrains how the model selects among declared tools.
type ToolChoiceKind string

const (
	ToolChoiceAuto ToolChoiceKind = "auto"
	ToolChoiceAny  ToolChoiceKind = "any"
	ToolChoiceTool ToolChoiceKind = "tool"
	ToolChoiceNone ToolChoiceKind = "none"
)

type ToolChoice struct {
	Kind ToolChoiceKind
	Name string // set when Kind == ToolChoiceTool
}

// ThinkingConfig requests extended reasoning with a token budget.
type ThinkingConfig struct {
	Enabled      bool
	BudgetTokens int
}

// ContextManagementEditKind selects a server-side context-trim strategy.
type ContextManagementEditKind string

const (
	EditClearToolUses      ContextManagementEditKind = "clear_tool_uses_20250919"
	EditClearThinkingBlock ContextManagementEditKind = "clear_thinking_20251015"
)

// ContextManagementEdit is a declarative, server-enforced trim directive.
// The core passes these through unchanged; it never applies them locally.
type ContextManagementEdit struct {
	Kind ContextManagementEditKind

	// Trigger: clear once the matching counter crosses this value.
	TriggerInputTokens int
	TriggerToolUses    int

	// KeepLast bounds what survives the edit; 0 for clear-thinking means
	// "clear all" rather than "keep none".
	KeepLast int
}

// OutputFormat asks the provider to constrain generation to a schema.
type OutputFormat struct {
	Type   string // "json_schema" or provider-specific equivalent
	Schema map[string]any
}

// CreateMessageRequest is the high-level, provider-agnostic request the
// core builds once per turn; the adapter lowers it to bytes for whichever
// deployment mode is active.
type CreateMessageRequest struct {
	Model     string
	Messages  []Message
	MaxTokens int

	System []auth.SystemPromptBlock

	Tools      []ToolDefinition
	ToolChoice *ToolChoice

	Thinking *ThinkingConfig

	ContextManagement []ContextManagementEdit
	OutputFormat      *OutputFormat

	Metadata map[string]string

	Stream bool
}
