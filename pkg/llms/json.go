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
	"encoding/json"
	"fmt"
)

// Message serializes to the same tagged-union content shape the
// messages API uses on the wire, so a checkpointed session re-reads
// into exactly the history that produced it.

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWireMessage(m))
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	msg := Message{Role: Role(w.Role), Content: make([]ContentBlock, 0, len(w.Content))}
	for _, c := range w.Content {
		block, err := fromWireContent(c)
		if err != nil {
			return err
		}
		msg.Content = append(msg.Content, block)
	}
	*m = msg
	return nil
}

func fromWireContent(c wireContent) (ContentBlock, error) {
	switch c.Type {
	case "text":
		return TextBlock(c.Text), nil
	case "image":
		return ContentBlock{Kind: BlockImage, Image: fromWireImageSource(c.Source)}, nil
	case "tool_use":
		var input []byte
		if c.Input != nil {
			input = append([]byte(nil), *c.Input...)
		}
		return ToolUseBlock(c.ID, c.Name, input), nil
	case "tool_result":
		return ToolResultBlock(c.ToolUseID, c.Content, c.IsError), nil
	case "tool_reference":
		return ContentBlock{Kind: BlockToolReference, ToolName: c.Name}, nil
	case "tool_search_result":
		return ContentBlock{Kind: BlockToolSearchResult, ToolSearchNames: c.ToolNames, ToolSearchError: c.Error}, nil
	default:
		return ContentBlock{}, fmt.Errorf("llms: unknown content block type %q", c.Type)
	}
}

func fromWireImageSource(w *wireImageSource) ImageSource {
	if w == nil {
		return ImageSource{}
	}
	src := ImageSource{MediaType: w.MediaType}
	switch w.Type {
	case "base64":
		src.Kind = ImageSourceBase64
		src.Data = w.Data
	case "url":
		src.Kind = ImageSourceURL
		src.Data = w.URL
	case "file":
		src.Kind = ImageSourceFileID
		src.Data = w.FileID
	}
	return src
}
