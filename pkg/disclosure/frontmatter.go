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

package disclosure

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// ParsedDocument splits a frontmatter-prefixed document into its
// decoded header and the remaining body text.
type ParsedDocument struct {
	Frontmatter map[string]any
	Body        string
}

// ParseFrontmatter decodes a "---\n...yaml...\n---\nbody" document. The
// frontmatter delimiter must open the document; a document without one
// is rejected rather than treated as bodyless content.
func ParseFrontmatter(content string) (ParsedDocument, error) {
	if !strings.HasPrefix(content, "---") {
		return ParsedDocument{}, &errs.ConfigError{Message: "document must have YAML frontmatter (starting with ---)"}
	}

	rest := content[3:]
	end := strings.Index(rest, "---")
	if end < 0 {
		return ParsedDocument{}, &errs.ConfigError{Message: "frontmatter not properly terminated with ---"}
	}

	fmStr := strings.TrimSpace(rest[:end])
	body := strings.TrimSpace(rest[end+3:])

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(fmStr), &fm); err != nil {
		return ParsedDocument{}, &errs.ConfigError{Message: "failed to parse frontmatter: " + err.Error()}
	}
	if fm == nil {
		fm = map[string]any{}
	}

	return ParsedDocument{Frontmatter: fm, Body: body}, nil
}

// StripFrontmatter removes a leading "---\n...\n---" block and returns
// the trimmed remainder, or the content unchanged if it has none.
func StripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	rest := content[3:]
	end := strings.Index(rest, "---")
	if end < 0 {
		return content
	}
	return strings.TrimSpace(rest[end+3:])
}

// frontmatterString reads a string field out of a decoded frontmatter
// map, defaulting to "" when absent or of the wrong type.
func frontmatterString(fm map[string]any, key string) string {
	v, ok := fm[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// frontmatterStringSlice reads a []string field, accepting either a
// YAML sequence or a single scalar treated as a one-element list.
func frontmatterStringSlice(fm map[string]any, key string) []string {
	v, ok := fm[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{t}
	default:
		return nil
	}
}

func frontmatterBool(fm map[string]any, key string, def bool) bool {
	v, ok := fm[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}
