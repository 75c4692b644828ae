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
	"context"
	"fmt"
)

// Index is the progressive-disclosure primitive: enough metadata to
// list an entry cheaply in a system prompt, plus a way to load its
// full content on demand.
type Index interface {
	Named
	SourceType() SourceType
	Source() ContentSource
	Description() string

	// Priority defaults to SourceType().Priority() for any index that
	// embeds BaseIndex; it exists on the interface so registries don't
	// need a type switch to order entries.
	Priority() int
}

// ToSummaryLine renders an index entry as a single compact line
// ("- name: description"), the format injected into system prompts.
func ToSummaryLine(idx Index) string {
	return fmt.Sprintf("- %s: %s", idx.Name(), idx.Description())
}

// LoadContent resolves idx's full content through its source.
func LoadContent(ctx context.Context, idx Index) (string, error) {
	return idx.Source().Load(ctx)
}

// BaseIndex is an embeddable implementation of Index's common fields;
// concrete index types (SkillIndex, RuleIndex, SubagentIndex,
// OutputStyleIndex) embed it and add their own domain fields.
type BaseIndex struct {
	IndexName        string
	IndexDescription string
	IndexSourceType  SourceType
	IndexSource      ContentSource
}

func (b BaseIndex) Name() string           { return b.IndexName }
func (b BaseIndex) Description() string    { return b.IndexDescription }
func (b BaseIndex) SourceType() SourceType { return b.IndexSourceType }
func (b BaseIndex) Source() ContentSource  { return b.IndexSource }
func (b BaseIndex) Priority() int          { return b.IndexSourceType.Priority() }
