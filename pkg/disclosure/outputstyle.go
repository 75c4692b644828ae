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
	"path/filepath"
	"strings"
)

// OutputStyle customizes the agent's behavior by modifying the system
// prompt. KeepCodingInstructions decides whether the runtime's
// standard coding instructions are layered underneath the style's
// prompt (true) or replaced by it entirely (false).
type OutputStyle struct {
	BaseIndex
	KeepCodingInstructions bool
}

func NewOutputStyle(name, description, prompt string) OutputStyle {
	return OutputStyle{
		BaseIndex: BaseIndex{
			IndexName:        name,
			IndexDescription: description,
			IndexSourceType:  SourceUser,
			IndexSource:      InMemorySource(prompt),
		},
		KeepCodingInstructions: true,
	}
}

func (o OutputStyle) WithSourceType(st SourceType) OutputStyle {
	o.IndexSourceType = st
	return o
}

func (o OutputStyle) WithKeepCodingInstructions(keep bool) OutputStyle {
	o.KeepCodingInstructions = keep
	return o
}

// IsDefault reports whether this is the null/passthrough style.
func (o OutputStyle) IsDefault() bool {
	return o.IndexName == "default" && o.IndexSource.IsInMemory() && o.IndexSource.content == ""
}

var _ Index = OutputStyle{}

type OutputStyleLoader struct{}

func NewOutputStyleLoader() OutputStyleLoader { return OutputStyleLoader{} }

func (OutputStyleLoader) ParseContent(content string, path string) (OutputStyle, error) {
	doc, err := ParseFrontmatter(content)
	if err != nil {
		return OutputStyle{}, err
	}

	name := frontmatterString(doc.Frontmatter, "name")
	if name == "" && path != "" {
		name = fileStem(path)
	}

	style := OutputStyle{
		BaseIndex: BaseIndex{
			IndexName:        name,
			IndexDescription: frontmatterString(doc.Frontmatter, "description"),
			IndexSourceType:  SourceTypeFromString(frontmatterString(doc.Frontmatter, "source")),
		},
		KeepCodingInstructions: frontmatterBool(doc.Frontmatter, "keep-coding-instructions", true),
	}

	if path != "" {
		style.IndexSource = FileSource(path)
	} else {
		style.IndexSource = InMemorySource(doc.Body)
	}

	return style, nil
}

func (OutputStyleLoader) FileFilter(path string) bool {
	return filepath.Ext(path) == ".md"
}

var _ DocumentLoader[OutputStyle] = OutputStyleLoader{}

// DefaultStyle is the null/passthrough style: standard mode with full
// coding instructions, not a customization.
func DefaultStyle() OutputStyle {
	return NewOutputStyle("default", "Standard mode with full coding instructions", "").
		WithSourceType(SourceBuiltin).
		WithKeepCodingInstructions(true)
}

// ExplanatoryStyle adds educational insights between coding tasks.
func ExplanatoryStyle() OutputStyle {
	return NewOutputStyle("explanatory", "Educational mode that explains implementation choices", explanatoryPrompt).
		WithSourceType(SourceBuiltin).
		WithKeepCodingInstructions(true)
}

// LearningStyle asks the user to implement pieces of code themselves.
func LearningStyle() OutputStyle {
	return NewOutputStyle("learning", "Interactive learning mode with guided exercises", learningPrompt).
		WithSourceType(SourceBuiltin).
		WithKeepCodingInstructions(true)
}

// BuiltinStyles returns every style shipped with the runtime.
func BuiltinStyles() []OutputStyle {
	return []OutputStyle{DefaultStyle(), ExplanatoryStyle(), LearningStyle()}
}

// FindBuiltinStyle looks up a built-in style by name, case-insensitive.
func FindBuiltinStyle(name string) (OutputStyle, bool) {
	lower := strings.ToLower(name)
	for _, s := range BuiltinStyles() {
		if s.IndexName == lower {
			return s, true
		}
	}
	return OutputStyle{}, false
}

const explanatoryPrompt = `# Explanatory Mode

When working on tasks, provide educational insights that help the user
understand your approach.

After completing significant code changes, add a brief Insights
section explaining why you chose this approach over alternatives, what
patterns or idioms you used and why they fit, and any trade-offs you
considered.`

const learningPrompt = `# Learning Mode

Work collaboratively with the user: explain the approach, then ask the
user to implement specific pieces themselves rather than writing the
whole change yourself. Review what they write and offer corrections.`
