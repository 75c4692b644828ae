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

import "path/filepath"

// RuleDefinition is a path-scoped instruction: content that should
// only be considered when the agent is operating on a file matching
// Paths (or unconditionally, when Paths is nil).
type RuleDefinition struct {
	BaseIndex
	Paths []string
}

// NewRule builds a global rule (applies to every file) from inline
// content.
func NewRule(name, description, content string) RuleDefinition {
	return RuleDefinition{
		BaseIndex: BaseIndex{
			IndexName:        name,
			IndexDescription: description,
			IndexSourceType:  SourceUser,
			IndexSource:      InMemorySource(content),
		},
	}
}

func (r RuleDefinition) WithSourceType(st SourceType) RuleDefinition {
	r.IndexSourceType = st
	return r
}

func (r RuleDefinition) WithPaths(paths []string) RuleDefinition {
	r.Paths = paths
	return r
}

func (r RuleDefinition) PathPatterns() []string { return r.Paths }

func (r RuleDefinition) MatchesPath(path string) bool {
	return MatchesAnyPattern(r.Paths, path)
}

var _ PathMatched = RuleDefinition{}
var _ Index = RuleDefinition{}

// RuleLoader parses a rule file: a YAML header with a name/description
// pair plus an optional glob scope, followed by the rule body.
type RuleLoader struct{}

func NewRuleLoader() RuleLoader { return RuleLoader{} }

func (RuleLoader) ParseContent(content string, path string) (RuleDefinition, error) {
	doc, err := ParseFrontmatter(content)
	if err != nil {
		return RuleDefinition{}, err
	}

	name := frontmatterString(doc.Frontmatter, "name")
	if name == "" && path != "" {
		name = fileStem(path)
	}

	rule := RuleDefinition{
		BaseIndex: BaseIndex{
			IndexName:        name,
			IndexDescription: frontmatterString(doc.Frontmatter, "description"),
			IndexSourceType:  SourceTypeFromString(frontmatterString(doc.Frontmatter, "source")),
		},
		Paths: frontmatterStringSlice(doc.Frontmatter, "paths"),
	}

	if path != "" {
		rule.IndexSource = FileSource(path)
	} else {
		rule.IndexSource = InMemorySource(doc.Body)
	}

	return rule, nil
}

func (RuleLoader) FileFilter(path string) bool {
	return filepath.Ext(path) == ".md"
}

func fileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

var _ DocumentLoader[RuleDefinition] = RuleLoader{}
