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

package tool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kaidrach/agentrun/pkg/security"
)

const defaultGlobMaxResults = 200

// GlobTool lists files under a security.Context root whose path
// matches a glob pattern, most-recently-modified first.
type GlobTool struct {
	sc *security.Context
}

// NewGlobTool builds a GlobTool confined to sc.
func NewGlobTool(sc *security.Context) *GlobTool { return &GlobTool{sc: sc} }

func (t *GlobTool) Name() string { return "Glob" }

func (t *GlobTool) Description() string {
	return "List files matching a glob pattern (e.g. \"**/*.go\"), most recently modified first."
}

func (t *GlobTool) InputSchema() map[string]any {
	return generateSchema[globInput]()
}

type globInput struct {
	Pattern string `json:"pattern" jsonschema:"required,description=Glob pattern, matched against the path relative to the search root."`
	Path    string `json:"path,omitempty" jsonschema:"description=Directory to search under, relative to the working directory. Defaults to the root."`
}

type globMatch struct {
	rel     string
	modTime int64
}

func (t *GlobTool) Execute(ectx ExecContext, raw json.RawMessage) (Result, error) {
	var in globInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if in.Pattern == "" {
		return ErrorResult("pattern is required"), nil
	}

	sp, err := t.sc.Resolve(ectx.Context, in.Path)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	var matches []globMatch
	walkErr := filepath.WalkDir(sp.String(), func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(sp.String(), path)
		rel = filepath.ToSlash(rel)
		if !globMatches(in.Pattern, rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		matches = append(matches, globMatch{rel: rel, modTime: info.ModTime().UnixNano()})
		return nil
	})
	if walkErr != nil {
		return ErrorResult(walkErr.Error()), nil
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].modTime > matches[j].modTime })
	if len(matches) > defaultGlobMaxResults {
		matches = matches[:defaultGlobMaxResults]
	}

	if len(matches) == 0 {
		return OKResult("no matches"), nil
	}
	var out strings.Builder
	for _, m := range matches {
		out.WriteString(m.rel)
		out.WriteString("\n")
	}
	return OKResult(strings.TrimSuffix(out.String(), "\n")), nil
}

// globMatches supports "**" as a path-spanning wildcard in addition to
// filepath.Match's single-segment "*", since the standard library glob
// cannot cross path separators on its own.
func globMatches(pattern, rel string) bool {
	if !strings.Contains(pattern, "**") {
		ok, _ := filepath.Match(pattern, rel)
		return ok
	}
	re, err := regexp.Compile("^" + globToRegexp(pattern) + "$")
	if err != nil {
		return false
	}
	return re.MatchString(rel)
}

// globToRegexp translates a glob using "**", "*", and "?" into an
// equivalent regexp, escaping every other regexp metacharacter.
func globToRegexp(pattern string) string {
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
				if i+1 < len(runes) && runes[i+1] == '/' {
					i++
				}
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '.', '+', '(', ')', '|', '^', '$', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
			b.WriteRune(runes[i])
		default:
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}
