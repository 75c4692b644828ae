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
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kaidrach/agentrun/pkg/security"
)

const (
	defaultGrepMaxResults   = 100
	defaultGrepContextLines = 2
	grepMaxFileSize         = 10 * 1024 * 1024
)

// GrepTool searches file contents under a security.Context root using
// a regular expression, with optional surrounding context lines.
type GrepTool struct {
	sc *security.Context
}

// NewGrepTool builds a GrepTool confined to sc.
func NewGrepTool(sc *security.Context) *GrepTool { return &GrepTool{sc: sc} }

func (t *GrepTool) Name() string { return "Grep" }

func (t *GrepTool) Description() string {
	return "Search file contents for a regular expression, optionally restricted to files matching a glob, with surrounding context lines."
}

func (t *GrepTool) InputSchema() map[string]any {
	return object(map[string]any{
		"pattern":          str("Regular expression (RE2 syntax)."),
		"path":             str("Directory to search under, relative to the working directory. Defaults to the root."),
		"glob":             str("Glob restricting which file names are searched, e.g. \"*.go\"."),
		"case_insensitive": boolean("Case-insensitive match. Defaults to false."),
		"context_lines":    number("Lines of context before and after each match. Defaults to 2."),
		"max_results":      number("Maximum number of matches returned. Defaults to 100."),
	}, "pattern")
}

type grepInput struct {
	Pattern         string `json:"pattern"`
	Path            string `json:"path"`
	Glob            string `json:"glob"`
	CaseInsensitive bool   `json:"case_insensitive"`
	ContextLines    int    `json:"context_lines"`
	MaxResults      int    `json:"max_results"`
}

func (t *GrepTool) Execute(ectx ExecContext, raw json.RawMessage) (Result, error) {
	var in grepInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if in.Pattern == "" {
		return ErrorResult("pattern is required"), nil
	}

	expr := in.Pattern
	if in.CaseInsensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return ErrorResult(fmt.Sprintf("invalid pattern: %v", err)), nil
	}

	contextLines := defaultGrepContextLines
	if in.ContextLines > 0 {
		contextLines = in.ContextLines
	}
	maxResults := defaultGrepMaxResults
	if in.MaxResults > 0 {
		maxResults = in.MaxResults
	}

	sp, err := t.sc.Resolve(ectx.Context, in.Path)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	var out strings.Builder
	matches := 0

	walkErr := filepath.WalkDir(sp.String(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if matches >= maxResults {
			return filepath.SkipAll
		}
		if d.IsDir() {
			return nil
		}
		if in.Glob != "" {
			if ok, _ := filepath.Match(in.Glob, d.Name()); !ok {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil || info.Size() > grepMaxFileSize {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		var lines []string
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}

		rel, _ := filepath.Rel(sp.String(), path)
		for i, line := range lines {
			if matches >= maxResults {
				break
			}
			if !re.MatchString(line) {
				continue
			}
			matches++
			lo := i - contextLines
			if lo < 0 {
				lo = 0
			}
			hi := i + contextLines
			if hi >= len(lines) {
				hi = len(lines) - 1
			}
			fmt.Fprintf(&out, "%s:%d\n", rel, i+1)
			for j := lo; j <= hi; j++ {
				marker := "  "
				if j == i {
					marker = "> "
				}
				fmt.Fprintf(&out, "%s%6d\t%s\n", marker, j+1, lines[j])
			}
			out.WriteString("\n")
		}
		return nil
	})
	if walkErr != nil {
		return ErrorResult(walkErr.Error()), nil
	}

	if matches == 0 {
		return OKResult("no matches"), nil
	}
	return OKResult(strings.TrimSuffix(out.String(), "\n")), nil
}
