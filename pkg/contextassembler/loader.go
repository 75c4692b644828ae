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

package contextassembler

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// maxImportDepth bounds recursive "@path" import resolution inside
// CLAUDE.md-equivalent documents, so a cyclic or runaway import chain
// can't loop forever.
const maxImportDepth = 5

// MemoryLoader reads CLAUDE.md and CLAUDE.local.md from a directory,
// resolving "@path" import directives recursively.
type MemoryLoader struct{}

func NewMemoryLoader() *MemoryLoader { return &MemoryLoader{} }

// LoadAll reads both well-known filenames under dir, skipping any that
// aren't present.
func (l *MemoryLoader) LoadAll(ctx context.Context, dir string) (MemoryContent, error) {
	content := MemoryContent{}

	if text, ok, err := l.loadDocument(dir, "CLAUDE.md"); err != nil {
		return MemoryContent{}, err
	} else if ok {
		content.ClaudeMD = append(content.ClaudeMD, text)
	}

	if text, ok, err := l.loadDocument(dir, "CLAUDE.local.md"); err != nil {
		return MemoryContent{}, err
	} else if ok {
		content.LocalMD = append(content.LocalMD, text)
	}

	return content, nil
}

func (l *MemoryLoader) loadDocument(dir, filename string) (string, bool, error) {
	path := filepath.Join(dir, filename)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, &errs.IOError{Err: err}
	}

	resolved, err := resolveImports(string(raw), dir, 0)
	if err != nil {
		return "", false, err
	}
	return resolved, true, nil
}

// resolveImports splices "@path" import directives in place, one per
// line, recursively up to maxImportDepth. A line starting with "@@" is
// the escape for a literal leading "@" with no import performed.
func resolveImports(content, baseDir string, depth int) (string, error) {
	if depth > maxImportDepth {
		return "", &errs.InvalidInputError{Message: "memory import depth exceeded"}
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var out strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "@@"):
			out.WriteString(strings.Replace(line, "@@", "@", 1))
			out.WriteByte('\n')
		case strings.HasPrefix(trimmed, "@"):
			importPath := strings.TrimSpace(strings.TrimPrefix(trimmed, "@"))
			resolved, err := importFile(importPath, baseDir, depth)
			if err != nil {
				out.WriteString("[Error: " + err.Error() + "]")
				out.WriteByte('\n')
				continue
			}
			out.WriteString(resolved)
			out.WriteByte('\n')
		default:
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	return strings.TrimRight(out.String(), "\n"), nil
}

func importFile(importPath, baseDir string, depth int) (string, error) {
	resolvedPath := importPath
	switch {
	case strings.HasPrefix(importPath, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			resolvedPath = filepath.Join(home, importPath[2:])
		}
	case !filepath.IsAbs(importPath):
		resolvedPath = filepath.Join(baseDir, importPath)
	}

	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return "", &errs.IOError{Err: err}
	}

	return resolveImports(string(raw), filepath.Dir(resolvedPath), depth+1)
}
