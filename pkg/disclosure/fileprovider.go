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
	"os"
	"path/filepath"
	"sort"
)

// DocumentLoader parses one file's (or one inline string's) content
// into a domain type T. Concrete loaders (skill, rule, subagent,
// output style) each implement this against their own frontmatter
// schema.
type DocumentLoader[T Named] interface {
	ParseContent(content string, path string) (T, error)
	FileFilter(path string) bool
}

// FileProvider sources items by scanning one or more directories,
// loading every file FileFilter accepts through the loader. It mirrors
// the project (".claude/<subdir>") and user ("~/.claude/<subdir>")
// directory convention skills/rules/subagents/output-styles are
// authored under.
type FileProvider[T Named] struct {
	loader     DocumentLoader[T]
	paths      []string
	priority   int
	sourceType SourceType
}

func NewFileProvider[T Named](loader DocumentLoader[T]) *FileProvider[T] {
	return &FileProvider[T]{loader: loader}
}

func (p *FileProvider[T]) WithPath(path string) *FileProvider[T] {
	p.paths = append(p.paths, path)
	return p
}

func (p *FileProvider[T]) WithPriority(priority int) *FileProvider[T] {
	p.priority = priority
	return p
}

func (p *FileProvider[T]) WithSourceType(st SourceType) *FileProvider[T] {
	p.sourceType = st
	return p
}

func (p *FileProvider[T]) Paths() []string { return p.paths }

func (p *FileProvider[T]) ProviderName() string { return "file" }

func (p *FileProvider[T]) Priority() int { return p.priority }

func (p *FileProvider[T]) SourceType() SourceType { return p.sourceType }

func (p *FileProvider[T]) List(ctx context.Context) ([]string, error) {
	items, err := p.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (p *FileProvider[T]) Get(ctx context.Context, name string) (T, bool, error) {
	var zero T
	items, err := p.LoadAll(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if item.Name() == name {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// LoadAll scans every configured directory non-recursively (matching
// the flat ".claude/<subdir>/*.md" layout these file types use),
// skipping directories that don't exist and silently skipping files
// that fail to parse (a malformed entry shouldn't take down the whole
// listing).
func (p *FileProvider[T]) LoadAll(_ context.Context) ([]T, error) {
	var out []T
	for _, dir := range p.paths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if !p.loader.FileFilter(path) {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			item, err := p.loader.ParseContent(string(data), path)
			if err != nil {
				continue
			}
			out = append(out, item)
		}
	}
	return out, nil
}
