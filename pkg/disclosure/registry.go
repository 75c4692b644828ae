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
	"sort"
	"strings"
	"sync"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// Registry is a generic name-indexed registry over an Index type.
// register honors priority: a name already present is only replaced by
// an incoming entry of equal or higher priority, so a project-level
// skill never gets silently clobbered by a lower-priority user-level
// scan that happens to run later.
type Registry[I Index] struct {
	mu    sync.RWMutex
	items map[string]I

	cacheMu sync.RWMutex
	cache   map[string]string
}

func NewRegistry[I Index]() *Registry[I] {
	return &Registry[I]{
		items: make(map[string]I),
		cache: make(map[string]string),
	}
}

// Register inserts index, replacing any existing entry of the same
// name only if index's priority is >= the existing entry's.
func (r *Registry[I]) Register(index I) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[index.Name()]
	if !ok || index.Priority() >= existing.Priority() {
		r.items[index.Name()] = index
	}
}

func (r *Registry[I]) RegisterAll(indices []I) {
	for _, idx := range indices {
		r.Register(idx)
	}
}

func (r *Registry[I]) Get(name string) (I, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.items[name]
	return idx, ok
}

func (r *Registry[I]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry[I]) All() []I {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]I, 0, len(r.items))
	for _, idx := range r.items {
		out = append(out, idx)
	}
	return out
}

func (r *Registry[I]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Registry[I]) IsEmpty() bool { return r.Len() == 0 }

func (r *Registry[I]) Contains(name string) bool {
	_, ok := r.Get(name)
	return ok
}

func (r *Registry[I]) Remove(name string) (I, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.items[name]
	delete(r.items, name)

	r.cacheMu.Lock()
	delete(r.cache, name)
	r.cacheMu.Unlock()

	return idx, ok
}

func (r *Registry[I]) Clear() {
	r.mu.Lock()
	r.items = make(map[string]I)
	r.mu.Unlock()

	r.cacheMu.Lock()
	r.cache = make(map[string]string)
	r.cacheMu.Unlock()
}

// ByType returns every registered entry with the given source type.
func (r *Registry[I]) ByType(st SourceType) []I {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []I
	for _, idx := range r.items {
		if idx.SourceType() == st {
			out = append(out, idx)
		}
	}
	return out
}

// Filter returns every registered entry matching predicate.
func (r *Registry[I]) Filter(predicate func(I) bool) []I {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []I
	for _, idx := range r.items {
		if predicate(idx) {
			out = append(out, idx)
		}
	}
	return out
}

// LoadContent resolves an entry's full content, consulting (and
// populating) a per-name cache so a repeatedly-referenced skill only
// reads its backing file once.
func (r *Registry[I]) LoadContent(ctx context.Context, name string) (string, error) {
	r.cacheMu.RLock()
	if content, ok := r.cache[name]; ok {
		r.cacheMu.RUnlock()
		return content, nil
	}
	r.cacheMu.RUnlock()

	idx, ok := r.Get(name)
	if !ok {
		return "", &errs.NotFoundError{Path: name}
	}

	content, err := LoadContent(ctx, idx)
	if err != nil {
		return "", err
	}

	r.cacheMu.Lock()
	r.cache[name] = content
	r.cacheMu.Unlock()

	return content, nil
}

func (r *Registry[I]) InvalidateCache(name string) {
	r.cacheMu.Lock()
	delete(r.cache, name)
	r.cacheMu.Unlock()
}

func (r *Registry[I]) ClearCache() {
	r.cacheMu.Lock()
	r.cache = make(map[string]string)
	r.cacheMu.Unlock()
}

// BuildSummary renders every entry's summary line, alphabetically
// sorted, for system-prompt injection.
func (r *Registry[I]) BuildSummary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lines := make([]string, 0, len(r.items))
	for _, idx := range r.items {
		lines = append(lines, ToSummaryLine(idx))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// BuildPrioritySummary renders every entry's summary line ordered by
// descending priority instead of alphabetically.
func (r *Registry[I]) BuildPrioritySummary() string {
	sorted := r.SortedByPriority()
	lines := make([]string, 0, len(sorted))
	for _, idx := range sorted {
		lines = append(lines, ToSummaryLine(idx))
	}
	return strings.Join(lines, "\n")
}

// SortedByPriority returns every entry ordered by descending priority.
func (r *Registry[I]) SortedByPriority() []I {
	items := r.All()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority() > items[j].Priority()
	})
	return items
}
