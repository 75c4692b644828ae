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
)

// Provider sources named items of type T from somewhere: an in-memory
// map, a directory on disk, or a chain of other providers. Every
// provider carries a priority and a SourceType used to resolve name
// collisions when more than one provider is consulted.
type Provider[T Named] interface {
	ProviderName() string
	Priority() int
	SourceType() SourceType
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (T, bool, error)
	LoadAll(ctx context.Context) ([]T, error)
}

// InMemoryProvider holds a fixed set of items, useful for built-ins
// and for tests.
type InMemoryProvider[T Named] struct {
	items      map[string]T
	priority   int
	sourceType SourceType
}

// NewInMemoryProvider builds an empty InMemoryProvider with priority 0
// and the zero-value SourceType, SourceBuiltin.
func NewInMemoryProvider[T Named]() *InMemoryProvider[T] {
	return &InMemoryProvider[T]{items: make(map[string]T)}
}

func (p *InMemoryProvider[T]) WithItem(item T) *InMemoryProvider[T] {
	p.items[item.Name()] = item
	return p
}

func (p *InMemoryProvider[T]) WithItems(items []T) *InMemoryProvider[T] {
	for _, item := range items {
		p.items[item.Name()] = item
	}
	return p
}

func (p *InMemoryProvider[T]) WithPriority(priority int) *InMemoryProvider[T] {
	p.priority = priority
	return p
}

func (p *InMemoryProvider[T]) WithSourceType(st SourceType) *InMemoryProvider[T] {
	p.sourceType = st
	return p
}

func (p *InMemoryProvider[T]) Add(item T) { p.items[item.Name()] = item }

func (p *InMemoryProvider[T]) Len() int { return len(p.items) }

func (p *InMemoryProvider[T]) IsEmpty() bool { return len(p.items) == 0 }

func (p *InMemoryProvider[T]) ProviderName() string { return "in-memory" }

func (p *InMemoryProvider[T]) Priority() int { return p.priority }

func (p *InMemoryProvider[T]) SourceType() SourceType { return p.sourceType }

func (p *InMemoryProvider[T]) List(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(p.items))
	for name := range p.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (p *InMemoryProvider[T]) Get(_ context.Context, name string) (T, bool, error) {
	item, ok := p.items[name]
	return item, ok, nil
}

func (p *InMemoryProvider[T]) LoadAll(_ context.Context) ([]T, error) {
	out := make([]T, 0, len(p.items))
	for _, item := range p.items {
		out = append(out, item)
	}
	return out, nil
}

// ChainProvider merges several providers, resolving name collisions in
// favor of the highest-priority member.
type ChainProvider[T Named] struct {
	providers []Provider[T]
}

func NewChainProvider[T Named]() *ChainProvider[T] { return &ChainProvider[T]{} }

func (c *ChainProvider[T]) With(p Provider[T]) *ChainProvider[T] {
	c.providers = append(c.providers, p)
	return c
}

// Priority is the maximum of the chain's members' priorities.
func (c *ChainProvider[T]) Priority() int {
	max := 0
	for i, p := range c.providers {
		if i == 0 || p.Priority() > max {
			max = p.Priority()
		}
	}
	return max
}

func (c *ChainProvider[T]) SourceType() SourceType { return SourceUser }

func (c *ChainProvider[T]) ProviderName() string { return "chain" }

// sortedDescending returns the chain's providers ordered by
// descending priority, the order both Get and LoadAll consult them in
// so the highest-priority provider's entry wins a name collision.
func (c *ChainProvider[T]) sortedDescending() []Provider[T] {
	sorted := make([]Provider[T], len(c.providers))
	copy(sorted, c.providers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return sorted
}

// List merges and deduplicates every member's names.
func (c *ChainProvider[T]) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, p := range c.providers {
		sub, err := p.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range sub {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Get queries members highest-priority-first, returning the first hit.
func (c *ChainProvider[T]) Get(ctx context.Context, name string) (T, bool, error) {
	var zero T
	for _, p := range c.sortedDescending() {
		item, ok, err := p.Get(ctx, name)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// LoadAll merges every member's items, keeping the highest-priority
// provider's value whenever two providers supply the same name.
func (c *ChainProvider[T]) LoadAll(ctx context.Context) ([]T, error) {
	merged := make(map[string]T)
	order := make([]string, 0)

	for _, p := range c.sortedDescending() {
		items, err := p.LoadAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			name := item.Name()
			if _, exists := merged[name]; !exists {
				order = append(order, name)
				merged[name] = item
			}
		}
	}

	out := make([]T, 0, len(order))
	for _, name := range order {
		out = append(out, merged[name])
	}
	return out, nil
}
