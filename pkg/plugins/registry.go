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

package plugins

import (
	"sort"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// Registry holds discovered plugins keyed by name. Unlike the
// priority-chain semantics used for skills/rules/subagents, a second
// plugin claiming a name already taken is a hard error: plugins are
// identified by directory name, not layered across project/user
// scopes.
type Registry struct {
	plugins map[string]Plugin
}

func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// AddDirs discovers plugins under each root in order and registers
// them, failing on the first name collision across roots.
func (r *Registry) AddDirs(dirs ...string) error {
	for _, dir := range dirs {
		found, err := Discover(dir)
		if err != nil {
			return err
		}
		for _, p := range found {
			if err := r.Add(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) Add(p Plugin) error {
	if _, exists := r.plugins[p.Name]; exists {
		return &errs.DuplicatePluginNameError{Name: p.Name}
	}
	r.plugins[p.Name] = p
	return nil
}

func (r *Registry) Get(name string) (Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

func (r *Registry) List() []Plugin {
	out := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
