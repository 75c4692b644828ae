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

package llms

import (
	"context"
	"strings"
	"sync"

	"github.com/kaidrach/agentrun/internal/rtlog"
)

// ModelRegistry resolves model aliases ("sonnet") and deployment-specific
// IDs to a ModelSpec, and tracks the default model per ModelRole. Safe for
// concurrent use.
type ModelRegistry struct {
	mu       sync.RWMutex
	models   map[string]ModelSpec
	aliases  map[string]string
	byFamily map[ModelFamily][]string
	defaults map[ModelRole]string
}

// NewModelRegistry returns an empty registry.
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{
		models:   make(map[string]ModelSpec),
		aliases:  make(map[string]string),
		byFamily: make(map[ModelFamily][]string),
		defaults: make(map[ModelRole]string),
	}
}

// NewBuiltinRegistry returns a registry pre-populated with the shipped
// Sonnet/Haiku/Opus 4.5 specs and their default-role assignments.
func NewBuiltinRegistry() *ModelRegistry {
	r := NewModelRegistry()
	registerBuiltins(r)
	return r
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *ModelRegistry
)

// DefaultRegistry returns the process-wide builtin registry, built once.
func DefaultRegistry() *ModelRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewBuiltinRegistry()
	})
	return defaultRegistry
}

// Register adds or replaces a model spec and wires its family's aliases.
func (r *ModelRegistry) Register(spec ModelSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models[spec.ID] = spec
	r.byFamily[spec.Family] = append(r.byFamily[spec.Family], spec.ID)
	for _, alias := range spec.Family.aliases() {
		r.aliases[alias] = spec.ID
	}
}

// SetDefault assigns the default model ID for a role.
func (r *ModelRegistry) SetDefault(role ModelRole, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults[role] = id
}

// AddAlias wires an additional alias to an existing model ID.
func (r *ModelRegistry) AddAlias(alias, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = id
}

// Get looks up a model by its exact canonical ID.
func (r *ModelRegistry) Get(id string) (ModelSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.models[id]
	return spec, ok
}

// Resolve looks up a model by canonical ID, then alias, then falls back to
// a case-insensitive substring match against family names ("claude-3-opus"
// resolves via "opus"), returning the family's latest registered model.
func (r *ModelRegistry) Resolve(ctx context.Context, aliasOrID string) (ModelSpec, bool) {
	r.mu.RLock()
	if spec, ok := r.models[aliasOrID]; ok {
		r.mu.RUnlock()
		return spec, true
	}
	if canonical, ok := r.aliases[aliasOrID]; ok {
		spec, ok := r.models[canonical]
		r.mu.RUnlock()
		return spec, ok
	}
	r.mu.RUnlock()

	lower := strings.ToLower(aliasOrID)
	var family ModelFamily
	var matched bool
	switch {
	case strings.Contains(lower, "opus"):
		family, matched = FamilyOpus, true
	case strings.Contains(lower, "sonnet"):
		family, matched = FamilySonnet, true
	case strings.Contains(lower, "haiku"):
		family, matched = FamilyHaiku, true
	}
	if !matched {
		return ModelSpec{}, false
	}

	spec, ok := r.Latest(family)
	if ok {
		rtlog.Get(ctx).Debug("model resolved via substring fallback", "input", aliasOrID, "resolved", spec.ID)
	}
	return spec, ok
}

// DefaultForRole returns the model assigned to a role, if any.
func (r *ModelRegistry) DefaultForRole(role ModelRole) (ModelSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.defaults[role]
	if !ok {
		return ModelSpec{}, false
	}
	spec, ok := r.models[id]
	return spec, ok
}

// Latest returns the first model registered in a family. Builtins register
// exactly one snapshot per family today; callers adding multiple snapshots
// to the same family should register the newest first.
func (r *ModelRegistry) Latest(family ModelFamily) (ModelSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids, ok := r.byFamily[family]
	if !ok || len(ids) == 0 {
		return ModelSpec{}, false
	}
	spec, ok := r.models[ids[0]]
	return spec, ok
}

// ForProvider finds the model whose ID for the given deployment mode
// matches providerID, e.g. resolving a Bedrock inference-profile ARN back
// to its canonical ModelSpec.
func (r *ModelRegistry) ForProvider(kind ProviderKind, providerID string) (ModelSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, spec := range r.models {
		if id, ok := spec.ProviderID(kind); ok && id == providerID {
			return spec, true
		}
	}
	return ModelSpec{}, false
}

// FamilyModels returns all registered models in a family.
func (r *ModelRegistry) FamilyModels(family ModelFamily) []ModelSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byFamily[family]
	specs := make([]ModelSpec, 0, len(ids))
	for _, id := range ids {
		if spec, ok := r.models[id]; ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

// All returns every registered model.
func (r *ModelRegistry) All() []ModelSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]ModelSpec, 0, len(r.models))
	for _, spec := range r.models {
		specs = append(specs, spec)
	}
	return specs
}
