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

package toolsearch

import (
	"slices"
	"sync"

	"github.com/kaidrach/agentrun/pkg/mcp"
)

// Config governs when Manager defers tools out of the immediate
// prompt and how it searches among the deferred set.
type Config struct {
	Threshold     float64
	ContextWindow int
	SearchMode    Mode
	MaxResults    int
	AlwaysLoad    []string
}

// DefaultConfig matches the runtime's default deferral policy: defer
// once the indexed tool set would cost more than 10% of a 200k-token
// context window, searching by regex, returning up to 5 hits.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.10,
		ContextWindow: 200_000,
		SearchMode:    ModeRegex,
		MaxResults:    5,
	}
}

// ThresholdTokens is the absolute token budget Threshold represents
// against ContextWindow.
func (c Config) ThresholdTokens() int {
	return int(float64(c.ContextWindow) * c.Threshold)
}

// WithThreshold returns a copy of c with Threshold clamped to [0,1].
func (c Config) WithThreshold(threshold float64) Config {
	c.Threshold = clamp(threshold, 0, 1)
	return c
}

// WithContextWindow returns a copy of c with a new context window.
func (c Config) WithContextWindow(tokens int) Config {
	c.ContextWindow = tokens
	return c
}

// WithSearchMode returns a copy of c with a new search mode.
func (c Config) WithSearchMode(mode Mode) Config {
	c.SearchMode = mode
	return c
}

// WithAlwaysLoad returns a copy of c whose listed tools are never
// deferred regardless of the token threshold.
func (c Config) WithAlwaysLoad(tools []string) Config {
	c.AlwaysLoad = tools
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DeferredFunc reports whether a specific server/tool pair has been
// explicitly configured to defer regardless of the token threshold,
// the hook a toolset-level configuration plugs into.
type DeferredFunc func(serverName, toolName string) bool

// PreparedTool is one tool's declaration plus the deferral metadata
// an agent loop needs to decide whether to include its full schema in
// the system prompt or leave it to be pulled in via a tool search.
type PreparedTool struct {
	Name            string
	Description     string
	InputSchema     map[string]any
	DeferLoading    bool
	EstimatedTokens int
}

// PreparedTools partitions an index's tools into those sent to the
// model up front and those deferred behind a search.
type PreparedTools struct {
	UseSearch       bool
	SearchMode      Mode
	Immediate       []PreparedTool
	Deferred        []PreparedTool
	TotalTokens     int
	ThresholdTokens int
}

// AllTools returns every prepared tool, immediate first.
func (p PreparedTools) AllTools() []PreparedTool {
	out := make([]PreparedTool, 0, len(p.Immediate)+len(p.Deferred))
	out = append(out, p.Immediate...)
	out = append(out, p.Deferred...)
	return out
}

// TokenSavings is the estimated prompt-token cost avoided by
// deferring tools, zero unless deferral is actually in effect.
func (p PreparedTools) TokenSavings() int {
	if !p.UseSearch {
		return 0
	}
	var total int
	for _, t := range p.Deferred {
		total += t.EstimatedTokens
	}
	return total
}

// Manager indexes an mcp.Manager's tools by estimated cost and
// decides, per Config, which to defer; Search then resolves a
// deferred tool's qualified name back out of the index.
type Manager struct {
	config  Config
	engine  *Engine
	deferFn DeferredFunc

	mu          sync.RWMutex
	index       *Index
	definitions map[string]mcp.ToolDefinition
	unlocked    map[string]struct{}
}

// NewManager builds a Manager over config. deferFn may be nil, in
// which case no tool is deferred by per-toolset configuration (only
// the token threshold and AlwaysLoad list apply).
func NewManager(config Config, deferFn DeferredFunc) *Manager {
	return &Manager{
		config:      config,
		engine:      NewEngine(config.SearchMode),
		deferFn:     deferFn,
		index:       NewIndex(),
		definitions: make(map[string]mcp.ToolDefinition),
		unlocked:    make(map[string]struct{}),
	}
}

// Config returns this manager's configuration.
func (m *Manager) Config() Config { return m.config }

// BuildIndex replaces the index with mcpManager's current tool
// listing.
func (m *Manager) BuildIndex(mcpManager *mcp.Manager) {
	m.BuildIndexFromTools(mcpManager.ListTools())
}

// BuildIndexFromTools replaces the index with tools, splitting each
// qualified name back into its server and tool parts. A qualified
// name that doesn't parse (shouldn't happen for anything mcp.Manager
// itself produced) is skipped rather than indexed under a guessed
// split.
func (m *Manager) BuildIndexFromTools(tools []mcp.ToolDefinition) {
	index := NewIndex()
	definitions := make(map[string]mcp.ToolDefinition, len(tools))

	for _, def := range tools {
		server, tool, ok := mcp.ParseQualifiedName(def.Name)
		if !ok {
			continue
		}
		index.Add(NewIndexEntry(def.Name, server, tool, def.Description, def.InputSchema))
		definitions[def.Name] = def
	}

	m.mu.Lock()
	m.index = index
	m.definitions = definitions
	m.unlocked = make(map[string]struct{})
	m.mu.Unlock()
}

// ShouldUseSearch reports whether the indexed tool set currently
// exceeds the configured threshold.
func (m *Manager) ShouldUseSearch() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.index.TotalTokens() > m.config.ThresholdTokens()
}

// TotalTokens returns the indexed tool set's total estimated cost.
func (m *Manager) TotalTokens() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.index.TotalTokens()
}

// ToolCount returns the number of indexed tools.
func (m *Manager) ToolCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.index.Len()
}

// PrepareTools partitions every indexed tool into immediate and
// deferred sets. A tool named in AlwaysLoad (by qualified or bare
// name) or unlocked by a prior search is never deferred, taking
// priority over both the threshold
// and any per-toolset DeferredFunc. Otherwise a tool defers if either
// the overall token threshold is exceeded or DeferredFunc says so for
// that specific server/tool pair.
func (m *Manager) PrepareTools() PreparedTools {
	m.mu.RLock()
	defer m.mu.RUnlock()

	useSearch := m.index.TotalTokens() > m.config.ThresholdTokens()
	result := PreparedTools{
		UseSearch:       useSearch,
		SearchMode:      m.config.SearchMode,
		TotalTokens:     m.index.TotalTokens(),
		ThresholdTokens: m.config.ThresholdTokens(),
	}

	for _, entry := range m.index.Entries() {
		def, ok := m.definitions[entry.QualifiedName]
		if !ok {
			continue
		}

		alwaysLoad := slices.Contains(m.config.AlwaysLoad, entry.QualifiedName) ||
			slices.Contains(m.config.AlwaysLoad, entry.ToolName)
		_, unlocked := m.unlocked[entry.QualifiedName]

		tool := PreparedTool{
			Name:            entry.QualifiedName,
			Description:     def.Description,
			InputSchema:     def.InputSchema,
			EstimatedTokens: entry.EstimatedTokens,
		}

		if alwaysLoad || unlocked {
			result.Immediate = append(result.Immediate, tool)
			continue
		}

		toolsetDeferred := m.deferFn != nil && m.deferFn(entry.ServerName, entry.ToolName)
		shouldDefer := toolsetDeferred || useSearch

		tool.DeferLoading = shouldDefer
		if shouldDefer {
			result.Deferred = append(result.Deferred, tool)
		} else {
			result.Immediate = append(result.Immediate, tool)
		}
	}

	return result
}

// Search runs a query against the index and returns the matching
// qualified tool names, most relevant first (mode-dependent), capped
// at Config.MaxResults.
func (m *Manager) Search(query string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := m.engine.Search(m.index, query, m.config.MaxResults)
	names := make([]string, 0, len(hits))
	for _, h := range hits {
		names = append(names, h.Entry.QualifiedName)
	}
	return names
}

// Unlock marks qualified names as discovered: on every subsequent
// PrepareTools call they land in the immediate set with their full
// schemas, which is how a tool the model found via tool_search becomes
// invocable on the next request. Unknown names are ignored.
func (m *Manager) Unlock(names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		if _, ok := m.definitions[name]; ok {
			m.unlocked[name] = struct{}{}
		}
	}
}

// Unlocked returns the qualified names unlocked so far, in no
// particular order.
func (m *Manager) Unlocked() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.unlocked))
	for name := range m.unlocked {
		out = append(out, name)
	}
	return out
}

// GetDefinition resolves one qualified name to its full definition,
// for a model that searched for a deferred tool and now wants to call
// it.
func (m *Manager) GetDefinition(qualifiedName string) (PreparedTool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.definitions[qualifiedName]
	if !ok {
		return PreparedTool{}, false
	}
	entry, _ := m.index.Get(qualifiedName)
	return PreparedTool{
		Name:            qualifiedName,
		Description:     def.Description,
		InputSchema:     def.InputSchema,
		EstimatedTokens: entry.EstimatedTokens,
	}, true
}

// GetDefinitions resolves a batch of qualified names, silently
// skipping any that aren't indexed.
func (m *Manager) GetDefinitions(names []string) []PreparedTool {
	out := make([]PreparedTool, 0, len(names))
	for _, name := range names {
		if tool, ok := m.GetDefinition(name); ok {
			out = append(out, tool)
		}
	}
	return out
}
