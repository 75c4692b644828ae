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

package mcp

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// Manager owns a set of named server connections and presents their
// tools and resources under a single, server-qualified namespace.
type Manager struct {
	policy ReconnectPolicy

	mu      sync.RWMutex
	servers map[string]*Client
}

// NewManager builds a Manager with the given reconnect policy.
func NewManager(policy ReconnectPolicy) *Manager {
	return &Manager{policy: policy, servers: make(map[string]*Client)}
}

// AddServer registers and connects a new server. It rejects a
// duplicate name under a read lock first (the common case), then
// connects outside any lock (connecting can take up to ConnectTimeout
// and must not block unrelated callers), then re-checks for a
// duplicate under the write lock before inserting — a second caller
// may have added the same name while this one was connecting.
func (m *Manager) AddServer(ctx context.Context, name string, config ServerConfig) error {
	m.mu.RLock()
	_, exists := m.servers[name]
	m.mu.RUnlock()
	if exists {
		return fmt.Errorf("mcp server %q already registered", name)
	}

	client := NewClient(name, config)
	if err := client.Connect(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.servers[name]; exists {
		_ = client.Close()
		return fmt.Errorf("mcp server %q already registered", name)
	}
	m.servers[name] = client
	return nil
}

// AddServers registers and connects every named server in configs
// concurrently, so a slow or unreachable server doesn't delay the
// others' startup. It returns once every connection attempt has
// finished, joining every failure into a single error; servers that
// connected successfully remain registered even if a sibling failed.
func (m *Manager) AddServers(ctx context.Context, configs map[string]ServerConfig) error {
	var (
		g        errgroup.Group
		failMu   sync.Mutex
		failures []error
	)
	for name, config := range configs {
		name, config := name, config
		g.Go(func() error {
			if err := m.AddServer(ctx, name, config); err != nil {
				failMu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", name, err))
				failMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(failures...)
}

// RemoveServer disconnects and forgets a server.
func (m *Manager) RemoveServer(name string) error {
	m.mu.Lock()
	client, ok := m.servers[name]
	if ok {
		delete(m.servers, name)
	}
	m.mu.Unlock()
	if !ok {
		return &errs.MCPServerNotFoundError{Name: name}
	}
	return client.Close()
}

// ListServers returns every registered server name, sorted.
func (m *Manager) ListServers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.servers))
	for name := range m.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetServerState snapshots one server's connection state.
func (m *Manager) GetServerState(name string) (ServerState, error) {
	m.mu.RLock()
	client, ok := m.servers[name]
	m.mu.RUnlock()
	if !ok {
		return ServerState{}, &errs.MCPServerNotFoundError{Name: name}
	}
	return client.State(), nil
}

// ListTools returns every tool across every registered server, each
// under its qualified name (mcp__<server>_<tool>).
func (m *Manager) ListTools() []ToolDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ToolDefinition
	for name, client := range m.servers {
		for _, t := range client.Tools() {
			out = append(out, ToolDefinition{
				Name:        QualifiedName(name, t.Name),
				Description: t.Description,
				InputSchema: t.InputSchema,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListResources returns every resource across every registered
// server.
func (m *Manager) ListResources() []ResourceDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ResourceDefinition
	for _, client := range m.servers {
		out = append(out, client.Resources()...)
	}
	return out
}

// EnsureConnected is the reconnection gate every call path goes
// through before touching a server. It has two lock phases: a fast
// read-lock check that returns immediately if the server is already
// connected, and a slow write-lock path that retries Connect with
// backoff. The write-lock path re-checks connection state immediately
// after acquiring the lock, since another goroutine may have
// reconnected the same server while this one was waiting for the
// lock — that goroutine's work must not be discarded or duplicated.
// The retry loop sleeps only between attempts: never before the
// first, never after the last, so a caller never pays backoff it
// can't spend on a further attempt.
func (m *Manager) EnsureConnected(ctx context.Context, name string) error {
	m.mu.RLock()
	client, ok := m.servers[name]
	if ok && client.Connected() {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()
	if !ok {
		return &errs.MCPServerNotFoundError{Name: name}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok = m.servers[name]
	if !ok {
		return &errs.MCPServerNotFoundError{Name: name}
	}
	if client.Connected() {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < m.policy.MaxRetries; attempt++ {
		if err := client.Connect(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt+1 < m.policy.MaxRetries {
			delay := m.policy.DelayForAttempt(attempt, rand.Float64())
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return &errs.MCPConnectionFailedError{Message: fmt.Sprintf("%s: exhausted %d attempts: %v", name, m.policy.MaxRetries, lastErr)}
}

// CallTool resolves a qualified tool name to its server, ensures that
// server is connected (reconnecting with backoff if needed), and
// forwards the call.
func (m *Manager) CallTool(ctx context.Context, qualifiedName string, arguments map[string]any) (string, bool, error) {
	serverName, toolName, ok := ParseQualifiedName(qualifiedName)
	if !ok {
		return "", false, &errs.MCPToolNotFoundError{Name: qualifiedName}
	}

	if err := m.EnsureConnected(ctx, serverName); err != nil {
		return "", false, err
	}

	m.mu.RLock()
	client, ok := m.servers[serverName]
	m.mu.RUnlock()
	if !ok {
		return "", false, &errs.MCPServerNotFoundError{Name: serverName}
	}

	return client.CallTool(ctx, toolName, arguments)
}

// ReadResource resolves uri to its owning server's client; callers
// are expected to have discovered server ownership via ListResources,
// since resource URIs carry no server prefix of their own.
func (m *Manager) ReadResource(ctx context.Context, serverName, uri string) (string, string, error) {
	if err := m.EnsureConnected(ctx, serverName); err != nil {
		return "", "", err
	}
	m.mu.RLock()
	client, ok := m.servers[serverName]
	m.mu.RUnlock()
	if !ok {
		return "", "", &errs.MCPServerNotFoundError{Name: serverName}
	}
	return client.ReadResource(ctx, uri)
}

// Close disconnects every registered server.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for name, client := range m.servers {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", name, err)
		}
	}
	m.servers = make(map[string]*Client)
	return firstErr
}
