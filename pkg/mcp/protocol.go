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

// Package mcp implements a Model Context Protocol client and a
// multi-server manager over it: connecting to external tool servers
// over stdio (a child process speaking MCP on its stdin/stdout), and
// exposing their tools and resources under server-qualified names.
package mcp

import (
	"fmt"
	"strings"
	"time"
)

const (
	// ConnectTimeout bounds how long a single connection attempt
	// (spawn, handshake, tool/resource listing) may take.
	ConnectTimeout = 30 * time.Second
	// CallTimeout bounds a single tool invocation.
	CallTimeout = 60 * time.Second
	// ResourceTimeout bounds a single resource read.
	ResourceTimeout = 30 * time.Second

	// toolPrefix namespaces every tool a server contributes so it
	// can't collide with a built-in tool or another server's tool.
	toolPrefix = "mcp__"
)

// TransportKind selects how a ServerConfig reaches its server process.
type TransportKind int

const (
	TransportStdio TransportKind = iota
	TransportSSE
)

// ServerConfig describes how to reach one MCP server. Stdio spawns a
// child process and speaks MCP over its stdin/stdout; it is the only
// transport this client actually connects. SSE is recognized so
// configuration can name it, but Connect rejects it: use stdio.
type ServerConfig struct {
	Transport TransportKind

	// Stdio fields.
	Command string
	Args    []string
	Env     map[string]string

	// SSE fields (not implemented).
	URL     string
	Headers map[string]string
}

// ReconnectPolicy governs the backoff EnsureConnected uses between
// reconnect attempts.
type ReconnectPolicy struct {
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	JitterFactor float64
}

// DefaultReconnectPolicy matches the runtime's default retry budget:
// three attempts, doubling from a one second base, capped at thirty
// seconds, with up to 30% jitter.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		MaxRetries:   3,
		BaseDelay:    1 * time.Second,
		MaxDelay:     30 * time.Second,
		JitterFactor: 0.3,
	}
}

// DelayForAttempt returns the backoff before retrying after a failed
// attempt numbered from zero, given a jitter draw in [0,1) supplied by
// the caller (so the policy itself stays deterministic and testable).
func (p ReconnectPolicy) DelayForAttempt(attempt int, jitterDraw float64) time.Duration {
	shift := attempt
	if shift > 10 {
		shift = 10
	}
	base := float64(p.BaseDelay) * float64(int64(1)<<uint(shift))
	jitter := base * p.JitterFactor * jitterDraw
	delay := base + jitter
	max := float64(p.MaxDelay)
	if delay > max {
		delay = max
	}
	return time.Duration(delay)
}

// ConnectionStatus is the lifecycle state of a server connection.
type ConnectionStatus int

const (
	StatusConnecting ConnectionStatus = iota
	StatusConnected
	StatusDisconnected
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "connecting"
	}
}

// ToolDefinition describes one tool a server exposes, in its
// unqualified (server-local) form.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ResourceDefinition describes one resource a server exposes.
type ResourceDefinition struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// ServerState is a point-in-time snapshot of one managed server.
type ServerState struct {
	Name   string
	Config ServerConfig
	Status ConnectionStatus
}

// QualifiedName builds the namespaced tool name a Manager exposes for
// a tool a server contributes, e.g. QualifiedName("fs", "read_file")
// == "mcp__fs_read_file".
func QualifiedName(server, tool string) string {
	return fmt.Sprintf("%s%s_%s", toolPrefix, server, tool)
}

// ParseQualifiedName splits a qualified tool name back into its server
// and tool parts. It strips the mcp__ prefix and splits on the first
// remaining underscore, so a server or tool name containing further
// underscores round-trips correctly as long as the server name itself
// has none (mcp__fs_read_file -> "fs", "read_file").
func ParseQualifiedName(name string) (server, tool string, ok bool) {
	rest, found := strings.CutPrefix(name, toolPrefix)
	if !found {
		return "", "", false
	}
	server, tool, found = strings.Cut(rest, "_")
	if !found {
		return "", "", false
	}
	return server, tool, true
}

// IsQualifiedName reports whether name carries the mcp__ namespace
// prefix this package uses for every tool it exposes.
func IsQualifiedName(name string) bool {
	return strings.HasPrefix(name, toolPrefix)
}
