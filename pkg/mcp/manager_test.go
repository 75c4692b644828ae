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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// connectedStub builds a Client already marked connected, with a
// fixed tool cache, without ever spawning a process — Connect is
// never called on it.
func connectedStub(name string, tools ...ToolDefinition) *Client {
	c := NewClient(name, ServerConfig{Transport: TransportStdio, Command: "unused"})
	c.status = StatusConnected
	c.tools = tools
	return c
}

func TestManager_AddServer_RejectsDuplicate(t *testing.T) {
	m := NewManager(DefaultReconnectPolicy())
	m.servers["fs"] = connectedStub("fs")

	err := m.AddServer(context.Background(), "fs", ServerConfig{Transport: TransportStdio, Command: "does-not-matter"})
	require.Error(t, err)
}

func TestManager_RemoveServer_NotFound(t *testing.T) {
	m := NewManager(DefaultReconnectPolicy())
	err := m.RemoveServer("ghost")
	var notFound *errs.MCPServerNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestManager_EnsureConnected_FastPathWhenAlreadyConnected(t *testing.T) {
	m := NewManager(DefaultReconnectPolicy())
	m.servers["fs"] = connectedStub("fs")

	require.NoError(t, m.EnsureConnected(context.Background(), "fs"))
}

func TestManager_EnsureConnected_ServerNotFound(t *testing.T) {
	m := NewManager(DefaultReconnectPolicy())
	err := m.EnsureConnected(context.Background(), "ghost")
	var notFound *errs.MCPServerNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestManager_ListTools_QualifiesAndSortsNames(t *testing.T) {
	m := NewManager(DefaultReconnectPolicy())
	m.servers["fs"] = connectedStub("fs", ToolDefinition{Name: "write_file"}, ToolDefinition{Name: "read_file"})
	m.servers["git"] = connectedStub("git", ToolDefinition{Name: "status"})

	names := make([]string, 0)
	for _, def := range m.ListTools() {
		names = append(names, def.Name)
	}
	require.Equal(t, []string{"mcp__fs_read_file", "mcp__fs_write_file", "mcp__git_status"}, names)
}

func TestManager_CallTool_UnqualifiedNameIsToolNotFound(t *testing.T) {
	m := NewManager(DefaultReconnectPolicy())
	_, _, err := m.CallTool(context.Background(), "Read", nil)
	var notFound *errs.MCPToolNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestManager_GetServerState_NotFound(t *testing.T) {
	m := NewManager(DefaultReconnectPolicy())
	_, err := m.GetServerState("ghost")
	var notFound *errs.MCPServerNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestManager_AddServers_JoinsFailuresFromAllServers(t *testing.T) {
	m := NewManager(DefaultReconnectPolicy())
	err := m.AddServers(context.Background(), map[string]ServerConfig{
		"broken-a": {Transport: TransportStdio, Command: "agentrun-does-not-exist-a"},
		"broken-b": {Transport: TransportStdio, Command: "agentrun-does-not-exist-b"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken-a")
	require.Contains(t, err.Error(), "broken-b")
	require.Empty(t, m.ListServers())
}

func TestManager_ListServers_Sorted(t *testing.T) {
	m := NewManager(DefaultReconnectPolicy())
	m.servers["git"] = connectedStub("git")
	m.servers["fs"] = connectedStub("fs")

	require.Equal(t, []string{"fs", "git"}, m.ListServers())
}
