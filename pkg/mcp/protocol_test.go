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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQualifiedName(t *testing.T) {
	require.Equal(t, "mcp__fs_read_file", QualifiedName("fs", "read_file"))
	require.Equal(t, "mcp__server_tool", QualifiedName("server", "tool"))
}

func TestParseQualifiedName(t *testing.T) {
	cases := []struct {
		name       string
		wantServer string
		wantTool   string
		wantOK     bool
	}{
		{"mcp__server_tool", "server", "tool", true},
		{"mcp__fs_read_file", "fs", "read_file", true},
		{"Read", "", "", false},
		{"mcp_invalid", "", "", false},
	}
	for _, c := range cases {
		server, tool, ok := ParseQualifiedName(c.name)
		require.Equal(t, c.wantOK, ok, c.name)
		if c.wantOK {
			require.Equal(t, c.wantServer, server, c.name)
			require.Equal(t, c.wantTool, tool, c.name)
		}
	}
}

func TestIsQualifiedName(t *testing.T) {
	require.True(t, IsQualifiedName("mcp__fs_read_file"))
	require.False(t, IsQualifiedName("Read"))
}

func TestReconnectPolicy_DelayForAttempt(t *testing.T) {
	policy := DefaultReconnectPolicy()

	d0 := policy.DelayForAttempt(0, 0)
	require.Equal(t, policy.BaseDelay, d0)

	d1 := policy.DelayForAttempt(1, 0)
	require.Equal(t, 2*policy.BaseDelay, d1)

	// Jitter only ever adds, and only up to JitterFactor of the base.
	jittered := policy.DelayForAttempt(0, 1)
	require.Greater(t, jittered, d0)
	require.LessOrEqual(t, jittered, d0+time.Duration(float64(policy.BaseDelay)*policy.JitterFactor)+1)

	// Large attempt counts clamp to MaxDelay rather than overflowing.
	dMax := policy.DelayForAttempt(60, 0.99)
	require.LessOrEqual(t, dMax, policy.MaxDelay)
}
