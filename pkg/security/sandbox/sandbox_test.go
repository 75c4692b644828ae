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

package sandbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/security/netguard"
	"github.com/kaidrach/agentrun/pkg/security/sandbox"
)

func TestConfig_IsCommandExcluded(t *testing.T) {
	cfg := sandbox.NewConfig("/work").WithExcludedCommands("git", "ls")

	assert.True(t, cfg.IsCommandExcluded("git status"))
	assert.True(t, cfg.IsCommandExcluded("ls"))
	assert.False(t, cfg.IsCommandExcluded("rm -rf /"))
}

func TestConfig_ShouldAutoAllowBash(t *testing.T) {
	enabled := sandbox.NewConfig("/work")
	assert.True(t, enabled.ShouldAutoAllowBash())

	disabled := enabled.WithAutoAllowBash(false)
	assert.False(t, disabled.ShouldAutoAllowBash())

	assert.False(t, sandbox.DisabledSandbox().ShouldAutoAllowBash())
}

func TestConfig_CanBypassSandbox(t *testing.T) {
	cfg := sandbox.NewConfig("/work")
	assert.True(t, cfg.CanBypassSandbox(true))
	assert.False(t, cfg.CanBypassSandbox(false))
}

func TestDisabled_HasNoRuntimeAndNeverBlocksCommands(t *testing.T) {
	sb := sandbox.DisabledSandbox()

	assert.False(t, sb.IsEnabled())
	require.NoError(t, sb.Apply())

	wrapped, err := sb.WrapCommand("echo hi")
	require.NoError(t, err)
	assert.Equal(t, "echo hi", wrapped)
}

func TestSandbox_WrapCommand_ExcludedCommandBypassesWhenAllowed(t *testing.T) {
	cfg := sandbox.NewConfig("/work").WithExcludedCommands("git")
	sb := sandbox.New(context.Background(), cfg)

	wrapped, err := sb.WrapCommand("git status")
	require.NoError(t, err)
	assert.Equal(t, "git status", wrapped)
}

func TestSandbox_WrapCommand_ExcludedCommandRejectedWhenBypassDisallowed(t *testing.T) {
	cfg := sandbox.NewConfig("/work").WithExcludedCommands("git")
	cfg.AllowUnsandboxedCommands = false
	sb := sandbox.New(context.Background(), cfg)

	_, err := sb.WrapCommand("git status")
	require.Error(t, err)

	var sandboxErr *errs.SandboxError
	require.ErrorAs(t, err, &sandboxErr)
	assert.Equal(t, errs.SandboxInvalidConfig, sandboxErr.Kind)
}

func TestSandbox_EnvironmentVars_IncludesNetworkProxyVars(t *testing.T) {
	httpPort := 8080
	net := netguard.WithProxy(&httpPort, nil)
	cfg := sandbox.NewConfig("/work").WithNetwork(net)
	sb := sandbox.New(context.Background(), cfg)

	env := sb.EnvironmentVars()
	assert.Equal(t, "http://127.0.0.1:8080", env["HTTP_PROXY"])
}

func TestSandbox_CanBypass(t *testing.T) {
	sb := sandbox.New(context.Background(), sandbox.NewConfig("/work"))

	assert.True(t, sb.CanBypass(true))
	assert.False(t, sb.CanBypass(false))
}
