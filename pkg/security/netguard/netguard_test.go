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

package netguard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/security/netguard"
)

func TestDomainCheck_BlockedDomainAlwaysLoses(t *testing.T) {
	cfg := netguard.New().
		WithAllowedDomains("example.com").
		WithBlockedDomains("evil.example.com")
	check := netguard.NewDomainCheck(cfg)

	assert.False(t, check.Allowed("evil.example.com"))
}

func TestDomainCheck_NoAllowListPassesEverythingNotBlocked(t *testing.T) {
	cfg := netguard.New().WithBlockedDomains("evil.com")
	check := netguard.NewDomainCheck(cfg)

	assert.True(t, check.Allowed("anything.else"))
	assert.False(t, check.Allowed("evil.com"))
}

func TestDomainCheck_AllowListRestrictsToMatchesAndSubdomains(t *testing.T) {
	cfg := netguard.New().WithAllowedDomains("example.com", ".internal.net")
	check := netguard.NewDomainCheck(cfg)

	assert.True(t, check.Allowed("example.com"))
	assert.True(t, check.Allowed("api.example.com"))
	assert.True(t, check.Allowed("svc.internal.net"))
	assert.False(t, check.Allowed("internal.net.evil.com"))
	assert.False(t, check.Allowed("other.org"))
}

func TestConfig_HasProxy(t *testing.T) {
	httpPort := 8080
	cfg := netguard.WithProxy(&httpPort, nil)
	assert.True(t, cfg.HasProxy())

	assert.False(t, netguard.New().HasProxy())
}

func TestConfig_ProxyEnv_SetsAllVariantsAndNoProxy(t *testing.T) {
	httpPort, socksPort := 8080, 1080
	cfg := netguard.WithProxy(&httpPort, &socksPort)

	env := cfg.ProxyEnv()
	require.Equal(t, "http://127.0.0.1:8080", env["HTTP_PROXY"])
	require.Equal(t, "http://127.0.0.1:8080", env["https_proxy"])
	require.Equal(t, "socks5://127.0.0.1:1080", env["ALL_PROXY"])
	require.Equal(t, cfg.NoProxyValue(), env["NO_PROXY"])
	require.Equal(t, cfg.NoProxyValue(), env["no_proxy"])
}

func TestConfig_ProxyEnv_EmptyWithoutProxy(t *testing.T) {
	env := netguard.New().ProxyEnv()
	assert.Empty(t, env)
}

func TestConfig_WithUnixSocketsAndLocalBinding(t *testing.T) {
	cfg := netguard.New().
		WithUnixSockets("/tmp/a.sock", "/tmp/b.sock").
		WithLocalBinding(true)

	assert.Equal(t, []string{"/tmp/a.sock", "/tmp/b.sock"}, cfg.AllowUnixSockets)
	assert.True(t, cfg.AllowLocalBinding)
}
