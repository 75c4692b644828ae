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

// Package netguard holds the network-reachability policy a sandboxed
// process runs under: which domains are explicitly allowed or
// blocked, whether local proxy ports are exposed, and the proxy
// environment variables a subprocess should inherit.
package netguard

import "fmt"

// Config is the network half of a sandbox policy.
type Config struct {
	AllowedDomains    []string
	BlockedDomains    []string
	AllowUnixSockets  []string
	AllowLocalBinding bool
	HTTPProxyPort     *int
	SOCKSProxyPort    *int
}

// New returns a Config with no proxy and no domain rules.
func New() Config { return Config{} }

// WithProxy returns a Config with no domain rules that exposes the
// given local proxy ports.
func WithProxy(httpPort, socksPort *int) Config {
	return Config{HTTPProxyPort: httpPort, SOCKSProxyPort: socksPort}
}

// WithUnixSockets returns a copy of c allowing the given unix socket paths.
func (c Config) WithUnixSockets(paths ...string) Config {
	c.AllowUnixSockets = paths
	return c
}

// WithLocalBinding returns a copy of c with local port binding allowed or denied.
func (c Config) WithLocalBinding(allow bool) Config {
	c.AllowLocalBinding = allow
	return c
}

// WithAllowedDomains returns a copy of c with its allow-list replaced.
func (c Config) WithAllowedDomains(domains ...string) Config {
	c.AllowedDomains = domains
	return c
}

// WithBlockedDomains returns a copy of c with its deny-list replaced.
func (c Config) WithBlockedDomains(domains ...string) Config {
	c.BlockedDomains = domains
	return c
}

// HasProxy reports whether either proxy port is configured.
func (c Config) HasProxy() bool { return c.HTTPProxyPort != nil || c.SOCKSProxyPort != nil }

// HTTPProxyURL returns the local HTTP proxy URL, if configured.
func (c Config) HTTPProxyURL() (string, bool) {
	if c.HTTPProxyPort == nil {
		return "", false
	}
	return fmt.Sprintf("http://127.0.0.1:%d", *c.HTTPProxyPort), true
}

// SOCKSProxyURL returns the local SOCKS5 proxy URL, if configured.
func (c Config) SOCKSProxyURL() (string, bool) {
	if c.SOCKSProxyPort == nil {
		return "", false
	}
	return fmt.Sprintf("socks5://127.0.0.1:%d", *c.SOCKSProxyPort), true
}

// NoProxyValue is the fixed NO_PROXY value handed to sandboxed
// processes so loopback traffic never routes through the proxy.
func (c Config) NoProxyValue() string { return "localhost,127.0.0.1,::1" }

// ProxyEnv returns the HTTP_PROXY/HTTPS_PROXY/ALL_PROXY/NO_PROXY
// environment variables (upper and lower case) implied by c.
func (c Config) ProxyEnv() map[string]string {
	env := make(map[string]string)
	if url, ok := c.HTTPProxyURL(); ok {
		env["HTTP_PROXY"] = url
		env["HTTPS_PROXY"] = url
		env["http_proxy"] = url
		env["https_proxy"] = url
	}
	if url, ok := c.SOCKSProxyURL(); ok {
		env["ALL_PROXY"] = url
		env["all_proxy"] = url
	}
	if c.HasProxy() {
		env["NO_PROXY"] = c.NoProxyValue()
		env["no_proxy"] = c.NoProxyValue()
	}
	return env
}

// DomainCheck reports whether a domain is reachable under c: blocked
// domains always lose; when an allow-list is present, only domains on
// it (or a suffix match of one of its entries) pass.
type DomainCheck struct {
	cfg Config
}

// NewDomainCheck builds a DomainCheck bound to cfg.
func NewDomainCheck(cfg Config) DomainCheck { return DomainCheck{cfg: cfg} }

// Allowed reports whether domain may be contacted.
func (d DomainCheck) Allowed(domain string) bool {
	for _, blocked := range d.cfg.BlockedDomains {
		if matchesDomain(domain, blocked) {
			return false
		}
	}
	if len(d.cfg.AllowedDomains) == 0 {
		return true
	}
	for _, allowed := range d.cfg.AllowedDomains {
		if matchesDomain(domain, allowed) {
			return true
		}
	}
	return false
}

func matchesDomain(domain, pattern string) bool {
	if domain == pattern {
		return true
	}
	if len(pattern) > 0 && pattern[0] == '.' {
		return len(domain) > len(pattern) && domain[len(domain)-len(pattern):] == pattern
	}
	suffix := "." + pattern
	return len(domain) > len(suffix) && domain[len(domain)-len(suffix):] == suffix
}
