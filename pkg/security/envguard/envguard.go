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

// Package envguard filters the environment passed to a sandboxed
// subprocess down to a safe allow-list, and strips any variable whose
// name matches a deny-list prefix even if it was otherwise allowed —
// so a tool invocation never leaks credentials the parent process
// happens to be carrying.
package envguard

import (
	"os"
	"strings"
)

// SafePath is the fixed, minimal PATH handed to a sandboxed process
// regardless of the invoking shell's own PATH.
const SafePath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// DefaultAllowed is the set of environment variable names passed
// through unconditionally when present.
var DefaultAllowed = []string{
	"HOME", "USER", "LOGNAME", "SHELL", "LANG", "LC_ALL", "TERM",
	"TMPDIR", "TZ", "PWD",
}

// DefaultDenyPrefixes blocks any variable name starting with one of
// these prefixes, taking precedence over the allow-list.
var DefaultDenyPrefixes = []string{
	"AWS_", "AZURE_", "GCP_", "GOOGLE_", "ANTHROPIC_", "OPENAI_",
	"GITHUB_TOKEN", "NPM_TOKEN", "SSH_", "GPG_", "DOCKER_",
}

// Sanitizer filters an environment map down to what a sandboxed
// process may see.
type Sanitizer struct {
	allowed      map[string]struct{}
	denyPrefixes []string
	extra        map[string]string
}

// New builds a Sanitizer from an explicit allow-list and deny-prefix
// list; pass nil for either to use the package defaults.
func New(allowed []string, denyPrefixes []string) *Sanitizer {
	if allowed == nil {
		allowed = DefaultAllowed
	}
	if denyPrefixes == nil {
		denyPrefixes = DefaultDenyPrefixes
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return &Sanitizer{allowed: set, denyPrefixes: denyPrefixes, extra: make(map[string]string)}
}

// WithExtra adds an explicit key=value pair that bypasses both the
// allow-list and the deny-list checks — used for values the caller
// computed itself, such as a scoped auth token.
func (s *Sanitizer) WithExtra(key, value string) *Sanitizer {
	s.extra[key] = value
	return s
}

func (s *Sanitizer) isDenied(name string) bool {
	for _, prefix := range s.denyPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Sanitize reads the current process environment and returns the
// filtered list, in "KEY=VALUE" form suitable for exec.Cmd.Env. PATH
// is always forced to SafePath.
func (s *Sanitizer) Sanitize() []string {
	return s.sanitizeFrom(os.Environ())
}

func (s *Sanitizer) sanitizeFrom(environ []string) []string {
	out := make([]string, 0, len(s.allowed)+len(s.extra)+1)
	seen := make(map[string]struct{})

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if name == "PATH" {
			continue
		}
		if s.isDenied(name) {
			continue
		}
		if _, ok := s.allowed[name]; !ok {
			continue
		}
		out = append(out, name+"="+value)
		seen[name] = struct{}{}
	}

	for name, value := range s.extra {
		if _, already := seen[name]; already {
			continue
		}
		out = append(out, name+"="+value)
	}

	out = append(out, "PATH="+SafePath)
	return out
}
