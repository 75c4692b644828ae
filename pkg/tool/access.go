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

package tool

import "strings"

// AccessKind selects which variant of Access is active.
type AccessKind int

const (
	AccessAll AccessKind = iota
	AccessNone
	AccessOnly
	AccessExcept
)

// Access controls which registered tools a call site may invoke.
type Access struct {
	kind  AccessKind
	names map[string]struct{}
}

// AllTools permits every registered tool; the zero value of Access.
func AllTools() Access { return Access{kind: AccessAll} }

// NoTools permits nothing.
func NoTools() Access { return Access{kind: AccessNone} }

// Only permits exactly the named tools.
func Only(names ...string) Access { return Access{kind: AccessOnly, names: toSet(names)} }

// Except permits every tool except the named ones.
func Except(names ...string) Access { return Access{kind: AccessExcept, names: toSet(names)} }

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// IsAllowed reports whether toolName may be invoked under this Access.
// Only/Except compare toolName literally; callers that need the scoped-
// suffix pattern matching a permission list uses should go through
// MatchesPattern/IsPatternAllowed instead.
func (a Access) IsAllowed(toolName string) bool {
	switch a.kind {
	case AccessNone:
		return false
	case AccessOnly:
		_, ok := a.names[toolName]
		return ok
	case AccessExcept:
		_, ok := a.names[toolName]
		return !ok
	default:
		return true
	}
}

// BaseName strips a scoped suffix like "Bash(git:*)" down to "Bash", the
// token compared for pattern matching.
func BaseName(pattern string) string {
	if i := strings.IndexByte(pattern, '('); i >= 0 {
		return pattern[:i]
	}
	return pattern
}

// MatchesPattern reports whether pattern (possibly scoped, e.g.
// "Bash(git:*)") matches toolName — either an exact string match or a
// match on the pattern's base token before "(".
func MatchesPattern(pattern, toolName string) bool {
	return pattern == toolName || BaseName(pattern) == toolName
}

// IsPatternAllowed reports whether toolName is permitted by a permission
// list of (possibly scoped) patterns. An empty list means unrestricted.
func IsPatternAllowed(allowed []string, toolName string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, pattern := range allowed {
		if MatchesPattern(pattern, toolName) {
			return true
		}
	}
	return false
}
