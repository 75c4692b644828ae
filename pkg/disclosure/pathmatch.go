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

package disclosure

// PathMatched is implemented by index entries (rules, in practice)
// that only apply to a subset of files, selected by glob pattern.
type PathMatched interface {
	PathPatterns() []string // nil means global; empty-non-nil means matches nothing
	MatchesPath(path string) bool
}

// IsGlobal reports whether m has no patterns at all, i.e. applies to
// every file.
func IsGlobal(m PathMatched) bool { return m.PathPatterns() == nil }

// MatchesAnyPattern implements the shared matching rule: no patterns
// matches everything, an explicitly empty pattern list matches
// nothing, otherwise any pattern matching wins.
func MatchesAnyPattern(patterns []string, path string) bool {
	if patterns == nil {
		return true
	}
	if len(patterns) == 0 {
		return false
	}
	for _, p := range patterns {
		if globMatch(p, path) {
			return true
		}
	}
	return false
}

// globMatch supports "**" (any number of path segments, including
// none) in addition to filepath.Match's single-segment "*" and "?",
// since rule authors commonly write patterns like "**/*.rs". The glob
// is translated to a regular expression rather than walked segment by
// segment, keeping the matcher a single pass over the pattern.
func globMatch(pattern, path string) bool {
	re := globToRegexp(pattern)
	return re.MatchString(path)
}
