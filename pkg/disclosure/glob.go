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

import (
	"regexp"
	"strings"
	"sync"
)

var (
	globCacheMu sync.Mutex
	globCache   = make(map[string]*regexp.Regexp)
)

// globToRegexp translates a shell-style glob ("**/*.rs", "src/*.ts")
// into an anchored regular expression, caching the result since rule
// path patterns are matched repeatedly against many candidate files.
func globToRegexp(pattern string) *regexp.Regexp {
	globCacheMu.Lock()
	if re, ok := globCache[pattern]; ok {
		globCacheMu.Unlock()
		return re
	}
	globCacheMu.Unlock()

	var b strings.Builder
	b.WriteString("^")

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
				// swallow a following slash so "**/foo" also matches "foo"
				if i+1 < len(runes) && runes[i+1] == '/' {
					i++
				}
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '.', '+', '(', ')', '|', '^', '$', '{', '}', '[', ']', '\\':
			b.WriteString("\\")
			b.WriteRune(runes[i])
		default:
			b.WriteRune(runes[i])
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		re = regexp.MustCompile("$^") // matches nothing
	}

	globCacheMu.Lock()
	globCache[pattern] = re
	globCacheMu.Unlock()

	return re
}
