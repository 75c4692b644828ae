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

package auth

import (
	"os"
	"strings"
)

// envBool reports whether an environment variable is set to a truthy
// value ("1", "true", "yes", case-insensitively).
func envBool(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// envOpt returns the variable's value, or ok=false if unset or empty.
func envOpt(name string) (string, bool) {
	v := os.Getenv(name)
	if v == "" {
		return "", false
	}
	return v, true
}

// envWithFallbacks returns the first set variable among names.
func envWithFallbacks(names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := envOpt(n); ok {
			return v, true
		}
	}
	return "", false
}

// envWithFallbacksOr is envWithFallbacks with a default when none are set.
func envWithFallbacksOr(fallback string, names ...string) string {
	if v, ok := envWithFallbacks(names...); ok {
		return v
	}
	return fallback
}
