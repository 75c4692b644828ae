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

//go:build !linux && !darwin

package sandbox

// newPlatformRuntime returns nil on platforms with no supported
// sandbox backend; Sandbox falls back to unconfined execution.
func newPlatformRuntime(cfg Config) Runtime { return nil }

// IsSupported always reports false outside Linux/macOS.
func IsSupported() bool { return false }
