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

// Package plugins discovers plugin manifests on disk. A plugin is a
// directory carrying a `.claude-plugin/plugin.json` descriptor. Only
// the manifest is read: this package does not load a plugin's skills,
// agents or commands, and no disclosure provider reads plugin
// directories.
package plugins

// Manifest is the parsed body of a `.claude-plugin/plugin.json` file.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
}

// Plugin is a discovered plugin: its manifest plus the directory it
// was loaded from (the root containing `.claude-plugin/`, not the
// `.claude-plugin` directory itself).
type Plugin struct {
	Name     string
	Dir      string
	Manifest Manifest
}
