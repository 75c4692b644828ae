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

package plugins

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// validName matches the plugin directory naming rule: lowercase
// letters, digits, and dashes, must start with a letter.
var validName = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Discover scans dir (a plugins root such as `~/.claude/plugins` or
// `<project>/.claude/plugins`) for immediate subdirectories that carry
// a `.claude-plugin/plugin.json` manifest. A missing dir is not an
// error — it simply yields no plugins.
func Discover(dir string) ([]Plugin, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &errs.IOError{Err: err}
	}

	var out []Plugin
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pluginDir := filepath.Join(dir, entry.Name())
		p, err := Load(pluginDir)
		if err != nil {
			// A subdirectory that isn't a plugin (no manifest) or has
			// a malformed one doesn't take down the whole scan.
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// Load reads the manifest of a single plugin directory. Unlike
// Discover it reports a missing or malformed manifest rather than
// skipping it, since the caller named this directory explicitly.
func Load(pluginDir string) (*Plugin, error) {
	return loadManifest(filepath.Base(pluginDir), pluginDir, filepath.Join(pluginDir, ".claude-plugin", "plugin.json"))
}

func loadManifest(dirName, pluginDir, manifestPath string) (*Plugin, error) {
	data, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		return nil, &errs.ManifestNotFoundError{Path: manifestPath}
	}
	if err != nil {
		return nil, &errs.IOError{Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &errs.InvalidManifestError{Message: err.Error()}
	}
	if m.Name == "" {
		m.Name = dirName
	}
	if !validName.MatchString(m.Name) {
		return nil, &errs.InvalidPluginNameError{Name: m.Name}
	}

	return &Plugin{Name: m.Name, Dir: pluginDir, Manifest: m}, nil
}
