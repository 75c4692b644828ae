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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kaidrach/agentrun/pkg/errs"
)

func writeManifest(t *testing.T, root, name, body string) {
	t.Helper()
	dir := filepath.Join(root, name, ".claude-plugin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverSkipsNonPlugins(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "formatter", `{"name":"formatter","version":"1.0.0"}`)
	if err := os.MkdirAll(filepath.Join(root, "scratch"), 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(found) != 1 || found[0].Name != "formatter" {
		t.Fatalf("expected exactly [formatter], got %+v", found)
	}
}

func TestDiscoverMissingRootIsEmpty(t *testing.T) {
	found, err := Discover(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil || len(found) != 0 {
		t.Fatalf("expected no error and no plugins, got %v, %+v", err, found)
	}
}

func TestLoadInvalidManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "broken", `{not json`)

	_, err := Load(filepath.Join(root, "broken"))
	var invalid *errs.InvalidManifestError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidManifestError, got %v (%T)", err, err)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := Load(filepath.Join(root, "empty"))
	var notFound *errs.ManifestNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ManifestNotFoundError, got %v (%T)", err, err)
	}
}

func TestLoadInvalidName(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "Bad Name", `{"name":"Bad Name"}`)

	_, err := Load(filepath.Join(root, "Bad Name"))
	var invalidName *errs.InvalidPluginNameError
	if !errors.As(err, &invalidName) {
		t.Fatalf("expected InvalidPluginNameError, got %v (%T)", err, err)
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(Plugin{Name: "formatter", Dir: "/a"}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := r.Add(Plugin{Name: "formatter", Dir: "/b"})
	var dup *errs.DuplicatePluginNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicatePluginNameError, got %v (%T)", err, err)
	}
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry()
	_ = r.Add(Plugin{Name: "zeta"})
	_ = r.Add(Plugin{Name: "alpha"})

	list := r.List()
	if len(list) != 2 || list[0].Name != "alpha" || list[1].Name != "zeta" {
		t.Fatalf("expected sorted [alpha zeta], got %+v", list)
	}
}
