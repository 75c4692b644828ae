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

package disclosure_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/disclosure"
)

func TestFileProvider_Configuration(t *testing.T) {
	dir := t.TempDir()
	p := disclosure.NewFileProvider[disclosure.SubagentDefinition](disclosure.NewSubagentLoader()).
		WithPath(dir).
		WithPriority(5).
		WithSourceType(disclosure.SourceProject)

	require.Equal(t, 5, p.Priority())
	require.Len(t, p.Paths(), 1)
}

func TestFileProvider_LoadSubagent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.md"), []byte(
		"---\nname: test-agent\ndescription: A test agent\n---\n\nAgent prompt here.\n"), 0o644))

	p := disclosure.NewFileProvider[disclosure.SubagentDefinition](disclosure.NewSubagentLoader()).WithPath(dir)

	agent, ok, err := p.Get(context.Background(), "test-agent")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "test-agent", agent.Name())
}

func TestFileProvider_MissingDirectoryYieldsEmpty(t *testing.T) {
	p := disclosure.NewFileProvider[disclosure.SubagentDefinition](disclosure.NewSubagentLoader()).
		WithPath(filepath.Join(t.TempDir(), "does-not-exist"))

	items, err := p.LoadAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}
