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

func TestContentSource_Priority(t *testing.T) {
	require.Equal(t, 20, disclosure.SourceProject.Priority())
	require.Equal(t, 10, disclosure.SourceUser.Priority())
	require.Equal(t, 5, disclosure.SourceManaged.Priority())
	require.Equal(t, 0, disclosure.SourceBuiltin.Priority())
	require.Equal(t, -5, disclosure.SourcePlugin.Priority())
}

func TestSourceTypeFromString(t *testing.T) {
	require.Equal(t, disclosure.SourceProject, disclosure.SourceTypeFromString("project"))
	require.Equal(t, disclosure.SourceUser, disclosure.SourceTypeFromString(""))
	require.Equal(t, disclosure.SourceUser, disclosure.SourceTypeFromString("bogus"))
	require.Equal(t, disclosure.SourcePlugin, disclosure.SourceTypeFromString("plugin"))
}

func TestContentSource_InMemory(t *testing.T) {
	src := disclosure.InMemorySource("hello")
	require.True(t, src.IsInMemory())
	content, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "hello", content)
}

func TestContentSource_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("file body"), 0o644))

	src := disclosure.FileSource(path)
	require.True(t, src.IsFile())

	content, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "file body", content)

	base, ok := src.BaseDir()
	require.True(t, ok)
	require.Equal(t, dir, base)
}

func TestContentSource_FileMissing(t *testing.T) {
	src := disclosure.FileSource("/nonexistent/path/does-not-exist.txt")
	_, err := src.Load(context.Background())
	require.Error(t, err)
}
