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

package contextassembler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/contextassembler"
)

func TestMemoryLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CLAUDE.md"), []byte("# Main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CLAUDE.local.md"), []byte("# Local"), 0o644))

	loader := contextassembler.NewMemoryLoader()
	content, err := loader.LoadAll(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"# Main"}, content.ClaudeMD)
	require.Equal(t, []string{"# Local"}, content.LocalMD)
}

func TestMemoryLoader_MissingFilesYieldEmpty(t *testing.T) {
	loader := contextassembler.NewMemoryLoader()
	content, err := loader.LoadAll(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.Empty(t, content.ClaudeMD)
	require.Empty(t, content.LocalMD)
}

func TestMemoryLoader_ResolvesImport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared.md"), []byte("Shared instructions"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CLAUDE.md"), []byte("Intro\n@shared.md\nOutro"), 0o644))

	loader := contextassembler.NewMemoryLoader()
	content, err := loader.LoadAll(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, content.ClaudeMD, 1)
	require.Contains(t, content.ClaudeMD[0], "Shared instructions")
	require.Contains(t, content.ClaudeMD[0], "Intro")
	require.Contains(t, content.ClaudeMD[0], "Outro")
}

func TestMemoryLoader_EscapedAtIsLiteral(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CLAUDE.md"), []byte("@@mention this"), 0o644))

	loader := contextassembler.NewMemoryLoader()
	content, err := loader.LoadAll(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"@mention this"}, content.ClaudeMD)
}
