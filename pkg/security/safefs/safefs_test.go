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

package safefs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/security/safefs"
	"github.com/kaidrach/agentrun/pkg/security/safepath"
)

func resolve(t *testing.T, dir, rel string) *safepath.SafePath {
	t.Helper()
	fd, err := safepath.Root(dir)
	require.NoError(t, err)
	t.Cleanup(func() { safepath.Close(fd) })
	sp, err := safepath.Resolve(context.Background(), fd, dir, rel, safepath.DefaultMaxSymlinkDepth)
	require.NoError(t, err)
	return sp
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sp := resolve(t, dir, "note.txt")

	h, err := safefs.OpenWrite(sp)
	require.NoError(t, err)
	require.NoError(t, h.WriteAll([]byte("hello safefs")))
	require.NoError(t, h.Close())

	sp2 := resolve(t, dir, "note.txt")
	rh, err := safefs.OpenRead(sp2)
	require.NoError(t, err)
	defer rh.Close()

	content, err := rh.ReadAll()
	require.NoError(t, err)
	require.Equal(t, "hello safefs", string(content))
}

func TestAtomicWrite_ReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	sp := resolve(t, dir, "doc.txt")
	require.NoError(t, safefs.AtomicWrite(sp, []byte("new content")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new content", string(data))
}

func TestAtomicWrite_NoTempFileLeftBehindOnSuccess(t *testing.T) {
	dir := t.TempDir()
	sp := resolve(t, dir, "result.txt")
	require.NoError(t, safefs.AtomicWrite(sp, []byte("payload")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "result.txt", entries[0].Name())
}
