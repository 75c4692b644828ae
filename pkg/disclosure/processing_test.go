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

func TestSubstituteArgs_Positional(t *testing.T) {
	content := "File: $1, Action: $2, All: $ARGUMENTS"
	result := disclosure.SubstituteArgs(content, "main.rs build")
	require.Equal(t, "File: main.rs, Action: build, All: main.rs build", result)
}

func TestSubstituteArgs_Empty(t *testing.T) {
	result := disclosure.SubstituteArgs("Run: $ARGUMENTS", "")
	require.Equal(t, "Run: ", result)
}

func TestSubstituteArgs_Braces(t *testing.T) {
	result := disclosure.SubstituteArgs("Args: ${ARGUMENTS}", "test args")
	require.Equal(t, "Args: test args", result)
}

func TestSubstituteArgs_ManyPositionalCapsAtNine(t *testing.T) {
	result := disclosure.SubstituteArgs("$1 $2 $3 $4 $5 $6 $7 $8 $9", "a b c d e f g h i j")
	require.Equal(t, "a b c d e f g h i", result)
}

func TestStripFrontmatter(t *testing.T) {
	require.Equal(t, "Body content", disclosure.StripFrontmatter("---\ntitle: Test\n---\nBody content"))
	require.Equal(t, "Just body content", disclosure.StripFrontmatter("Just body content"))
}

func TestResolveMarkdownPaths(t *testing.T) {
	content := "Check [file](file.md) and [dir/other](dir/other.md).\n" +
		"External: [Docs](https://example.com)\n" +
		"Absolute: [Config](/etc/config)"

	result := disclosure.ResolveMarkdownPaths(content, filepath.FromSlash("/skills/test"))

	require.Contains(t, result, filepath.Join("/skills/test", "file.md"))
	require.Contains(t, result, filepath.Join("/skills/test", "dir/other.md"))
	require.Contains(t, result, "[Docs](https://example.com)")
	require.Contains(t, result, "[Config](/etc/config)")
}

func TestProcessBashBackticks(t *testing.T) {
	dir := t.TempDir()
	result := disclosure.ProcessBashBackticks(context.Background(), "Echo: !`echo hello`", dir)
	require.Contains(t, result, "Echo: hello")
}

func TestProcessBashBackticks_Error(t *testing.T) {
	dir := t.TempDir()
	result := disclosure.ProcessBashBackticks(context.Background(), "Result: !`exit 1`", dir)
	require.Contains(t, result, "[Error:")
}

func TestProcessFileReferences(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.txt"), []byte("test-config"), 0o644))

	result := disclosure.ProcessFileReferences("Config:\n@config.txt\nEnd", dir)
	require.Contains(t, result, "test-config")
	require.Contains(t, result, "End")
}

func TestProcessFileReferences_Escaped(t *testing.T) {
	dir := t.TempDir()
	result := disclosure.ProcessFileReferences("Keep: @@file.txt", dir)
	require.Contains(t, result, "@@file.txt")
}
