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

package tool_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/security"
	"github.com/kaidrach/agentrun/pkg/tool"
)

func newTestSecurityContext(t *testing.T, root string) *security.Context {
	t.Helper()
	sc, err := security.Permissive(context.Background(), root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Close() })
	return sc
}

func TestReadFileTool_LineRange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\nthree\n"), 0o644))
	sc := newTestSecurityContext(t, dir)

	r := tool.NewReadFileTool(sc)
	in, _ := json.Marshal(map[string]any{"path": "a.txt", "start_line": 2, "end_line": 2, "line_numbers": false})
	result, err := r.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "two", result.Output)
}

func TestWriteFileTool_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	sc := newTestSecurityContext(t, dir)

	w := tool.NewWriteFileTool(sc)
	in, _ := json.Marshal(map[string]any{"path": "out.txt", "content": "hello"})
	result, err := w.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.False(t, result.IsError)

	content, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}

func TestEditFileTool_RequiresUniqueMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("foo foo"), 0o644))
	sc := newTestSecurityContext(t, dir)

	e := tool.NewEditFileTool(sc)
	in, _ := json.Marshal(map[string]any{"path": "a.txt", "old_string": "foo", "new_string": "bar"})
	result, err := e.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestEditFileTool_ReplaceAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("foo foo"), 0o644))
	sc := newTestSecurityContext(t, dir)

	e := tool.NewEditFileTool(sc)
	in, _ := json.Marshal(map[string]any{"path": "a.txt", "old_string": "foo", "new_string": "bar", "replace_all": true})
	result, err := e.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.False(t, result.IsError)

	content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "bar bar", string(content))
}

func TestGrepTool_FindsMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\nfunc Foo() {}\n"), 0o644))
	sc := newTestSecurityContext(t, dir)

	g := tool.NewGrepTool(sc)
	in, _ := json.Marshal(map[string]any{"pattern": "func Foo"})
	result, err := g.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Contains(t, result.Output, "a.go")
}

func TestGlobTool_MatchesDoubleStar(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "x.go"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "y.txt"), []byte("y"), 0o644))
	sc := newTestSecurityContext(t, dir)

	g := tool.NewGlobTool(sc)
	in, _ := json.Marshal(map[string]any{"pattern": "**/*.go"})
	result, err := g.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.Contains(t, result.Output, "sub/x.go")
	require.NotContains(t, result.Output, "y.txt")
}

func TestBashTool_RunsCommand(t *testing.T) {
	dir := t.TempDir()
	sc := newTestSecurityContext(t, dir)

	b := tool.NewBashTool(sc, tool.NewShellRegistry())
	in, _ := json.Marshal(map[string]any{"command": "echo hi"})
	result, err := b.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Contains(t, result.Output, "hi")
}

func TestBashTool_BackgroundAndKill(t *testing.T) {
	dir := t.TempDir()
	sc := newTestSecurityContext(t, dir)
	registry := tool.NewShellRegistry()

	b := tool.NewBashTool(sc, registry)
	in, _ := json.Marshal(map[string]any{"command": "sleep 30", "run_in_background": true})
	result, err := b.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.False(t, result.IsError)

	k := tool.NewKillShellTool(registry)
	killIn, _ := json.Marshal(map[string]any{"shell_id": extractShellID(result.Output)})
	killResult, err := k.Execute(tool.ExecContext{Context: context.Background()}, killIn)
	require.NoError(t, err)
	require.False(t, killResult.IsError)
}

func extractShellID(output string) string {
	var id string
	var pid int
	_, _ = fmt.Sscanf(output, "started background shell %s (pid %d)", &id, &pid)
	return id
}

func TestTodoTool_ReplaceAndMerge(t *testing.T) {
	td := tool.NewTodoTool()
	ectx := tool.ExecContext{Context: context.Background(), CallID: "turn-1"}

	in, _ := json.Marshal(map[string]any{
		"merge": false,
		"todos": []map[string]any{{"id": "1", "content": "do thing", "status": "pending"}},
	})
	result, err := td.Execute(ectx, in)
	require.NoError(t, err)
	require.Contains(t, result.Output, "do thing")

	mergeIn, _ := json.Marshal(map[string]any{
		"merge": true,
		"todos": []map[string]any{{"id": "1", "content": "do thing", "status": "completed"}},
	})
	result, err = td.Execute(ectx, mergeIn)
	require.NoError(t, err)
	require.Contains(t, result.Output, "completed")
}

func TestPlanTool_RejectsViaHook(t *testing.T) {
	p := tool.NewPlanTool(func(plan string) error { return os.ErrPermission })
	in, _ := json.Marshal(map[string]any{"plan": "do the thing"})
	result, err := p.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestTaskTool_DispatchesToRunner(t *testing.T) {
	task := tool.NewTaskTool(func(_ context.Context, subagentType, prompt string) (string, error) {
		return subagentType + ":" + prompt, nil
	}, "explorer")

	in, _ := json.Marshal(map[string]any{"prompt": "find bugs", "subagent_type": "explorer"})
	result, err := task.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.Equal(t, "explorer:find bugs", result.Output)
}

func TestNotebookEditTool_ReplaceCell(t *testing.T) {
	dir := t.TempDir()
	nb := `{"cells":[{"cell_type":"code","source":["print(1)"]}],"nbformat":4,"nbformat_minor":5}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "n.ipynb"), []byte(nb), 0o644))
	sc := newTestSecurityContext(t, dir)

	n := tool.NewNotebookEditTool(sc)
	in, _ := json.Marshal(map[string]any{"path": "n.ipynb", "cell_index": 0, "mode": "replace", "new_source": "print(2)"})
	result, err := n.Execute(tool.ExecContext{Context: context.Background()}, in)
	require.NoError(t, err)
	require.False(t, result.IsError)

	content, err := os.ReadFile(filepath.Join(dir, "n.ipynb"))
	require.NoError(t, err)
	require.Contains(t, string(content), "print(2)")
}
