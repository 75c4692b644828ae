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

package tool

import (
	"encoding/json"
	"fmt"
	"io"
	"syscall"

	"github.com/kaidrach/agentrun/pkg/security"
)

// notebook is the subset of the Jupyter notebook format this tool
// needs: an ordered list of cells, each with a source and a type.
type notebook struct {
	Cells    []notebookCell `json:"cells"`
	Metadata map[string]any `json:"metadata,omitempty"`
	NBFormat int            `json:"nbformat"`
	NBMinor  int            `json:"nbformat_minor"`
}

type notebookCell struct {
	CellType       string            `json:"cell_type"`
	Source         []string          `json:"source"`
	Metadata       map[string]any    `json:"metadata,omitempty"`
	Outputs        []json.RawMessage `json:"outputs,omitempty"`
	ExecutionCount *int              `json:"execution_count,omitempty"`
}

// NotebookEditTool replaces, inserts, or deletes a cell in a .ipynb
// file identified by its 0-indexed position.
type NotebookEditTool struct {
	sc *security.Context
}

// NewNotebookEditTool builds a NotebookEditTool confined to sc.
func NewNotebookEditTool(sc *security.Context) *NotebookEditTool {
	return &NotebookEditTool{sc: sc}
}

func (t *NotebookEditTool) Name() string { return "NotebookEdit" }

func (t *NotebookEditTool) Description() string {
	return "Replace, insert, or delete a cell in a Jupyter notebook (.ipynb) file."
}

func (t *NotebookEditTool) InputSchema() map[string]any {
	return object(map[string]any{
		"path":       str("Notebook path, relative to the working directory."),
		"cell_index": number("0-indexed cell position to operate on."),
		"new_source": str("New cell source. Required unless mode is \"delete\"."),
		"cell_type":  strEnum("Cell type for an inserted or replaced cell.", "code", "markdown"),
		"mode":       strEnum("Edit mode.", "replace", "insert", "delete"),
	}, "path", "cell_index", "mode")
}

type notebookEditInput struct {
	Path      string `json:"path"`
	CellIndex int    `json:"cell_index"`
	NewSource string `json:"new_source"`
	CellType  string `json:"cell_type"`
	Mode      string `json:"mode"`
}

func (t *NotebookEditTool) Execute(ectx ExecContext, raw json.RawMessage) (Result, error) {
	var in notebookEditInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if in.Path == "" {
		return ErrorResult("path is required"), nil
	}
	if in.CellIndex < 0 {
		return ErrorResult("cell_index must be >= 0"), nil
	}

	f, resolved, err := openFile(ectx.Context, t.sc, in.Path, syscall.O_RDWR, 0)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	defer f.Close()

	raw, err = io.ReadAll(f)
	if err != nil {
		return ErrorResult(fmt.Sprintf("read %s: %v", resolved, err)), nil
	}

	var nb notebook
	if err := json.Unmarshal(raw, &nb); err != nil {
		return ErrorResult(fmt.Sprintf("parse notebook: %v", err)), nil
	}

	switch in.Mode {
	case "delete":
		if in.CellIndex >= len(nb.Cells) {
			return ErrorResult(fmt.Sprintf("cell_index %d out of range (%d cells)", in.CellIndex, len(nb.Cells))), nil
		}
		nb.Cells = append(nb.Cells[:in.CellIndex], nb.Cells[in.CellIndex+1:]...)

	case "insert":
		if in.CellIndex > len(nb.Cells) {
			return ErrorResult(fmt.Sprintf("cell_index %d out of range (%d cells)", in.CellIndex, len(nb.Cells))), nil
		}
		cellType := in.CellType
		if cellType == "" {
			cellType = "code"
		}
		cell := notebookCell{CellType: cellType, Source: splitLines(in.NewSource)}
		nb.Cells = append(nb.Cells[:in.CellIndex], append([]notebookCell{cell}, nb.Cells[in.CellIndex:]...)...)

	case "replace":
		if in.CellIndex >= len(nb.Cells) {
			return ErrorResult(fmt.Sprintf("cell_index %d out of range (%d cells)", in.CellIndex, len(nb.Cells))), nil
		}
		nb.Cells[in.CellIndex].Source = splitLines(in.NewSource)
		if in.CellType != "" {
			nb.Cells[in.CellIndex].CellType = in.CellType
		}
		nb.Cells[in.CellIndex].Outputs = nil
		nb.Cells[in.CellIndex].ExecutionCount = nil

	default:
		return ErrorResult(fmt.Sprintf("unknown mode %q", in.Mode)), nil
	}

	updated, err := json.MarshalIndent(nb, "", " ")
	if err != nil {
		return ErrorResult(fmt.Sprintf("encode notebook: %v", err)), nil
	}

	if err := f.Truncate(0); err != nil {
		return ErrorResult(fmt.Sprintf("truncate %s: %v", resolved, err)), nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return ErrorResult(fmt.Sprintf("seek %s: %v", resolved, err)), nil
	}
	if _, err := f.Write(updated); err != nil {
		return ErrorResult(fmt.Sprintf("write %s: %v", resolved, err)), nil
	}

	return OKResult(fmt.Sprintf("%s cell %d in %s", in.Mode, in.CellIndex, in.Path)), nil
}

// splitLines turns a plain string into the line-array form Jupyter
// stores cell source as, keeping the trailing newline on every line
// but the last (matching nbformat's own convention).
func splitLines(source string) []string {
	if source == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			lines = append(lines, source[start:i+1])
			start = i + 1
		}
	}
	if start < len(source) {
		lines = append(lines, source[start:])
	}
	return lines
}
