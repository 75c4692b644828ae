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
	"strings"
	"syscall"

	"github.com/kaidrach/agentrun/pkg/security"
)

// EditFileTool performs an exact string replacement within a file.
type EditFileTool struct {
	sc *security.Context
}

// NewEditFileTool builds an EditFileTool confined to sc.
func NewEditFileTool(sc *security.Context) *EditFileTool {
	return &EditFileTool{sc: sc}
}

func (t *EditFileTool) Name() string { return "Edit" }

func (t *EditFileTool) Description() string {
	return "Replace an exact string match in a file with new text. old_string must match exactly once unless replace_all is set."
}

func (t *EditFileTool) InputSchema() map[string]any {
	return object(map[string]any{
		"path":        str("File path, relative to the working directory."),
		"old_string":  str("Exact text to find."),
		"new_string":  str("Replacement text."),
		"replace_all": boolean("Replace every occurrence instead of requiring exactly one. Defaults to false."),
	}, "path", "old_string", "new_string")
}

type editFileInput struct {
	Path       string `json:"path"`
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all"`
}

func (t *EditFileTool) Execute(ectx ExecContext, raw json.RawMessage) (Result, error) {
	var in editFileInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if in.Path == "" {
		return ErrorResult("path is required"), nil
	}
	if in.OldString == in.NewString {
		return ErrorResult("old_string and new_string must differ"), nil
	}

	f, resolved, err := openFile(ectx.Context, t.sc, in.Path, syscall.O_RDWR, 0)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return ErrorResult(fmt.Sprintf("read %s: %v", resolved, err)), nil
	}
	original := string(content)

	count := strings.Count(original, in.OldString)
	switch {
	case count == 0:
		return ErrorResult("old_string not found in file"), nil
	case count > 1 && !in.ReplaceAll:
		return ErrorResult(fmt.Sprintf("old_string matches %d times; pass replace_all or narrow the match", count)), nil
	}

	var updated string
	if in.ReplaceAll {
		updated = strings.ReplaceAll(original, in.OldString, in.NewString)
	} else {
		updated = strings.Replace(original, in.OldString, in.NewString, 1)
	}

	if err := f.Truncate(0); err != nil {
		return ErrorResult(fmt.Sprintf("truncate %s: %v", resolved, err)), nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return ErrorResult(fmt.Sprintf("seek %s: %v", resolved, err)), nil
	}
	if _, err := f.WriteString(updated); err != nil {
		return ErrorResult(fmt.Sprintf("write %s: %v", resolved, err)), nil
	}

	replaced := 1
	if in.ReplaceAll {
		replaced = count
	}
	return OKResult(fmt.Sprintf("replaced %d occurrence(s) in %s", replaced, in.Path)), nil
}
