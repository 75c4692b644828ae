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
	"syscall"

	"github.com/kaidrach/agentrun/pkg/security"
)

const defaultMaxWriteBytes = 1 * 1024 * 1024

// WriteFileTool creates or overwrites a file through a security.Context.
type WriteFileTool struct {
	sc          *security.Context
	maxFileSize int
}

// NewWriteFileTool builds a WriteFileTool confined to sc.
func NewWriteFileTool(sc *security.Context) *WriteFileTool {
	return &WriteFileTool{sc: sc, maxFileSize: defaultMaxWriteBytes}
}

func (t *WriteFileTool) Name() string { return "Write" }

func (t *WriteFileTool) Description() string {
	return "Create a file with the given content, or overwrite it if it already exists."
}

func (t *WriteFileTool) InputSchema() map[string]any {
	return object(map[string]any{
		"path":    str("File path, relative to the working directory."),
		"content": str("Full content to write."),
	}, "path", "content")
}

type writeFileInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (t *WriteFileTool) Execute(ectx ExecContext, raw json.RawMessage) (Result, error) {
	var in writeFileInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if in.Path == "" {
		return ErrorResult("path is required"), nil
	}
	if len(in.Content) > t.maxFileSize {
		return ErrorResult(fmt.Sprintf("content too large: %d bytes (max %d)", len(in.Content), t.maxFileSize)), nil
	}

	f, resolved, err := openFile(ectx.Context, t.sc, in.Path, syscall.O_WRONLY|syscall.O_CREAT|syscall.O_TRUNC, 0o644)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	defer f.Close()

	if _, err := f.WriteString(in.Content); err != nil {
		return ErrorResult(fmt.Sprintf("write %s: %v", resolved, err)), nil
	}

	return OKResult(fmt.Sprintf("wrote %d bytes to %s", len(in.Content), in.Path)), nil
}
