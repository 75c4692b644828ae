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

const defaultMaxReadBytes = 10 * 1024 * 1024

// ReadFileTool reads file contents through a security.Context, with
// optional line-range selection and line numbering.
type ReadFileTool struct {
	sc          *security.Context
	maxFileSize int64
}

// NewReadFileTool builds a ReadFileTool confined to sc.
func NewReadFileTool(sc *security.Context) *ReadFileTool {
	return &ReadFileTool{sc: sc, maxFileSize: defaultMaxReadBytes}
}

func (t *ReadFileTool) Name() string { return "Read" }

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file, optionally restricted to a line range, with 1-indexed line numbers prefixed to each line."
}

func (t *ReadFileTool) InputSchema() map[string]any {
	return generateSchema[readFileInput]()
}

type readFileInput struct {
	Path        string `json:"path" jsonschema:"required,description=File path, relative to the working directory."`
	StartLine   int    `json:"start_line,omitempty" jsonschema:"description=First line to include (1-indexed). Defaults to 1."`
	EndLine     int    `json:"end_line,omitempty" jsonschema:"description=Last line to include, inclusive. Defaults to end of file."`
	LineNumbers *bool  `json:"line_numbers,omitempty" jsonschema:"description=Include line numbers in the output. Defaults to true."`
}

func (t *ReadFileTool) Execute(ectx ExecContext, raw json.RawMessage) (Result, error) {
	var in readFileInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid input: %v", err)), nil
	}
	if in.Path == "" {
		return ErrorResult("path is required"), nil
	}

	f, resolved, err := openFile(ectx.Context, t.sc, in.Path, syscall.O_RDONLY, 0)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return ErrorResult(fmt.Sprintf("stat %s: %v", resolved, err)), nil
	}
	if st.Size() > t.maxFileSize {
		return ErrorResult(fmt.Sprintf("file too large: %d bytes (max %d)", st.Size(), t.maxFileSize)), nil
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return ErrorResult(fmt.Sprintf("read %s: %v", resolved, err)), nil
	}

	showLineNumbers := true
	if in.LineNumbers != nil {
		showLineNumbers = *in.LineNumbers
	}

	lines := strings.Split(string(content), "\n")
	total := len(lines)

	start := in.StartLine
	if start < 1 {
		start = 1
	}
	end := in.EndLine
	if end <= 0 || end > total {
		end = total
	}
	if start > end {
		return ErrorResult(fmt.Sprintf("invalid range: start_line (%d) > end_line (%d)", start, end)), nil
	}
	if start > total {
		return ErrorResult(fmt.Sprintf("start_line (%d) exceeds file length (%d lines)", start, total)), nil
	}

	var out strings.Builder
	for i := start - 1; i < end && i < len(lines); i++ {
		if showLineNumbers {
			fmt.Fprintf(&out, "%6d\t%s\n", i+1, lines[i])
		} else {
			fmt.Fprintf(&out, "%s\n", lines[i])
		}
	}

	return OKResult(strings.TrimSuffix(out.String(), "\n")), nil
}
