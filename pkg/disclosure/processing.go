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

package disclosure

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	backtickPattern     = regexp.MustCompile("!`([^`]+)`")
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
)

// SubstituteArgs replaces $1-$9 positional placeholders and
// $ARGUMENTS/${ARGUMENTS} with the whitespace-split arguments string,
// the templating an authored skill/subagent/rule body can reference.
func SubstituteArgs(content, arguments string) string {
	result := content
	args := strings.Fields(arguments)
	for i, arg := range args {
		if i >= 9 {
			break
		}
		result = strings.ReplaceAll(result, "$"+strconv.Itoa(i+1), arg)
	}
	result = strings.ReplaceAll(result, "$ARGUMENTS", arguments)
	result = strings.ReplaceAll(result, "${ARGUMENTS}", arguments)
	return result
}

// ProcessBashBackticks executes every !`command` occurrence in content
// under workingDir and replaces the occurrence with its trimmed
// stdout, or an "[Error: ...]"/"[Failed: ...]" marker on failure. Each
// command is independent; one failing doesn't abort the others.
func ProcessBashBackticks(ctx context.Context, content, workingDir string) string {
	matches := backtickPattern.FindAllStringSubmatch(content, -1)
	if matches == nil {
		return content
	}

	result := content
	for _, m := range matches {
		full, cmd := m[0], m[1]
		output := runShell(ctx, cmd, workingDir)
		result = strings.ReplaceAll(result, full, output)
	}
	return result
}

func runShell(ctx context.Context, cmd, workingDir string) string {
	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	c.Dir = workingDir
	out, err := c.Output()
	if err == nil {
		return strings.TrimSpace(string(out))
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return "[Error: " + strings.TrimSpace(string(exitErr.Stderr)) + "]"
	}
	return "[Failed: " + err.Error() + "]"
}

// ProcessFileReferences expands "@path" lines into the referenced
// file's content. A line starting with "@@" is left unchanged.
// Supports relative paths (resolved against baseDir), absolute paths,
// and "~/..." paths. A reference to a file that can't be read is left
// as the original line rather than erroring the whole document.
func ProcessFileReferences(content, baseDir string) string {
	var out strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "@") && !strings.HasPrefix(trimmed, "@@") {
			pathStr := strings.TrimSpace(strings.TrimPrefix(trimmed, "@"))
			if pathStr != "" {
				full := resolveReferencePath(pathStr, baseDir)
				if data, err := os.ReadFile(full); err == nil {
					out.Write(data)
					out.WriteByte('\n')
					continue
				}
			}
		}

		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}

func resolveReferencePath(pathStr, baseDir string) string {
	switch {
	case strings.HasPrefix(pathStr, "~/"):
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(pathStr, "~/"))
		}
		return pathStr
	case filepath.IsAbs(pathStr):
		return pathStr
	default:
		return filepath.Join(baseDir, pathStr)
	}
}

// ResolveMarkdownPaths rewrites relative markdown link targets
// ("[text](path)") to be relative to baseDir, leaving absolute and
// http(s) links untouched.
func ResolveMarkdownPaths(content, baseDir string) string {
	return markdownLinkPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := markdownLinkPattern.FindStringSubmatch(match)
		text, path := groups[1], groups[2]

		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "/") {
			return match
		}

		resolved := filepath.Join(baseDir, path)
		return "[" + text + "](" + resolved + ")"
	})
}
