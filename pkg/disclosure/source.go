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

// Package disclosure implements the progressive-disclosure pattern: index
// entries carry only a name and short description in the model's context
// window, with full content (a skill body, a subagent prompt, an output
// style) loaded lazily through a content source when actually needed.
package disclosure

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// Named is satisfied by anything that can be keyed by name in a
// Provider or Registry.
type Named interface {
	Name() string
}

// SourceType tags where an index entry came from, which in turn
// determines its override priority when two providers disagree on a
// name.
type SourceType int

const (
	SourceBuiltin SourceType = iota
	SourceUser
	SourceProject
	SourceManaged
	SourcePlugin
)

// Priority ranks source types so higher-priority entries win on a name
// collision: project-authored content overrides user content, which
// overrides managed (org-distributed) content, which overrides
// built-ins, which override plugin-contributed content.
func (s SourceType) Priority() int {
	switch s {
	case SourceProject:
		return 20
	case SourceUser:
		return 10
	case SourceManaged:
		return 5
	case SourceBuiltin:
		return 0
	case SourcePlugin:
		return -5
	default:
		return 0
	}
}

func (s SourceType) String() string {
	switch s {
	case SourceBuiltin:
		return "builtin"
	case SourceUser:
		return "user"
	case SourceProject:
		return "project"
	case SourceManaged:
		return "managed"
	case SourcePlugin:
		return "plugin"
	default:
		return "unknown"
	}
}

// SourceTypeFromString parses a source-type tag, defaulting to
// SourceUser for an empty or unrecognized value.
func SourceTypeFromString(s string) SourceType {
	switch s {
	case "builtin":
		return SourceBuiltin
	case "project":
		return SourceProject
	case "managed":
		return SourceManaged
	case "plugin":
		return SourcePlugin
	default:
		return SourceUser
	}
}

// httpTimeout bounds an HTTP content-source load.
const httpTimeout = 30 * time.Second

var httpClient = &http.Client{Timeout: httpTimeout}

// ContentSourceKind discriminates ContentSource's three variants.
type ContentSourceKind int

const (
	ContentFile ContentSourceKind = iota
	ContentInMemory
	ContentHTTP
)

// ContentSource is where an index entry's full content actually lives.
// It is loaded on demand, never eagerly.
type ContentSource struct {
	kind    ContentSourceKind
	path    string // ContentFile
	content string // ContentInMemory
	url     string // ContentHTTP
}

// FileSource builds a ContentSource backed by a file on disk.
func FileSource(path string) ContentSource { return ContentSource{kind: ContentFile, path: path} }

// InMemorySource builds a ContentSource that already holds its content.
func InMemorySource(content string) ContentSource {
	return ContentSource{kind: ContentInMemory, content: content}
}

// HTTPSource builds a ContentSource fetched over HTTP at load time.
func HTTPSource(url string) ContentSource { return ContentSource{kind: ContentHTTP, url: url} }

// Load resolves the source's content, reading the file, returning the
// in-memory string, or issuing the HTTP GET, as appropriate.
func (c ContentSource) Load(ctx context.Context) (string, error) {
	switch c.kind {
	case ContentInMemory:
		return c.content, nil
	case ContentFile:
		data, err := os.ReadFile(c.path)
		if err != nil {
			return "", &errs.IOError{Err: fmt.Errorf("read %s: %w", c.path, err)}
		}
		return string(data), nil
	case ContentHTTP:
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return "", &errs.InvalidInputError{Message: err.Error()}
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return "", &errs.IOError{Err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return "", &errs.IOError{Err: fmt.Errorf("fetch %s: status %d", c.url, resp.StatusCode)}
		}
		buf := make([]byte, 0, 4096)
		tmp := make([]byte, 4096)
		for {
			n, readErr := resp.Body.Read(tmp)
			buf = append(buf, tmp[:n]...)
			if readErr != nil {
				break
			}
		}
		return string(buf), nil
	default:
		return "", &errs.InvalidInputError{Message: "unknown content source kind"}
	}
}

// IsInMemory reports whether this source already holds its content.
func (c ContentSource) IsInMemory() bool { return c.kind == ContentInMemory }

// IsFile reports whether this source reads from disk.
func (c ContentSource) IsFile() bool { return c.kind == ContentFile }

// FilePath returns the backing path and true, if this is a file source.
func (c ContentSource) FilePath() (string, bool) {
	if c.kind != ContentFile {
		return "", false
	}
	return c.path, true
}

// BaseDir returns the parent directory of a file source's path, the
// directory @-references and bash backticks authored in that file
// should resolve relative to. Non-file sources have no base directory.
func (c ContentSource) BaseDir() (string, bool) {
	path, ok := c.FilePath()
	if !ok {
		return "", false
	}
	return filepath.Dir(path), true
}
