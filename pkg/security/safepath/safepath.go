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

// Package safepath resolves untrusted relative paths against a root
// directory without ever following a symlink out of that root, closing
// the TOCTOU window between "check" and "use" by doing the checking and
// the using through the same file descriptor.
//
// Resolution descends one path component at a time with openat(2) and
// O_NOFOLLOW: every intermediate directory is opened relative to the
// fd of its parent, never by reassembling and re-stat'ing a string
// path. A symlink encountered mid-descent is read with readlinkat(2)
// and spliced back into the remaining components (or, for an absolute
// target, re-resolved from the root) under a shrinking depth budget,
// so a symlink cycle terminates instead of looping forever.
package safepath

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/kaidrach/agentrun/internal/rtlog"
	"github.com/kaidrach/agentrun/pkg/errs"
)

// DefaultMaxSymlinkDepth bounds how many symlink hops resolve() will
// follow before giving up, mirroring Linux's own MAXSYMLINKS.
const DefaultMaxSymlinkDepth = 8

// SafePath is an owned handle to a root directory plus a validated
// sequence of normalized path components whose resolution from that
// root never crossed a symlink to a location outside the root.
type SafePath struct {
	rootFd     int
	rootPath   string
	components []string
	resolved   string
	permissive bool
}

// Root opens dir and returns a file descriptor suitable for passing to
// Resolve as rootFd. The caller owns the returned fd and must close it
// (via Close) when the sandboxed root is no longer needed.
func Root(dir string) (int, error) {
	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, &errs.IOError{Err: fmt.Errorf("open root %s: %w", dir, err)}
	}
	return fd, nil
}

// Close releases a root fd obtained from Root.
func Close(fd int) error {
	return unix.Close(fd)
}

// Resolve validates relativePath against rootFd/rootPath, descending
// component-by-component with openat+O_NOFOLLOW so no symlink can
// redirect resolution outside rootPath. maxSymlinkDepth bounds the
// number of symlink hops followed.
func Resolve(ctx context.Context, rootFd int, rootPath, relativePath string, maxSymlinkDepth int) (*SafePath, error) {
	components := normalizeComponents(relativePath)
	if components == nil {
		return nil, &errs.PathEscapeError{Path: relativePath}
	}
	return resolveComponents(ctx, rootFd, rootPath, components, maxSymlinkDepth)
}

// normalizeComponents splits relativePath into Normal components,
// rejecting (by returning nil) any ".." that would walk above the
// synthetic root of the accumulated component stack.
func normalizeComponents(relativePath string) []string {
	clean := filepath.ToSlash(relativePath)
	parts := strings.Split(clean, "/")
	var out []string
	for _, p := range parts {
		switch p {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return nil
			}
			out = out[:len(out)-1]
		default:
			out = append(out, p)
		}
	}
	return out
}

func resolveComponents(ctx context.Context, rootFd int, rootPath string, components []string, maxSymlinkDepth int) (*SafePath, error) {
	log := rtlog.Get(ctx)
	validated := make([]string, 0, len(components))
	currentFd := rootFd
	ownedFds := make([]int, 0, len(components))
	defer func() {
		for _, fd := range ownedFds {
			unix.Close(fd)
		}
	}()

	symlinkDepth := 0

	for i, component := range components {
		isLast := i == len(components)-1

		flags := unix.O_RDONLY | unix.O_NOFOLLOW | unix.O_CLOEXEC
		if !isLast {
			flags |= unix.O_DIRECTORY
		}

		fd, err := unix.Openat(currentFd, component, flags, 0)
		switch {
		case err == nil:
			validated = append(validated, component)
			if !isLast {
				ownedFds = append(ownedFds, fd)
				currentFd = fd
			} else {
				unix.Close(fd)
			}

		case err == unix.ELOOP || err == unix.EMLINK:
			symlinkDepth++
			if symlinkDepth > maxSymlinkDepth {
				return nil, &errs.SymlinkDepthExceededError{Path: filepath.Join(components...), Max: maxSymlinkDepth}
			}

			target, rerr := readlinkat(currentFd, component)
			if rerr != nil {
				return nil, &errs.IOError{Err: rerr}
			}

			if filepath.IsAbs(target) {
				if !strings.HasPrefix(target, rootPath) {
					return nil, &errs.AbsoluteSymlinkError{Target: target}
				}
				rel := strings.TrimPrefix(strings.TrimPrefix(target, rootPath), "/")
				log.Debug("safepath: following absolute symlink", "target", target)
				return Resolve(ctx, rootFd, rootPath, rel, maxSymlinkDepth-symlinkDepth)
			}

			remaining := normalizeComponents(target)
			if remaining == nil {
				return nil, &errs.PathEscapeError{Path: target}
			}
			remaining = append(remaining, components[i+1:]...)
			full := append(append([]string{}, validated...), remaining...)
			log.Debug("safepath: splicing relative symlink", "target", target)
			return resolveComponents(ctx, rootFd, rootPath, full, maxSymlinkDepth-symlinkDepth)

		case err == unix.ENOENT:
			validated = append(validated, components[i:]...)
			i = len(components)
			goto done

		default:
			return nil, &errs.IOError{Err: fmt.Errorf("openat %s: %w", component, err)}
		}
	}

done:
	resolved := filepath.Join(append([]string{rootPath}, validated...)...)
	return &SafePath{
		rootFd:     rootFd,
		rootPath:   rootPath,
		components: validated,
		resolved:   resolved,
	}, nil
}

func readlinkat(dirFd int, name string) (string, error) {
	buf := make([]byte, 4096)
	n, err := unix.Readlinkat(dirFd, name, buf)
	if err != nil {
		return "", fmt.Errorf("readlinkat %s: %w", name, err)
	}
	return string(bytes.TrimRight(buf[:n], "\x00")), nil
}

// Unchecked builds a SafePath directly from an already-resolved path,
// bypassing TOCTOU protection. Only used in permissive sandbox mode,
// where symlinks are intentionally allowed.
func Unchecked(rootFd int, resolvedPath string) *SafePath {
	rel := strings.TrimPrefix(resolvedPath, "/")
	return &SafePath{
		rootFd:     rootFd,
		rootPath:   "/",
		components: normalizeComponents(rel),
		resolved:   resolvedPath,
		permissive: true,
	}
}

// IsPermissive reports whether this SafePath bypassed symlink checking.
func (p *SafePath) IsPermissive() bool { return p.permissive }

// RootFd returns the file descriptor of the sandbox root this path was
// resolved against.
func (p *SafePath) RootFd() int { return p.rootFd }

// RootPath returns the root directory this path was resolved against.
func (p *SafePath) RootPath() string { return p.rootPath }

// Components returns the validated, normalized path components.
func (p *SafePath) Components() []string { return p.components }

// String returns the fully resolved absolute path.
func (p *SafePath) String() string { return p.resolved }

// Filename returns the last path component, or "" for the root itself.
func (p *SafePath) Filename() string {
	if len(p.components) == 0 {
		return ""
	}
	return p.components[len(p.components)-1]
}

// ParentComponents returns every component except the last.
func (p *SafePath) ParentComponents() []string {
	if len(p.components) == 0 {
		return nil
	}
	return p.components[:len(p.components)-1]
}

// Open opens the resolved path relative to the sandbox root fd (or, in
// permissive mode, via the plain path) and returns the descriptor.
func (p *SafePath) Open(flags int, mode uint32) (int, error) {
	if p.permissive || len(p.components) == 0 {
		return unix.Open(p.resolved, flags|unix.O_CLOEXEC, mode)
	}

	dirFd := p.rootFd
	opened := make([]int, 0, len(p.components)-1)
	defer func() {
		for _, fd := range opened {
			unix.Close(fd)
		}
	}()

	for _, c := range p.ParentComponents() {
		fd, err := unix.Openat(dirFd, c, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
		if err != nil {
			return -1, &errs.IOError{Err: fmt.Errorf("openat %s: %w", c, err)}
		}
		opened = append(opened, fd)
		dirFd = fd
	}

	fd, err := unix.Openat(dirFd, p.Filename(), flags|unix.O_NOFOLLOW|unix.O_CLOEXEC, mode)
	if err != nil {
		return -1, &errs.IOError{Err: fmt.Errorf("openat %s: %w", p.Filename(), err)}
	}
	return fd, nil
}
