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

// Package safefs opens and writes files through a safepath.SafePath so
// every operation stays relative to the fd chain that validated the
// path, and provides an atomic-write protocol (temp file + fsync +
// rename + parent fsync) so a crash mid-write never leaves a partially
// written file at the destination name.
package safefs

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/security/safepath"
)

// Handle is a file opened through a validated SafePath.
type Handle struct {
	fd   int
	path *safepath.SafePath
}

// OpenRead opens path for reading.
func OpenRead(path *safepath.SafePath) (*Handle, error) {
	fd, err := path.Open(unix.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return &Handle{fd: fd, path: path}, nil
}

// OpenWrite opens path for writing, truncating any existing content.
func OpenWrite(path *safepath.SafePath) (*Handle, error) {
	fd, err := path.Open(unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &Handle{fd: fd, path: path}, nil
}

// OpenAppend opens path for writing, appending to any existing content.
func OpenAppend(path *safepath.SafePath) (*Handle, error) {
	fd, err := path.Open(unix.O_WRONLY|unix.O_CREAT|unix.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Handle{fd: fd, path: path}, nil
}

// Path returns the SafePath this handle was opened from.
func (h *Handle) Path() *safepath.SafePath { return h.path }

// Close releases the underlying file descriptor.
func (h *Handle) Close() error { return unix.Close(h.fd) }

// ReadAll reads the handle's full contents directly off the fd,
// bypassing os.File so no finalizer can race a concurrent Close.
func (h *Handle) ReadAll() ([]byte, error) {
	var stat unix.Stat_t
	if err := unix.Fstat(h.fd, &stat); err != nil {
		return nil, &errs.IOError{Err: err}
	}

	buf := make([]byte, 0, stat.Size)
	tmp := make([]byte, 32*1024)
	for {
		n, err := unix.Read(h.fd, tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if n == 0 || err != nil {
			if err != nil {
				return buf, &errs.IOError{Err: err}
			}
			break
		}
	}
	return buf, nil
}

// WriteAll writes content to the handle and fsyncs it.
func (h *Handle) WriteAll(content []byte) error {
	if err := writeFd(h.fd, content); err != nil {
		return &errs.IOError{Err: err}
	}
	if err := unix.Fsync(h.fd); err != nil {
		return &errs.IOError{Err: err}
	}
	return nil
}

// AtomicWrite writes content to path using a temp-file-then-rename
// protocol scoped to the parent directory's fd: create a uniquely
// named temp file with O_EXCL next to the destination, write and
// fsync it, renameat it over the destination, then fsync the parent
// directory so the rename itself is durable.
func AtomicWrite(path *safepath.SafePath, content []byte) error {
	filename := path.Filename()
	if filename == "" {
		return &errs.InvalidPathError{Reason: "no filename for atomic write"}
	}

	parentFd, closeParent, err := openParentFd(path)
	if err != nil {
		return err
	}
	defer closeParent()

	tempName := fmt.Sprintf(".%s.%s.tmp", filename, uuid.New().String())

	tempFd, err := unix.Openat(parentFd, tempName, unix.O_WRONLY|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, 0o644)
	if err != nil {
		return &errs.IOError{Err: fmt.Errorf("create temp file: %w", err)}
	}

	writeErr := writeFd(tempFd, content)
	if writeErr == nil {
		writeErr = unix.Fsync(tempFd)
	}
	unix.Close(tempFd)
	if writeErr != nil {
		unix.Unlinkat(parentFd, tempName, 0)
		return &errs.IOError{Err: writeErr}
	}

	if err := unix.Renameat(parentFd, tempName, parentFd, filename); err != nil {
		unix.Unlinkat(parentFd, tempName, 0)
		return &errs.IOError{Err: fmt.Errorf("rename temp file: %w", err)}
	}

	if err := unix.Fsync(parentFd); err != nil {
		return &errs.IOError{Err: fmt.Errorf("fsync parent dir: %w", err)}
	}
	return nil
}

func writeFd(fd int, content []byte) error {
	for len(content) > 0 {
		n, err := unix.Write(fd, content)
		if err != nil {
			return err
		}
		content = content[n:]
	}
	return nil
}

// openParentFd opens the parent directory of path relative to its
// sandbox root, returning an fd suitable for openat/renameat/unlinkat,
// and a closer to release it.
func openParentFd(path *safepath.SafePath) (int, func(), error) {
	parents := path.ParentComponents()
	if len(parents) == 0 {
		fd, err := unix.Openat(path.RootFd(), ".", unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
		if err != nil {
			return -1, func() {}, &errs.IOError{Err: err}
		}
		return fd, func() { unix.Close(fd) }, nil
	}

	dirFd := path.RootFd()
	opened := make([]int, 0, len(parents))
	for _, c := range parents {
		fd, err := unix.Openat(dirFd, c, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
		if err != nil {
			for _, o := range opened {
				unix.Close(o)
			}
			return -1, func() {}, &errs.IOError{Err: fmt.Errorf("openat %s: %w", c, err)}
		}
		opened = append(opened, fd)
		dirFd = fd
	}

	closer := func() {
		for i := len(opened) - 1; i >= 0; i-- {
			unix.Close(opened[i])
		}
	}
	return dirFd, closer, nil
}
