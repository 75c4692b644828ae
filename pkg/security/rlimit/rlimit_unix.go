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

//go:build unix

package rlimit

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// Apply installs l on the current process via setrlimit(2). Call this
// immediately before exec'ing the sandboxed child, typically from an
// os/exec Cmd.SysProcAttr hook or a forked helper, since it affects
// the calling process's own limits.
func (l Limits) Apply() error {
	if err := applyRlimit(l.CPUTimeSeconds, unix.RLIMIT_CPU, "CPU"); err != nil {
		return err
	}
	if err := applyRlimit(l.FileSizeBytes, unix.RLIMIT_FSIZE, "FSIZE"); err != nil {
		return err
	}
	if err := applyRlimit(l.OpenFiles, unix.RLIMIT_NOFILE, "NOFILE"); err != nil {
		return err
	}
	if err := applyRlimit(l.Processes, unix.RLIMIT_NPROC, "NPROC"); err != nil {
		return err
	}
	if runtime.GOOS == "linux" {
		if err := applyRlimit(l.VirtualMemory, unix.RLIMIT_AS, "AS"); err != nil {
			return err
		}
	}
	if err := applyRlimit(l.DataSizeBytes, unix.RLIMIT_DATA, "DATA"); err != nil {
		return err
	}
	if err := applyRlimit(l.StackSizeBytes, unix.RLIMIT_STACK, "STACK"); err != nil {
		return err
	}
	return nil
}

func applyRlimit(value *uint64, resource int, name string) error {
	if value == nil {
		return nil
	}
	rlim := unix.Rlimit{Cur: *value, Max: *value}
	if err := unix.Setrlimit(resource, &rlim); err != nil {
		return &errs.ResourceLimitError{Message: fmt.Sprintf("%s: %v", name, err)}
	}
	return nil
}
