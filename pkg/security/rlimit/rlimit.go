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

// Package rlimit applies setrlimit(2)-style resource caps to the
// current process before it execs a sandboxed tool, bounding CPU
// time, file size, open file descriptors, process count, and memory
// so a runaway tool invocation cannot exhaust the host.
package rlimit

const (
	kb = 1024
	mb = 1024 * kb
	gb = 1024 * mb
)

// Limits describes the resource ceiling to apply. A nil field leaves
// that resource unbounded.
type Limits struct {
	CPUTimeSeconds *uint64
	FileSizeBytes  *uint64
	OpenFiles      *uint64
	Processes      *uint64
	VirtualMemory  *uint64
	DataSizeBytes  *uint64
	StackSizeBytes *uint64
}

func ptr(v uint64) *uint64 { return &v }

// None returns a Limits with every field unbounded.
func None() Limits { return Limits{} }

// Default returns the runtime's standard ceiling: 5 minutes of CPU,
// 100MB files, 256 open descriptors, 32 processes, 2GB address space,
// 1GB data segment, 8MB stack.
func Default() Limits {
	return Limits{
		CPUTimeSeconds: ptr(300),
		FileSizeBytes:  ptr(100 * mb),
		OpenFiles:      ptr(256),
		Processes:      ptr(32),
		VirtualMemory:  ptr(2 * gb),
		DataSizeBytes:  ptr(gb),
		StackSizeBytes: ptr(8 * mb),
	}
}

// Strict returns a tighter ceiling for untrusted, high-risk tool
// invocations: 1 minute of CPU, 10MB files, 64 descriptors, 10
// processes, 512MB address space, 256MB data segment, 1MB stack.
func Strict() Limits {
	return Limits{
		CPUTimeSeconds: ptr(60),
		FileSizeBytes:  ptr(10 * mb),
		OpenFiles:      ptr(64),
		Processes:      ptr(10),
		VirtualMemory:  ptr(512 * mb),
		DataSizeBytes:  ptr(256 * mb),
		StackSizeBytes: ptr(mb),
	}
}

// WithCPUTime returns a copy of l with its CPU time cap replaced.
func (l Limits) WithCPUTime(seconds uint64) Limits { l.CPUTimeSeconds = ptr(seconds); return l }

// WithFileSize returns a copy of l with its file size cap replaced.
func (l Limits) WithFileSize(bytes uint64) Limits { l.FileSizeBytes = ptr(bytes); return l }

// WithOpenFiles returns a copy of l with its open-descriptor cap replaced.
func (l Limits) WithOpenFiles(count uint64) Limits { l.OpenFiles = ptr(count); return l }

// WithProcesses returns a copy of l with its process-count cap replaced.
func (l Limits) WithProcesses(count uint64) Limits { l.Processes = ptr(count); return l }

// WithVirtualMemory returns a copy of l with its address-space cap replaced.
func (l Limits) WithVirtualMemory(bytes uint64) Limits { l.VirtualMemory = ptr(bytes); return l }
