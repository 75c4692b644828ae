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

package contextassembler

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
)

// LeveledMemoryProvider aggregates content added in a fixed override
// order: Enterprise, then User, then Project, then Local, each
// addition taking precedence over what came before it.
type LeveledMemoryProvider struct {
	contents []MemoryContent
}

func NewLeveledMemoryProvider() *LeveledMemoryProvider { return &LeveledMemoryProvider{} }

func (p *LeveledMemoryProvider) AddContent(content string) {
	p.contents = append(p.contents, MemoryContent{ClaudeMD: []string{content}})
}

func (p *LeveledMemoryProvider) AddLocalContent(content string) {
	p.contents = append(p.contents, MemoryContent{LocalMD: []string{content}})
}

func (p *LeveledMemoryProvider) AddMemoryContent(content MemoryContent) {
	p.contents = append(p.contents, content)
}

func (p *LeveledMemoryProvider) Name() string  { return "leveled" }
func (p *LeveledMemoryProvider) Priority() int { return 100 }

func (p *LeveledMemoryProvider) Load(context.Context) (MemoryContent, error) {
	combined := MemoryContent{}
	for _, content := range p.contents {
		combined.Merge(content)
	}
	return combined, nil
}

// EnterpriseBasePath returns the platform's fixed enterprise
// configuration directory, if it exists on disk.
func EnterpriseBasePath() (string, bool) {
	var path string
	switch runtime.GOOS {
	case "darwin":
		path = "/Library/Application Support/ClaudeCode"
	case "linux":
		path = "/etc/claude-code"
	default:
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// UserBasePath returns the current user's ".claude" directory.
func UserBasePath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	return filepath.Join(home, ".claude"), true
}
