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
	"io"
	"net/http"
	"sort"

	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/httpclient"
)

// MemoryProvider loads memory content from some source: programmatic,
// file-backed, remote, or a chain of other providers.
type MemoryProvider interface {
	Name() string
	Priority() int
	Load(ctx context.Context) (MemoryContent, error)
}

// InMemoryProvider is a fluent, programmatically-populated provider,
// useful for embedding fixed instructions without touching disk.
type InMemoryProvider struct {
	content  MemoryContent
	priority int
}

func NewInMemoryProvider() *InMemoryProvider { return &InMemoryProvider{} }

func (p *InMemoryProvider) WithSystemPrompt(prompt string) *InMemoryProvider {
	p.content.SystemPrompt = prompt
	return p
}

func (p *InMemoryProvider) WithClaudeMD(content string) *InMemoryProvider {
	p.content.ClaudeMD = append(p.content.ClaudeMD, content)
	return p
}

func (p *InMemoryProvider) WithLocalMD(content string) *InMemoryProvider {
	p.content.LocalMD = append(p.content.LocalMD, content)
	return p
}

func (p *InMemoryProvider) WithRule(name, content string) *InMemoryProvider {
	p.content.Rules = append(p.content.Rules, RuleFile{Name: name, Content: content})
	return p
}

func (p *InMemoryProvider) WithPriority(priority int) *InMemoryProvider {
	p.priority = priority
	return p
}

func (p *InMemoryProvider) Name() string  { return "in-memory" }
func (p *InMemoryProvider) Priority() int { return p.priority }
func (p *InMemoryProvider) Load(context.Context) (MemoryContent, error) {
	content := MemoryContent{}
	if p.content.SystemPrompt != "" {
		content.ClaudeMD = append(content.ClaudeMD, p.content.SystemPrompt)
	}
	content.ClaudeMD = append(content.ClaudeMD, p.content.ClaudeMD...)
	content.LocalMD = append(content.LocalMD, p.content.LocalMD...)
	content.Rules = append(content.Rules, p.content.Rules...)
	return content, nil
}

// HTTPMemoryProvider fetches memory content from a remote URL, using
// the same replayable-body transport the message client sends model
// requests over.
type HTTPMemoryProvider struct {
	url      string
	headers  map[string]string
	priority int
	client   *httpclient.Client
}

func NewHTTPMemoryProvider(url string) *HTTPMemoryProvider {
	return &HTTPMemoryProvider{url: url, headers: map[string]string{}, client: httpclient.New()}
}

func (p *HTTPMemoryProvider) WithHeader(key, value string) *HTTPMemoryProvider {
	p.headers[key] = value
	return p
}

func (p *HTTPMemoryProvider) WithPriority(priority int) *HTTPMemoryProvider {
	p.priority = priority
	return p
}

func (p *HTTPMemoryProvider) Name() string  { return "http" }
func (p *HTTPMemoryProvider) Priority() int { return p.priority }

func (p *HTTPMemoryProvider) Load(ctx context.Context) (MemoryContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return MemoryContent{}, &errs.NetworkError{Transport: "http", Err: err}
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return MemoryContent{}, &errs.NetworkError{Transport: "http", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return MemoryContent{}, &errs.IOError{Err: err}
	}

	return MemoryContent{ClaudeMD: []string{string(body)}}, nil
}

// FileMemoryProvider wraps a MemoryLoader for a single directory.
type FileMemoryProvider struct {
	path     string
	priority int
}

func NewFileMemoryProvider(path string) *FileMemoryProvider {
	return &FileMemoryProvider{path: path}
}

func (p *FileMemoryProvider) WithPriority(priority int) *FileMemoryProvider {
	p.priority = priority
	return p
}

func (p *FileMemoryProvider) Name() string  { return "file" }
func (p *FileMemoryProvider) Priority() int { return p.priority }

func (p *FileMemoryProvider) Load(ctx context.Context) (MemoryContent, error) {
	loader := NewMemoryLoader()
	return loader.LoadAll(ctx, p.path)
}

// ChainMemoryProvider combines multiple providers, loading them in
// ascending-priority order so the highest-priority provider's content
// lands last in the combined text.
type ChainMemoryProvider struct {
	providers []MemoryProvider
}

func NewChainMemoryProvider() *ChainMemoryProvider { return &ChainMemoryProvider{} }

func (p *ChainMemoryProvider) With(provider MemoryProvider) *ChainMemoryProvider {
	p.providers = append(p.providers, provider)
	return p
}

func (p *ChainMemoryProvider) Name() string { return "chain" }

func (p *ChainMemoryProvider) Priority() int {
	max := 0
	for _, child := range p.providers {
		if child.Priority() > max {
			max = child.Priority()
		}
	}
	return max
}

func (p *ChainMemoryProvider) Load(ctx context.Context) (MemoryContent, error) {
	sorted := make([]MemoryProvider, len(p.providers))
	copy(sorted, p.providers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() < sorted[j].Priority() })

	combined := MemoryContent{}
	for _, child := range sorted {
		content, err := child.Load(ctx)
		if err != nil {
			return MemoryContent{}, err
		}
		combined.ClaudeMD = append(combined.ClaudeMD, content.ClaudeMD...)
		combined.LocalMD = append(combined.LocalMD, content.LocalMD...)
		combined.Rules = append(combined.Rules, content.Rules...)
	}
	return combined, nil
}
