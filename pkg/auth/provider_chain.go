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

package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/kaidrach/agentrun/internal/rtlog"
	"github.com/kaidrach/agentrun/pkg/errs"
)

// ChainProvider tries each wrapped provider in order and returns the
// first credential that resolves successfully.
type ChainProvider struct {
	providers []CredentialProvider

	mu            sync.RWMutex
	lastSuccesful CredentialProvider
}

// NewChainProvider builds a chain over providers, tried in the order
// given; use With to append more.
func NewChainProvider(providers ...CredentialProvider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

// DefaultChain tries the environment variable, then the Claude Code CLI.
func DefaultChain() *ChainProvider {
	return NewChainProvider(NewEnvironmentProvider(), NewCLIProvider())
}

// With appends a provider and returns the chain for fluent composition.
func (c *ChainProvider) With(p CredentialProvider) *ChainProvider {
	c.providers = append(c.providers, p)
	return c
}

func (c *ChainProvider) Name() string { return "chain" }

func (c *ChainProvider) Resolve(ctx context.Context) (Credential, error) {
	var failures []string

	for _, p := range c.providers {
		cred, err := p.Resolve(ctx)
		if err != nil {
			rtlog.Get(ctx).Debug("auth provider failed", "provider", p.Name(), "error", err)
			failures = append(failures, p.Name()+": "+err.Error())
			continue
		}
		rtlog.Get(ctx).Debug("credential resolved", "provider", p.Name())
		c.mu.Lock()
		c.lastSuccesful = p
		c.mu.Unlock()
		return cred, nil
	}

	return Credential{}, &errs.AuthError{
		Provider: c.Name(),
		Message:  "no credentials found; tried: " + strings.Join(failures, ", "),
	}
}

func (c *ChainProvider) Refresh(ctx context.Context) (Credential, error) {
	c.mu.RLock()
	p := c.lastSuccesful
	c.mu.RUnlock()

	if p == nil {
		return Credential{}, &errs.AuthError{Provider: c.Name(), Message: "no provider has successfully resolved yet"}
	}
	if !p.SupportsRefresh() {
		return Credential{}, &errs.AuthError{Provider: c.Name(), Message: "last successful provider does not support refresh"}
	}
	return p.Refresh(ctx)
}

func (c *ChainProvider) SupportsRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSuccesful != nil && c.lastSuccesful.SupportsRefresh()
}
