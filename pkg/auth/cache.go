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
	"sync"
	"time"
)

// DefaultCacheTTL is how long a resolved credential is trusted before
// CachedProvider re-resolves it from the wrapped provider.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	credential Credential
	fetchedAt  time.Time
}

// CachedProvider wraps a CredentialProvider and avoids repeated, possibly
// expensive resolution (a subprocess call, a keychain lookup) by
// remembering the result for a TTL, and always respecting an OAuth
// credential's own expiry regardless of TTL.
type CachedProvider struct {
	inner CredentialProvider
	ttl   time.Duration

	mu    sync.RWMutex
	entry *cacheEntry
}

// NewCachedProvider wraps provider with the DefaultCacheTTL.
func NewCachedProvider(provider CredentialProvider) *CachedProvider {
	return &CachedProvider{inner: provider, ttl: DefaultCacheTTL}
}

// WithTTL overrides the cache lifetime.
func (c *CachedProvider) WithTTL(ttl time.Duration) *CachedProvider {
	c.ttl = ttl
	return c
}

// Invalidate clears the cached entry, forcing the next Resolve to hit
// the wrapped provider.
func (c *CachedProvider) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

func (c *CachedProvider) Name() string { return c.inner.Name() }

func (c *CachedProvider) stale(entry *cacheEntry) bool {
	return entry == nil || time.Since(entry.fetchedAt) > c.ttl || entry.credential.IsExpired()
}

func (c *CachedProvider) Resolve(ctx context.Context) (Credential, error) {
	c.mu.RLock()
	entry := c.entry
	c.mu.RUnlock()

	if !c.stale(entry) {
		return entry.credential, nil
	}

	cred, err := c.inner.Resolve(ctx)
	if err != nil {
		return Credential{}, err
	}

	c.mu.Lock()
	c.entry = &cacheEntry{credential: cred, fetchedAt: time.Now()}
	c.mu.Unlock()

	return cred, nil
}

func (c *CachedProvider) Refresh(ctx context.Context) (Credential, error) {
	cred, err := c.inner.Refresh(ctx)
	if err != nil {
		return Credential{}, err
	}

	c.mu.Lock()
	c.entry = &cacheEntry{credential: cred, fetchedAt: time.Now()}
	c.mu.Unlock()

	return cred, nil
}

func (c *CachedProvider) SupportsRefresh() bool { return c.inner.SupportsRefresh() }
