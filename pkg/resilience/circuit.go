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

// Package resilience wraps outbound calls to the model provider with a
// retry policy, an optional circuit breaker, and an automatic model
// fallback trigger.
package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kaidrach/agentrun/internal/rtlog"
)

// CircuitState is the breaker's three-state machine.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitConfig tunes when the breaker trips and how it recovers.
type CircuitConfig struct {
	FailureThreshold uint32
	RecoveryTimeout  time.Duration
	SuccessThreshold uint32
}

// DefaultCircuitConfig matches the upstream client's defaults.
func DefaultCircuitConfig() CircuitConfig {
	return CircuitConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
	}
}

// CircuitBreaker gates requests: closed lets everything through, open
// rejects everything until RecoveryTimeout elapses, half-open lets a
// limited number of probe requests through to decide whether to fully
// close or reopen. Safe for concurrent use.
type CircuitBreaker struct {
	config CircuitConfig

	mu    sync.RWMutex
	state CircuitState

	failureCount      atomic.Uint32
	successCount      atomic.Uint32
	halfOpenRequests  atomic.Uint32
	lastFailureUnixMS atomic.Int64
}

// NewCircuitBreaker returns a breaker starting in the closed state.
func NewCircuitBreaker(config CircuitConfig) *CircuitBreaker {
	return &CircuitBreaker{config: config, state: CircuitClosed}
}

// State returns the breaker's current state.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// AllowRequest reports whether a new request may proceed, transitioning
// open -> half-open once the recovery timeout has elapsed and rationing
// half-open probes to SuccessThreshold concurrent attempts.
func (b *CircuitBreaker) AllowRequest() bool {
	b.mu.RLock()
	state := b.state
	b.mu.RUnlock()

	switch state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		elapsed := time.Since(time.UnixMilli(b.lastFailureUnixMS.Load()))
		if elapsed >= b.config.RecoveryTimeout {
			b.transitionToHalfOpen(context.Background())
			// The request that opens the half-open window is itself a
			// probe, so it goes through the same rationing.
			return b.AllowRequest()
		}
		return false
	case CircuitHalfOpen:
		for {
			current := b.halfOpenRequests.Load()
			if current >= b.config.SuccessThreshold {
				return false
			}
			if b.halfOpenRequests.CompareAndSwap(current, current+1) {
				return true
			}
		}
	default:
		return false
	}
}

// RecordSuccess registers a successful call, resetting the failure count
// when closed, or counting towards re-closing when half-open.
func (b *CircuitBreaker) RecordSuccess(ctx context.Context) {
	b.mu.RLock()
	state := b.state
	b.mu.RUnlock()

	switch state {
	case CircuitClosed:
		b.failureCount.Store(0)
	case CircuitHalfOpen:
		successes := b.successCount.Add(1)
		if successes >= b.config.SuccessThreshold {
			b.transitionToClosed(ctx)
		}
	case CircuitOpen:
	}
}

// RecordFailure registers a failed call, tripping the breaker open once
// FailureThreshold is reached (or immediately, if half-open).
func (b *CircuitBreaker) RecordFailure(ctx context.Context) {
	b.mu.RLock()
	state := b.state
	b.mu.RUnlock()

	switch state {
	case CircuitClosed:
		failures := b.failureCount.Add(1)
		if failures >= b.config.FailureThreshold {
			b.transitionToOpen(ctx)
		}
	case CircuitHalfOpen:
		b.transitionToOpen(ctx)
	case CircuitOpen:
	}
}

// Reset forces the breaker back to closed, clearing all counters.
func (b *CircuitBreaker) Reset(ctx context.Context) {
	b.transitionToClosed(ctx)
}

// FailureCount returns the current consecutive-failure count.
func (b *CircuitBreaker) FailureCount() uint32 {
	return b.failureCount.Load()
}

func (b *CircuitBreaker) transitionToOpen(ctx context.Context) {
	b.mu.Lock()
	b.state = CircuitOpen
	b.mu.Unlock()

	b.lastFailureUnixMS.Store(time.Now().UnixMilli())
	b.successCount.Store(0)
	b.halfOpenRequests.Store(0)
	rtlog.Get(ctx).Warn("circuit breaker opened")
}

func (b *CircuitBreaker) transitionToHalfOpen(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != CircuitOpen {
		return
	}
	b.state = CircuitHalfOpen
	b.halfOpenRequests.Store(0)
	b.successCount.Store(0)
	rtlog.Get(ctx).Info("circuit breaker half-open")
}

func (b *CircuitBreaker) transitionToClosed(ctx context.Context) {
	b.mu.Lock()
	b.state = CircuitClosed
	b.mu.Unlock()

	b.failureCount.Store(0)
	b.successCount.Store(0)
	b.halfOpenRequests.Store(0)
	rtlog.Get(ctx).Info("circuit breaker closed")
}
