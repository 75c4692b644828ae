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

package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/kaidrach/agentrun/internal/rtlog"
	"github.com/kaidrach/agentrun/pkg/errs"
)

// Config bundles a retry policy with an optional circuit breaker and an
// overall per-call timeout. A zero-value Circuit (FailureThreshold == 0)
// disables breaker gating entirely.
type Config struct {
	Retry   RetryConfig
	Circuit CircuitConfig
	Timeout time.Duration
}

// DefaultConfig retries transient errors three times with a 30s breaker
// recovery window and a 2 minute overall timeout.
func DefaultConfig() Config {
	return Config{Retry: DefaultRetryConfig(), Circuit: DefaultCircuitConfig(), Timeout: 2 * time.Minute}
}

// NoRetryConfig disables retries outright; a single attempt either
// succeeds or returns its error immediately.
func NoRetryConfig() Config {
	c := DefaultConfig()
	c.Retry.MaxRetries = 0
	return c
}

// AggressiveConfig retries harder and recovers from an open breaker
// faster, for latency-insensitive batch workloads.
func AggressiveConfig() Config {
	return Config{
		Retry: RetryConfig{
			MaxRetries:          5,
			InitialInterval:     500 * time.Millisecond,
			MaxInterval:         20 * time.Second,
			Multiplier:          2.0,
			RetryOnRateLimit:    true,
			RetryOnServerError:  true,
			RetryOnNetworkError: true,
		},
		Circuit: CircuitConfig{FailureThreshold: 8, RecoveryTimeout: 15 * time.Second, SuccessThreshold: 2},
		Timeout: 3 * time.Minute,
	}
}

// ConservativeConfig retries sparingly and trips the breaker quickly, for
// interactive paths where a fast failure beats a slow retry.
func ConservativeConfig() Config {
	return Config{
		Retry: RetryConfig{
			MaxRetries:          1,
			InitialInterval:     2 * time.Second,
			MaxInterval:         10 * time.Second,
			Multiplier:          2.0,
			RetryOnRateLimit:    true,
			RetryOnServerError:  false,
			RetryOnNetworkError: true,
		},
		Circuit: CircuitConfig{FailureThreshold: 3, RecoveryTimeout: 60 * time.Second, SuccessThreshold: 3},
		Timeout: 30 * time.Second,
	}
}

// Resilience wraps a provider call with circuit-breaker gating, a
// deadline, and backoff retry.
type Resilience struct {
	config  Config
	breaker *CircuitBreaker
}

// New builds a Resilience from config. A breaker is created unless
// FailureThreshold is zero, in which case breaker gating is skipped.
func New(config Config) *Resilience {
	r := &Resilience{config: config}
	if config.Circuit.FailureThreshold > 0 {
		r.breaker = NewCircuitBreaker(config.Circuit)
	}
	return r
}

// Breaker exposes the underlying circuit breaker, or nil if disabled.
func (r *Resilience) Breaker() *CircuitBreaker { return r.breaker }

// Execute runs operation under the configured timeout, retrying per the
// retry policy and recording outcomes against the circuit breaker. It
// returns errs.CircuitOpenError without invoking operation when the
// breaker is tripped.
func Execute[T any](ctx context.Context, r *Resilience, operation func(context.Context) (T, error)) (T, error) {
	var zero T

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	if r.breaker != nil && !r.breaker.AllowRequest() {
		return zero, &errs.CircuitOpenError{}
	}

	if r.config.Retry.MaxRetries == 0 {
		result, err := operation(ctx)
		r.record(ctx, err)
		return result, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(r.config.Retry.backOff()),
		backoff.WithMaxTries(r.config.Retry.MaxRetries + 1),
	}

	attempt := 0
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		res, opErr := operation(ctx)
		if opErr == nil {
			r.record(ctx, nil)
			return res, nil
		}

		if !r.config.Retry.shouldRetry(opErr) {
			r.record(ctx, opErr)
			return zero, backoff.Permanent(opErr)
		}

		rtlog.Get(ctx).Warn("retrying after transient error", "attempt", attempt, "error", opErr)
		if delay, ok := retryAfter(opErr); ok {
			return zero, backoff.RetryAfter(int(delay.Seconds()))
		}
		r.record(ctx, opErr)
		return zero, opErr
	}, opts...)

	return result, err
}

func (r *Resilience) record(ctx context.Context, err error) {
	if r.breaker == nil {
		return
	}
	if err == nil {
		r.breaker.RecordSuccess(ctx)
		return
	}
	r.breaker.RecordFailure(ctx)
}
