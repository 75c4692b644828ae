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
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// RetryConfig selects which error classes are eligible for retry and the
// backoff curve applied between attempts.
type RetryConfig struct {
	MaxRetries          uint
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RetryOnRateLimit    bool
	RetryOnServerError  bool
	RetryOnNetworkError bool
}

// DefaultRetryConfig matches the upstream client's defaults: three
// retries, 1s-32s exponential backoff, every built-in trigger enabled.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:          3,
		InitialInterval:     time.Second,
		MaxInterval:         32 * time.Second,
		Multiplier:          2.0,
		RetryOnRateLimit:    true,
		RetryOnServerError:  true,
		RetryOnNetworkError: true,
	}
}

// backOff builds a fresh *backoff.ExponentialBackOff from the config; a
// fresh instance is required per call since ExponentialBackOff carries
// internal jitter/interval state across NextBackOff calls.
func (c RetryConfig) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialInterval
	b.MaxInterval = c.MaxInterval
	b.Multiplier = c.Multiplier
	return b
}

// shouldRetry classifies err against the enabled trigger set. Anything
// not recognized (auth errors, security violations, context-exceeded) is
// not retried: those require caller intervention, not a resend.
func (c RetryConfig) shouldRetry(err error) bool {
	var rateLimit *errs.RateLimitError
	if errors.As(err, &rateLimit) {
		return c.RetryOnRateLimit
	}

	var network *errs.NetworkError
	if errors.As(err, &network) {
		return c.RetryOnNetworkError
	}

	var api *errs.APIError
	if errors.As(err, &api) {
		// 529 is Anthropic's "overloaded" status; 500-599 are generic
		// server errors. Both are transient, unlike 4xx client errors.
		if api.Status == 529 || (api.Status >= 500 && api.Status <= 599) {
			return c.RetryOnServerError
		}
		return false
	}

	var timeout *errs.TimeoutError
	return errors.As(err, &timeout)
}

// retryAfter extracts a provider-supplied retry delay, when present.
func retryAfter(err error) (time.Duration, bool) {
	var rateLimit *errs.RateLimitError
	if errors.As(err, &rateLimit) && rateLimit.HasRetry {
		return rateLimit.RetryAfter, true
	}
	return 0, false
}
