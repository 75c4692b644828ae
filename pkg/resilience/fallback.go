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

	"github.com/kaidrach/agentrun/pkg/errs"
)

// FallbackTrigger names a condition that should redirect a call to a
// fallback model rather than keep retrying the primary one.
type FallbackTrigger int

const (
	TriggerOverloaded FallbackTrigger = iota
	TriggerRateLimited
	TriggerHTTPStatus
	TriggerTimeout
)

// FallbackConfig names a substitute model and the conditions under which
// a caller should retry the call against it instead of the original.
type FallbackConfig struct {
	FallbackModel string
	Triggers      map[FallbackTrigger]struct{}
	HTTPStatus    int // set only when Triggers contains TriggerHTTPStatus
	MaxRetries    uint
}

// DefaultFallbackConfig falls back to fallbackModel on an overloaded or
// rate-limited primary, matching the upstream client's defaults.
func DefaultFallbackConfig(fallbackModel string) FallbackConfig {
	return FallbackConfig{
		FallbackModel: fallbackModel,
		Triggers: map[FallbackTrigger]struct{}{
			TriggerOverloaded:  {},
			TriggerRateLimited: {},
		},
		MaxRetries: 1,
	}
}

// WithTrigger enables an additional trigger, returning the config for
// chaining.
func (c FallbackConfig) WithTrigger(t FallbackTrigger) FallbackConfig {
	triggers := make(map[FallbackTrigger]struct{}, len(c.Triggers)+1)
	for existing := range c.Triggers {
		triggers[existing] = struct{}{}
	}
	triggers[t] = struct{}{}
	c.Triggers = triggers
	return c
}

// ShouldFallback reports whether err matches one of the configured
// triggers and a fallback model is set.
func (c FallbackConfig) ShouldFallback(err error) bool {
	if c.FallbackModel == "" || err == nil {
		return false
	}

	var rateLimit *errs.RateLimitError
	if errors.As(err, &rateLimit) {
		_, ok := c.Triggers[TriggerRateLimited]
		return ok
	}

	var timeout *errs.TimeoutError
	if errors.As(err, &timeout) {
		_, ok := c.Triggers[TriggerTimeout]
		return ok
	}

	var api *errs.APIError
	if errors.As(err, &api) {
		if api.Status == 529 {
			_, ok := c.Triggers[TriggerOverloaded]
			return ok
		}
		if _, ok := c.Triggers[TriggerHTTPStatus]; ok {
			return api.Status == c.HTTPStatus
		}
	}

	return false
}
