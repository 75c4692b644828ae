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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/errs"
)

func TestRetryConfig_ShouldRetry(t *testing.T) {
	c := DefaultRetryConfig()

	require.True(t, c.shouldRetry(&errs.RateLimitError{}))
	require.True(t, c.shouldRetry(&errs.NetworkError{Transport: "tcp"}))
	require.True(t, c.shouldRetry(&errs.APIError{Status: 529}))
	require.True(t, c.shouldRetry(&errs.APIError{Status: 503}))
	require.False(t, c.shouldRetry(&errs.APIError{Status: 400}))
	require.True(t, c.shouldRetry(&errs.TimeoutError{Duration: time.Second}))
	require.False(t, c.shouldRetry(&errs.AuthError{Provider: "anthropic"}))
}

func TestRetryConfig_DisabledTriggersAreHonored(t *testing.T) {
	c := DefaultRetryConfig()
	c.RetryOnServerError = false

	require.False(t, c.shouldRetry(&errs.APIError{Status: 500}))
	require.True(t, c.shouldRetry(&errs.RateLimitError{}))
}

func TestRetryAfter_ExtractsProviderDelay(t *testing.T) {
	delay, ok := retryAfter(&errs.RateLimitError{RetryAfter: 5 * time.Second, HasRetry: true})
	require.True(t, ok)
	require.Equal(t, 5*time.Second, delay)

	_, ok = retryAfter(&errs.RateLimitError{HasRetry: false})
	require.False(t, ok)

	_, ok = retryAfter(&errs.APIError{Status: 500})
	require.False(t, ok)
}
