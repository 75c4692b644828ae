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

package resilience_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/resilience"
)

func TestExecute_SucceedsWithoutRetry(t *testing.T) {
	r := resilience.New(resilience.DefaultConfig())
	calls := 0

	result, err := resilience.Execute(context.Background(), r, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 1, calls)
}

func TestExecute_RetriesTransientThenSucceeds(t *testing.T) {
	cfg := resilience.DefaultConfig()
	cfg.Retry.InitialInterval = time.Millisecond
	cfg.Retry.MaxInterval = 5 * time.Millisecond
	r := resilience.New(cfg)

	calls := 0
	result, err := resilience.Execute(context.Background(), r, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &errs.APIError{Status: 503}
		}
		return 42, nil
	})

	require.NoError(t, err)
	require.Equal(t, 42, result)
	require.Equal(t, 3, calls)
}

func TestExecute_PermanentErrorStopsImmediately(t *testing.T) {
	r := resilience.New(resilience.DefaultConfig())
	calls := 0

	_, err := resilience.Execute(context.Background(), r, func(ctx context.Context) (int, error) {
		calls++
		return 0, &errs.APIError{Status: 400}
	})

	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestExecute_OpenCircuitShortCircuits(t *testing.T) {
	cfg := resilience.Config{
		Retry:   resilience.NoRetryConfig().Retry,
		Circuit: resilience.CircuitConfig{FailureThreshold: 1, RecoveryTimeout: time.Hour, SuccessThreshold: 1},
		Timeout: time.Second,
	}
	r := resilience.New(cfg)

	_, err := resilience.Execute(context.Background(), r, func(ctx context.Context) (int, error) {
		return 0, &errs.APIError{Status: 500}
	})
	require.Error(t, err)
	require.Equal(t, resilience.CircuitOpen, r.Breaker().State())

	calls := 0
	_, err = resilience.Execute(context.Background(), r, func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	})

	var circuitOpen *errs.CircuitOpenError
	require.ErrorAs(t, err, &circuitOpen)
	require.Equal(t, 0, calls)
}

func TestExecute_NoRetryConfigAttemptsOnce(t *testing.T) {
	r := resilience.New(resilience.NoRetryConfig())
	calls := 0

	_, err := resilience.Execute(context.Background(), r, func(ctx context.Context) (int, error) {
		calls++
		return 0, &errs.APIError{Status: 503}
	})

	require.Error(t, err)
	require.Equal(t, 1, calls)
}
