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

	"github.com/kaidrach/agentrun/pkg/resilience"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	ctx := context.Background()
	b := resilience.NewCircuitBreaker(resilience.CircuitConfig{
		FailureThreshold: 3,
		RecoveryTimeout:  50 * time.Millisecond,
		SuccessThreshold: 2,
	})

	require.Equal(t, resilience.CircuitClosed, b.State())
	require.True(t, b.AllowRequest())

	b.RecordFailure(ctx)
	b.RecordFailure(ctx)
	require.Equal(t, resilience.CircuitClosed, b.State())

	b.RecordFailure(ctx)
	require.Equal(t, resilience.CircuitOpen, b.State())
	require.False(t, b.AllowRequest())
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	ctx := context.Background()
	b := resilience.NewCircuitBreaker(resilience.CircuitConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 2,
	})

	b.RecordFailure(ctx)
	require.Equal(t, resilience.CircuitOpen, b.State())

	time.Sleep(20 * time.Millisecond)
	require.True(t, b.AllowRequest())
	require.Equal(t, resilience.CircuitHalfOpen, b.State())

	b.RecordSuccess(ctx)
	require.Equal(t, resilience.CircuitHalfOpen, b.State())
	b.RecordSuccess(ctx)
	require.Equal(t, resilience.CircuitClosed, b.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	b := resilience.NewCircuitBreaker(resilience.CircuitConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 2,
	})

	b.RecordFailure(ctx)
	time.Sleep(20 * time.Millisecond)
	require.True(t, b.AllowRequest())
	require.Equal(t, resilience.CircuitHalfOpen, b.State())

	b.RecordFailure(ctx)
	require.Equal(t, resilience.CircuitOpen, b.State())
}

func TestCircuitBreaker_HalfOpenRationsProbes(t *testing.T) {
	ctx := context.Background()
	b := resilience.NewCircuitBreaker(resilience.CircuitConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 2,
	})

	b.RecordFailure(ctx)
	time.Sleep(20 * time.Millisecond)

	require.True(t, b.AllowRequest())
	require.True(t, b.AllowRequest())
	require.False(t, b.AllowRequest())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	ctx := context.Background()
	b := resilience.NewCircuitBreaker(resilience.CircuitConfig{FailureThreshold: 1, RecoveryTimeout: time.Hour, SuccessThreshold: 1})
	b.RecordFailure(ctx)
	require.Equal(t, resilience.CircuitOpen, b.State())

	b.Reset(ctx)
	require.Equal(t, resilience.CircuitClosed, b.State())
	require.EqualValues(t, 0, b.FailureCount())
}
