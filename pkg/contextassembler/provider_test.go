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

package contextassembler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaidrach/agentrun/pkg/contextassembler"
)

func TestInMemoryProvider_Basic(t *testing.T) {
	p := contextassembler.NewInMemoryProvider().
		WithSystemPrompt("You are a helpful assistant.").
		WithClaudeMD("# Project Rules").
		WithRule("security", "No hardcoded secrets")

	content, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, content.ClaudeMD, 2)
	require.Len(t, content.Rules, 1)
}

func TestChainMemoryProvider_OrdersByPriority(t *testing.T) {
	low := contextassembler.NewInMemoryProvider().WithClaudeMD("Low priority").WithPriority(0)
	high := contextassembler.NewInMemoryProvider().WithClaudeMD("High priority").WithPriority(10)

	chain := contextassembler.NewChainMemoryProvider().With(low).With(high)

	content, err := chain.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Low priority", "High priority"}, content.ClaudeMD)
}

func TestChainMemoryProvider_Priority(t *testing.T) {
	chain := contextassembler.NewChainMemoryProvider().
		With(contextassembler.NewInMemoryProvider().WithPriority(5)).
		With(contextassembler.NewInMemoryProvider().WithPriority(20))

	require.Equal(t, 20, chain.Priority())
}
