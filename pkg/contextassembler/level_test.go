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

func TestLeveledMemoryProvider_Aggregates(t *testing.T) {
	p := contextassembler.NewLeveledMemoryProvider()
	p.AddContent("# Enterprise Rules")
	p.AddContent("# User Preferences")
	p.AddContent("# Project Guidelines")

	content, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, content.ClaudeMD, 3)
}

func TestLeveledMemoryProvider_WithLocal(t *testing.T) {
	p := contextassembler.NewLeveledMemoryProvider()
	p.AddContent("Main content")
	p.AddLocalContent("Local content")

	content, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, content.ClaudeMD, 1)
	require.Len(t, content.LocalMD, 1)

	combined := content.CombinedClaudeMD()
	require.Contains(t, combined, "Main content")
	require.Contains(t, combined, "Local content")
}
