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

package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/llms"
	"github.com/kaidrach/agentrun/pkg/observability"
)

// Registry is the name-indexed dispatch map every tool call routes
// through. Safe for concurrent use: registration happens at startup,
// lookups and execution happen from many concurrent turns.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds t under its own name, overwriting any existing entry
// with the same name (a later-registered MCP tool may legitimately
// shadow a built-in).
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get looks up a tool by exact name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns every registered tool name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns llms.ToolDefinition entries for every tool name
// allowed under access, in sorted-name order so requests are
// deterministic across calls.
func (r *Registry) Definitions(access Access) []llms.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]llms.ToolDefinition, 0, len(names))
	for _, name := range names {
		if !access.IsAllowed(name) {
			continue
		}
		t := r.tools[name]
		defs = append(defs, llms.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// Execute dispatches toolName through access control and, if allowed,
// runs the matching tool's handler. access is checked against toolName
// literally (qualified MCP names and scoped bash suffixes both resolve
// to their own literal registry key, so no splitting happens here —
// that belongs to the caller composing toolName). A nil ectx.Context
// is treated as context.Background().
func (r *Registry) Execute(ectx ExecContext, toolName string, input json.RawMessage, access Access) (Result, error) {
	start := time.Now()
	if ectx.Context == nil {
		ectx.Context = context.Background()
	}
	tracer := observability.GetTracer("agentrun.tool")
	ctx, span := tracer.Start(ectx.Context, observability.SpanToolExecution, trace.WithAttributes(
		attribute.String(observability.AttrToolName, toolName),
		attribute.String(observability.AttrToolCallID, ectx.CallID),
	))
	ectx.Context = ctx
	defer span.End()

	result, err := r.execute(ectx, toolName, input, access)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	observability.GetGlobalMetrics().RecordToolExecution(ctx, toolName, time.Since(start), err)

	return result, err
}

func (r *Registry) execute(ectx ExecContext, toolName string, input json.RawMessage, access Access) (Result, error) {
	if !access.IsAllowed(toolName) {
		return Result{}, &errs.PermissionDeniedError{Tool: toolName, Permission: "execute"}
	}

	t, ok := r.Get(toolName)
	if !ok {
		return Result{}, &errs.UnknownToolError{Name: toolName}
	}

	result, err := t.Execute(ectx, input)
	if err != nil {
		return Result{}, fmt.Errorf("tool %s: %w", toolName, err)
	}
	return result, nil
}
