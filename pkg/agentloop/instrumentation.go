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

package agentloop

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kaidrach/agentrun/pkg/observability"
)

// startTurnSpan opens the SpanAgentTurn span wrapping one full
// Execute/ExecuteStream invocation.
func startTurnSpan(ctx context.Context, model, prompt string) (context.Context, trace.Span) {
	tracer := observability.GetTracer("agentrun.loop")
	return tracer.Start(ctx, observability.SpanAgentTurn, trace.WithAttributes(
		attribute.String(observability.AttrAgentModel, model),
		attribute.String("input_preview", truncate(prompt, 200)),
	))
}

// endTurnSpan records err (if any) on span, attaches the final token
// count, and closes it.
func endTurnSpan(span trace.Span, totalTokens int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int(observability.AttrAgentTokens, totalTokens))
	span.End()
}

// recordTurnMetrics records one RecordAgentTurn observation.
func recordTurnMetrics(ctx context.Context, start time.Time, totalTokens int, err error) {
	observability.GetGlobalMetrics().RecordAgentTurn(ctx, time.Since(start), totalTokens, err)
}

// truncate shortens s to maxLen runes, appending "..." when it had to cut.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
