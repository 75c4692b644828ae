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
	"encoding/json"
	"strings"
	"time"

	"github.com/kaidrach/agentrun/pkg/auth"
	"github.com/kaidrach/agentrun/pkg/contextassembler"
	"github.com/kaidrach/agentrun/pkg/errs"
	"github.com/kaidrach/agentrun/pkg/llms"
	"github.com/kaidrach/agentrun/pkg/messageclient"
	"github.com/kaidrach/agentrun/pkg/tokens"
	"github.com/kaidrach/agentrun/pkg/tool"
	"github.com/kaidrach/agentrun/pkg/toolsearch"
)

// Loop runs a Config's turn/iteration state machine over one Session.
// Tool dispatch is a single call into registry: built-ins, MCP
// adapters (mcp.RegisterTools), and the tool_search meta-tool
// (toolsearch.NewSearchTool) all register into the same tool.Registry,
// so the loop never special-cases a qualified MCP name or "tool_search"
// itself — only the declared-tools partition (immediate vs. deferred)
// consults the tool-search manager, to decide what the model sees.
type Loop struct {
	config    Config
	client    *messageclient.Client
	registry  *tool.Registry
	estimator *tokens.Estimator

	assembler  *contextassembler.Assembler
	staticText string
	toolSearch *toolsearch.Manager
}

// NewLoop builds a Loop dispatching through registry and estimating
// preflight cost with estimator.
func NewLoop(config Config, client *messageclient.Client, registry *tool.Registry, estimator *tokens.Estimator) *Loop {
	return &Loop{config: config, client: client, registry: registry, estimator: estimator}
}

// WithAssembler sets the system-prompt assembler; nil (the default)
// sends no system prompt beyond whatever the auth strategy injects.
// Takes precedence over WithSystemText if both are set.
func (l *Loop) WithAssembler(a *contextassembler.Assembler) *Loop {
	l.assembler = a
	return l
}

// WithSystemText sets a fixed system prompt, bypassing the assembler.
// This is how a subagent's own on-demand-loaded prompt reaches its
// nested Loop, which has no CLAUDE.md/skill/subagent context of its
// own to assemble.
func (l *Loop) WithSystemText(text string) *Loop {
	l.staticText = text
	return l
}

// WithToolSearch enables declared-tool deferral through m.
func (l *Loop) WithToolSearch(m *toolsearch.Manager) *Loop {
	l.toolSearch = m
	return l
}

// Execute runs prompt to completion against session, returning only
// the final result.
func (l *Loop) Execute(ctx context.Context, session *Session, prompt string) (CompleteResult, error) {
	return l.run(ctx, session, prompt, false, nil)
}

// ExecuteStream runs prompt to completion, forwarding Text, ToolStart,
// ToolEnd, and a final Complete to sink. sink returning false stops
// the run early and cancels the in-flight request cooperatively.
func (l *Loop) ExecuteStream(ctx context.Context, session *Session, prompt string, sink func(Event) bool) (CompleteResult, error) {
	return l.run(ctx, session, prompt, true, sink)
}

func (l *Loop) run(ctx context.Context, session *Session, prompt string, streaming bool, sink func(Event) bool) (result CompleteResult, err error) {
	emit := func(evt Event) bool {
		if sink == nil {
			return true
		}
		return sink(evt)
	}

	turnStart := time.Now()
	ctx, turnSpan := startTurnSpan(ctx, l.config.Model, prompt)
	defer func() {
		totalTokens := int(result.Usage.InputTokens + result.Usage.OutputTokens)
		endTurnSpan(turnSpan, totalTokens, err)
		recordTurnMetrics(ctx, turnStart, totalTokens, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	if !emit(Event{Kind: EventStart}) {
		return CompleteResult{}, nil
	}

	session.Append(llms.Message{Role: llms.RoleUser, Content: []llms.ContentBlock{llms.TextBlock(prompt)}})

	system, err := l.systemPrompt(ctx)
	if err != nil {
		emit(Event{Kind: EventError, Err: err})
		return CompleteResult{}, err
	}

	var (
		allCalls   []ToolCall
		lastUsage  tokens.Usage
		lastStop   messageclient.StopReason
		compaction []llms.ContextManagementEdit
	)

	for iteration := 1; ; iteration++ {
		if iteration > l.config.MaxIterations {
			err := &errs.ExecutionFailedError{Message: "agent loop exceeded max iterations"}
			emit(Event{Kind: EventError, Err: err})
			return l.complete("", allCalls, iteration-1, lastUsage, lastStop), err
		}
		if ctx.Err() != nil {
			err := &errs.TimeoutError{Duration: l.config.Timeout}
			emit(Event{Kind: EventError, Err: err})
			return l.complete("", allCalls, iteration-1, lastUsage, lastStop), err
		}

		req := llms.CreateMessageRequest{
			Model:             l.config.Model,
			Messages:          session.Messages,
			MaxTokens:         l.config.MaxTokens,
			System:            system,
			Tools:             l.requestTools(),
			ContextManagement: compaction,
		}

		estimated := l.estimator.EstimateRequest(req)
		preflight := session.Tracker.Check(estimated)
		if !preflight.ShouldProceed() {
			err := &errs.ContextExceededError{Limit: preflight.Limit, Actual: preflight.EstimatedTokens}
			emit(Event{Kind: EventError, Err: err})
			return l.complete("", allCalls, iteration-1, lastUsage, lastStop), err
		}

		resp, err := l.sendWithFallback(ctx, req, streaming, emit)
		if err != nil {
			emit(Event{Kind: EventError, Err: err})
			return l.complete("", allCalls, iteration-1, lastUsage, lastStop), err
		}
		session.Tracker.Record(resp.Usage)
		lastUsage = resp.Usage
		lastStop = resp.StopReason

		if !streaming && resp.Text != "" {
			if !emit(Event{Kind: EventText, Text: resp.Text}) {
				return l.complete("", allCalls, iteration, lastUsage, lastStop), nil
			}
		}

		if len(resp.ToolUses) == 0 {
			session.Append(llms.Message{Role: llms.RoleAssistant, Content: []llms.ContentBlock{llms.TextBlock(resp.Text)}})
			result := l.complete(resp.Text, allCalls, iteration, lastUsage, lastStop)
			emit(Event{Kind: EventComplete, Complete: result})
			return result, nil
		}

		assistantBlocks := make([]llms.ContentBlock, 0, len(resp.ToolUses)+1)
		if resp.Text != "" {
			assistantBlocks = append(assistantBlocks, llms.TextBlock(resp.Text))
		}
		for _, use := range resp.ToolUses {
			assistantBlocks = append(assistantBlocks, llms.ToolUseBlock(use.ID, use.Name, use.Input))
		}
		session.Append(llms.Message{Role: llms.RoleAssistant, Content: assistantBlocks})

		resultBlocks := make([]llms.ContentBlock, 0, len(resp.ToolUses))
		for _, use := range resp.ToolUses {
			call, block := l.dispatch(ctx, use, emit)
			allCalls = append(allCalls, call)
			resultBlocks = append(resultBlocks, block)
		}
		session.Append(llms.Message{Role: llms.RoleUser, Content: resultBlocks})

		compaction = l.compactionEdits(session)
	}
}

// declaredTools returns every registry-allowed definition. When the
// tool-search manager is deferring, each deferred tool is declared by
// reference only (defer_loading, no schema); a later tool_search hit
// unlocks it, after which PrepareTools reports it immediate and its
// full schema ships on the next request.
func (l *Loop) declaredTools() []llms.ToolDefinition {
	defs := l.registry.Definitions(l.config.ToolAccess)
	if l.toolSearch == nil || !l.toolSearch.ShouldUseSearch() {
		return defs
	}

	prepared := l.toolSearch.PrepareTools()
	deferred := make(map[string]struct{}, len(prepared.Deferred))
	for _, t := range prepared.Deferred {
		deferred[t.Name] = struct{}{}
	}

	declared := make([]llms.ToolDefinition, 0, len(defs))
	for _, d := range defs {
		if _, ok := deferred[d.Name]; ok {
			declared = append(declared, llms.ToolDefinition{
				Name:         d.Name,
				Description:  d.Description,
				DeferLoading: true,
			})
			continue
		}
		declared = append(declared, d)
	}
	return declared
}

// requestTools is declaredTools plus any configured server-side tool
// declarations.
func (l *Loop) requestTools() []llms.ToolDefinition {
	declared := l.declaredTools()
	if len(l.config.ServerTools) == 0 {
		return declared
	}
	return append(declared, l.config.ServerTools...)
}

// dispatch enforces ToolAccess, executes one tool_use block under a
// per-tool timeout, and builds its matching tool_result block. A tool
// error does not halt the loop: it is reported back to the model as
// an is_error tool_result so the model can adapt.
func (l *Loop) dispatch(ctx context.Context, use messageclient.ToolUse, emit func(Event) bool) (ToolCall, llms.ContentBlock) {
	emit(Event{Kind: EventToolStart, ToolID: use.ID, ToolName: use.Name})

	toolCtx, cancel := context.WithTimeout(ctx, l.toolTimeout())
	defer cancel()

	ectx := tool.ExecContext{Context: toolCtx, CallID: use.ID}
	result, err := l.registry.Execute(ectx, use.Name, json.RawMessage(use.Input), l.config.ToolAccess)

	var (
		output  string
		isError bool
	)
	if err != nil {
		output, isError = err.Error(), true
	} else {
		output, isError = result.Output, result.IsError
	}

	emit(Event{Kind: EventToolEnd, ToolID: use.ID, ToolOutput: output, ToolIsError: isError})

	call := ToolCall{ID: use.ID, Name: use.Name, Input: []byte(use.Input), Output: output, IsError: isError}
	block := llms.ToolResultBlock(use.ID, output, isError)
	return call, block
}

func (l *Loop) toolTimeout() time.Duration {
	if l.config.ToolTimeout > 0 {
		return l.config.ToolTimeout
	}
	return 120 * time.Second
}

// sendWithFallback sends req, retrying exactly once against the
// configured fallback model when the failure matches Config.Fallback.
func (l *Loop) sendWithFallback(ctx context.Context, req llms.CreateMessageRequest, streaming bool, emit func(Event) bool) (messageclient.Response, error) {
	resp, err := l.send(ctx, req, streaming, emit)
	if err == nil || !l.config.Fallback.ShouldFallback(err) {
		return resp, err
	}

	fallbackReq := req
	fallbackReq.Model = l.config.Fallback.FallbackModel
	return l.send(ctx, fallbackReq, streaming, emit)
}

func (l *Loop) send(ctx context.Context, req llms.CreateMessageRequest, streaming bool, emit func(Event) bool) (messageclient.Response, error) {
	if !streaming {
		req.Stream = false
		return l.client.Send(ctx, req)
	}
	return l.streamCollect(ctx, req, emit)
}

// streamCollect mirrors messageclient's internal collector, forwarding
// each text delta to emit as it arrives instead of only surfacing the
// fully assembled Response at the end. Client.Stream does not retry,
// matching the cooperative-cancellation contract execute_stream needs:
// a partially emitted stream cannot be safely replayed.
func (l *Loop) streamCollect(ctx context.Context, req llms.CreateMessageRequest, emit func(Event) bool) (messageclient.Response, error) {
	var (
		resp       messageclient.Response
		textBuf    strings.Builder
		pending    *messageclient.ToolUse
		pendingBuf []byte
	)

	err := l.client.Stream(ctx, req, func(evt messageclient.Event) bool {
		switch evt.Kind {
		case messageclient.EventText:
			textBuf.WriteString(evt.Text)
			return emit(Event{Kind: EventText, Text: evt.Text})
		case messageclient.EventToolUseStart:
			pending = &messageclient.ToolUse{ID: evt.ToolUseID, Name: evt.ToolUseName}
			pendingBuf = pendingBuf[:0]
		case messageclient.EventToolUseInput:
			pendingBuf = append(pendingBuf, evt.InputDelta...)
		case messageclient.EventToolUseEnd:
			if pending != nil {
				input := pendingBuf
				if len(input) == 0 {
					input = []byte("{}")
				}
				pending.Input = append([]byte(nil), input...)
				resp.ToolUses = append(resp.ToolUses, *pending)
				pending = nil
			}
		case messageclient.EventMessageComplete:
			resp.StopReason = evt.StopReason
			resp.Usage = evt.Usage
		case messageclient.EventError:
			return false
		}
		return true
	})
	resp.Text = textBuf.String()
	return resp, err
}

func (l *Loop) systemPrompt(ctx context.Context) ([]auth.SystemPromptBlock, error) {
	prompt := l.staticText
	if l.assembler != nil {
		built, err := l.assembler.Build(ctx)
		if err != nil {
			return nil, err
		}
		prompt = built
	}
	if prompt == "" {
		return nil, nil
	}
	return []auth.SystemPromptBlock{{Text: prompt}}, nil
}

// compactionEdits returns the context-management edits to send on the
// next request, inserting a clear-tool-uses edit (and resetting the
// tracker's window to an estimate of the post-compaction size) once
// utilization crosses Config.CompactThreshold. This is advisory only:
// the provider decides whether and how to actually trim.
func (l *Loop) compactionEdits(session *Session) []llms.ContextManagementEdit {
	if !l.config.AutoCompact {
		return nil
	}
	window := session.Tracker.ContextWindow()
	if window.Utilization() < l.config.CompactThreshold {
		return nil
	}

	edit := llms.ContextManagementEdit{
		Kind:     llms.EditClearToolUses,
		KeepLast: l.config.CompactKeepLast,
	}

	estimated := estimatePostCompaction(window.Usage(), session.Messages, l.config.CompactKeepLast)
	session.Tracker.Reset(estimated)

	return []llms.ContextManagementEdit{edit}
}

// estimatePostCompaction guesses the context size remaining once the
// provider clears every tool_use/tool_result pair but the most recent
// keepLast, proportionally to how many tool-bearing messages survive.
// It is deliberately crude: the accountant's Reset is advisory and
// gets corrected by the next real Usage the provider reports.
func estimatePostCompaction(currentUsage uint64, messages []llms.Message, keepLast int) uint64 {
	var toolBearing, total int
	for _, msg := range messages {
		hasTool := false
		for _, block := range msg.Content {
			if block.Kind == llms.BlockToolUse || block.Kind == llms.BlockToolResult {
				hasTool = true
				break
			}
		}
		if hasTool {
			toolBearing++
		}
		total++
	}
	if toolBearing <= keepLast || total == 0 {
		return currentUsage
	}

	cleared := toolBearing - keepLast
	fraction := float64(cleared) / float64(total)
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 0.9 {
		fraction = 0.9
	}
	return uint64(float64(currentUsage) * (1 - fraction))
}

func (l *Loop) complete(text string, calls []ToolCall, iterations int, usage tokens.Usage, stop messageclient.StopReason) CompleteResult {
	return CompleteResult{Text: text, ToolCalls: calls, Iterations: iterations, Usage: usage, StopReason: stop}
}
