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

package tokens

import (
	"github.com/shopspring/decimal"

	"github.com/kaidrach/agentrun/pkg/llms"
)

// PreflightKind names the outcome of a pre-send budget check.
type PreflightKind int

const (
	PreflightOK PreflightKind = iota
	PreflightWarning
	PreflightExceeded
)

// PreflightResult is the outcome of checking whether an estimated token
// count would still fit the context window before a turn is sent.
type PreflightResult struct {
	Kind            PreflightKind
	EstimatedTokens uint64
	Utilization     float64 // set for OK/Warning
	Remaining       uint64  // set for OK
	Tier            ContextTier
	Limit           uint64 // set for Exceeded
	Overage         uint64 // set for Exceeded
}

// ShouldProceed reports whether the turn may be sent.
func (r PreflightResult) ShouldProceed() bool { return r.Kind != PreflightExceeded }

// Tracker accumulates token spend across a run: the current context
// window, cumulative and last-turn budgets, and running cost against the
// model's pricing.
type Tracker struct {
	window     *ContextWindow
	cumulative TokenBudget
	lastTurn   TokenBudget
	modelSpec  llms.ModelSpec
	pricing    Pricing
}

// NewTracker builds a tracker for spec, charged at pricing, sized to the
// extended context window when extendedContext is true.
func NewTracker(spec llms.ModelSpec, extendedContext bool, pricing Pricing) *Tracker {
	return &Tracker{
		window:    NewContextWindow(spec, extendedContext),
		modelSpec: spec,
		pricing:   pricing,
	}
}

// WithThresholds overrides the window's warning/critical bands.
func (t *Tracker) WithThresholds(warning, critical float64) *Tracker {
	t.window.WithThresholds(warning, critical)
	return t
}

// Check previews whether sending estimatedTokens more would fit, without
// mutating tracked usage.
func (t *Tracker) Check(estimatedTokens uint64) PreflightResult {
	newUsage := t.window.Usage() + estimatedTokens
	limit := t.window.Limit()

	if newUsage > limit {
		return PreflightResult{
			Kind:            PreflightExceeded,
			EstimatedTokens: estimatedTokens,
			Limit:           limit,
			Overage:         newUsage - limit,
		}
	}

	utilization := 0.0
	if limit > 0 {
		utilization = float64(newUsage) / float64(limit)
	}
	tier := TierForContext(newUsage)

	if utilization >= t.window.WarningThreshold() {
		return PreflightResult{Kind: PreflightWarning, EstimatedTokens: estimatedTokens, Utilization: utilization, Tier: tier}
	}
	return PreflightResult{Kind: PreflightOK, EstimatedTokens: estimatedTokens, Utilization: utilization, Remaining: limit - newUsage, Tier: tier}
}

// Record folds a response's usage into cumulative/last-turn budgets and
// updates the context window to the new running total.
func (t *Tracker) Record(usage Usage) {
	budget := BudgetFromUsage(usage)
	t.lastTurn = budget
	t.cumulative = t.cumulative.Add(budget)
	t.window.Update(saturatingAdd(t.window.Usage(), budget.ContextUsage()))
}

// Status reports the context window's current band.
func (t *Tracker) Status() WindowStatus { return t.window.Status() }

// ContextWindow exposes the underlying window for direct inspection.
func (t *Tracker) ContextWindow() *ContextWindow { return t.window }

// Cumulative returns total spend across every recorded turn.
func (t *Tracker) Cumulative() TokenBudget { return t.cumulative }

// LastTurn returns the most recently recorded turn's spend.
func (t *Tracker) LastTurn() TokenBudget { return t.lastTurn }

// PricingTier classifies the window's current usage.
func (t *Tracker) PricingTier() ContextTier { return TierForContext(t.window.Usage()) }

// TotalCost prices cumulative spend at the tracker's configured pricing.
func (t *Tracker) TotalCost() decimal.Decimal {
	return t.pricing.Calculate(t.cumulative.InputTokens, t.cumulative.OutputTokens, t.cumulative.CacheReadTokens, t.cumulative.CacheWriteTokens)
}

// Reset overwrites the window's current usage, e.g. after a compaction
// edit reduces what the provider actually carries forward.
func (t *Tracker) Reset(newContextUsage uint64) { t.window.Reset(newContextUsage) }

// Model returns the spec this tracker was built for.
func (t *Tracker) Model() llms.ModelSpec { return t.modelSpec }

// Restore overwrites the tracker's accumulated state from a
// checkpoint: the cumulative budget and the context window's running
// usage.
func (t *Tracker) Restore(cumulative TokenBudget, contextUsage uint64) {
	t.cumulative = cumulative
	t.lastTurn = TokenBudget{}
	t.window.Reset(contextUsage)
}

// Clone copies the tracker, including a snapshot of its window, so a
// forked session accounts independently from the fork point onward.
func (t *Tracker) Clone() *Tracker {
	window := *t.window
	return &Tracker{
		window:     &window,
		cumulative: t.cumulative,
		lastTurn:   t.lastTurn,
		modelSpec:  t.modelSpec,
		pricing:    t.pricing,
	}
}
