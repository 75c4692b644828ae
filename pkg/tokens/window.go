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
	"github.com/kaidrach/agentrun/pkg/llms"
)

// Default warning/critical utilization thresholds, applied unless a
// caller overrides them via ContextWindow.WithThresholds.
const (
	DefaultWarningThreshold  = 0.8
	DefaultCriticalThreshold = 0.95
)

// WindowStatusKind names which band the window's current usage falls
// into.
type WindowStatusKind int

const (
	WindowOK WindowStatusKind = iota
	WindowWarning
	WindowCritical
	WindowExceeded
)

// WindowStatus reports a context window's health at a point in time.
// Utilization and Remaining are meaningful only when Kind != WindowExceeded;
// Overage is meaningful only when Kind == WindowExceeded.
type WindowStatus struct {
	Kind        WindowStatusKind
	Utilization float64
	Remaining   uint64
	Overage     uint64
}

// ShouldProceed reports whether a turn may still be sent.
func (s WindowStatus) ShouldProceed() bool { return s.Kind != WindowExceeded }

// ContextWindow tracks current and peak usage against a model's
// effective context limit.
type ContextWindow struct {
	capabilities      llms.Capabilities
	extendedEnabled   bool
	currentUsage      uint64
	peakUsage         uint64
	warningThreshold  float64
	criticalThreshold float64
}

// NewContextWindow builds a window for spec, sized to the extended
// context limit when extendedEnabled is true and the model supports it.
func NewContextWindow(spec llms.ModelSpec, extendedEnabled bool) *ContextWindow {
	return &ContextWindow{
		capabilities:      spec.Capabilities,
		extendedEnabled:   extendedEnabled,
		warningThreshold:  DefaultWarningThreshold,
		criticalThreshold: DefaultCriticalThreshold,
	}
}

// WithThresholds overrides the warning/critical utilization bands.
func (w *ContextWindow) WithThresholds(warning, critical float64) *ContextWindow {
	w.warningThreshold = warning
	w.criticalThreshold = critical
	return w
}

// Limit is the effective context window size for this model/mode pair.
func (w *ContextWindow) Limit() uint64 {
	return w.capabilities.EffectiveContext(w.extendedEnabled)
}

// Usage returns the current recorded usage.
func (w *ContextWindow) Usage() uint64 { return w.currentUsage }

// Peak returns the highest usage ever recorded.
func (w *ContextWindow) Peak() uint64 { return w.peakUsage }

// WarningThreshold returns the configured warning utilization band.
func (w *ContextWindow) WarningThreshold() float64 { return w.warningThreshold }

// Remaining is the limit minus current usage, floored at zero.
func (w *ContextWindow) Remaining() uint64 {
	limit := w.Limit()
	if w.currentUsage >= limit {
		return 0
	}
	return limit - w.currentUsage
}

// Utilization is current usage as a fraction of the limit.
func (w *ContextWindow) Utilization() float64 {
	limit := w.Limit()
	if limit == 0 {
		return 0
	}
	return float64(w.currentUsage) / float64(limit)
}

// CanFit reports whether additional tokens would still fit under the limit.
func (w *ContextWindow) CanFit(additional uint64) bool {
	return w.currentUsage+additional <= w.Limit()
}

// Status classifies the window's current usage into a band.
func (w *ContextWindow) Status() WindowStatus {
	limit := w.Limit()
	if w.currentUsage > limit {
		return WindowStatus{Kind: WindowExceeded, Overage: w.currentUsage - limit}
	}

	utilization := w.Utilization()
	remaining := w.Remaining()
	switch {
	case utilization >= w.criticalThreshold:
		return WindowStatus{Kind: WindowCritical, Utilization: utilization, Remaining: remaining}
	case utilization >= w.warningThreshold:
		return WindowStatus{Kind: WindowWarning, Utilization: utilization, Remaining: remaining}
	default:
		return WindowStatus{Kind: WindowOK, Utilization: utilization, Remaining: remaining}
	}
}

// Update sets current usage to an absolute value, extending peak if needed.
func (w *ContextWindow) Update(newUsage uint64) {
	w.currentUsage = newUsage
	if newUsage > w.peakUsage {
		w.peakUsage = newUsage
	}
}

// Add increments current usage by tokens.
func (w *ContextWindow) Add(tokens uint64) {
	w.Update(saturatingAdd(w.currentUsage, tokens))
}

// Reset overwrites current usage without affecting peak, for compaction.
func (w *ContextWindow) Reset(newUsage uint64) {
	w.currentUsage = newUsage
}
