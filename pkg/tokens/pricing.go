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

import "github.com/shopspring/decimal"

// LongContextThreshold is the context size past which providers charge a
// multiplier on input-side tokens.
const LongContextThreshold = 200_000

// ContextTier names which side of LongContextThreshold a request landed
// on, for reporting alongside a preflight check.
type ContextTier string

const (
	TierStandard    ContextTier = "standard"
	TierLongContext ContextTier = "long_context"
)

// TierForContext classifies a context size.
func TierForContext(contextTokens uint64) ContextTier {
	if contextTokens > LongContextThreshold {
		return TierLongContext
	}
	return TierStandard
}

// Pricing is a model's per-million-token rates in USD. CacheRead and
// CacheWrite default to fractions of Input (cache reads are cheap, cache
// writes carry a premium) when built via NewPricing.
type Pricing struct {
	Input                 decimal.Decimal
	Output                decimal.Decimal
	CacheRead             decimal.Decimal
	CacheWrite            decimal.Decimal
	LongContextMultiplier decimal.Decimal
}

// NewPricing derives cache rates from input per the provider's published
// ratios: reads at 10% of input, writes at 125%, long-context at 2x.
func NewPricing(input, output float64) Pricing {
	in := decimal.NewFromFloat(input)
	return Pricing{
		Input:                 in,
		Output:                decimal.NewFromFloat(output),
		CacheRead:             in.Mul(decimal.NewFromFloat(0.1)),
		CacheWrite:            in.Mul(decimal.NewFromFloat(1.25)),
		LongContextMultiplier: decimal.NewFromInt(2),
	}
}

var million = decimal.NewFromInt(1_000_000)

// Calculate prices a turn's token spend. The long-context multiplier
// applies to every input-side rate (input, cache read, cache write) once
// their sum crosses LongContextThreshold, matching the provider's
// context-length-based pricing tiers; output tokens are never
// multiplied.
func (p Pricing) Calculate(inputTokens, outputTokens, cacheRead, cacheWrite uint64) decimal.Decimal {
	context := inputTokens + cacheRead + cacheWrite
	multiplier := decimal.NewFromInt(1)
	if context > LongContextThreshold {
		multiplier = p.LongContextMultiplier
	}

	rate := func(tokens uint64, perMillion decimal.Decimal, scaled bool) decimal.Decimal {
		cost := decimal.NewFromInt(int64(tokens)).Div(million).Mul(perMillion)
		if scaled {
			return cost.Mul(multiplier)
		}
		return cost
	}

	total := rate(inputTokens, p.Input, true)
	total = total.Add(rate(outputTokens, p.Output, false))
	total = total.Add(rate(cacheRead, p.CacheRead, true))
	total = total.Add(rate(cacheWrite, p.CacheWrite, true))
	return total
}
