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

package llms

import (
	"fmt"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// Token bounds the upstream messages API enforces on a request.
const (
	MinThinkingBudget = 1024
	DefaultMaxTokens  = 8192
	MaxTokens128K     = 128_000
	MinMaxTokens      = 1
)

// ClampThinkingBudget raises budget to MinThinkingBudget when it would
// otherwise be rejected as too small, matching the upstream client's own
// auto-clamp behavior for a caller-supplied thinking budget.
func ClampThinkingBudget(budget int) int {
	if budget < MinThinkingBudget {
		return MinThinkingBudget
	}
	return budget
}

// Validate checks req's token bounds before it is sent: max_tokens must
// fall within [MinMaxTokens, MaxTokens128K], and a thinking budget must
// leave room under max_tokens.
func Validate(req CreateMessageRequest) error {
	if req.MaxTokens < MinMaxTokens {
		return &errs.TokenValidationError{
			Kind:    errs.MaxTokensTooLow,
			Message: fmt.Sprintf("max_tokens (%d) must be >= %d", req.MaxTokens, MinMaxTokens),
		}
	}
	if req.MaxTokens > MaxTokens128K {
		return &errs.TokenValidationError{
			Kind:    errs.MaxTokensTooHigh,
			Message: fmt.Sprintf("max_tokens (%d) exceeds maximum allowed (%d)", req.MaxTokens, MaxTokens128K),
		}
	}

	if req.Thinking != nil && req.Thinking.Enabled && req.Thinking.BudgetTokens >= req.MaxTokens {
		return &errs.TokenValidationError{
			Kind:    errs.ThinkingBudgetExceedsMax,
			Message: fmt.Sprintf("thinking budget_tokens (%d) must be < max_tokens (%d)", req.Thinking.BudgetTokens, req.MaxTokens),
		}
	}

	return nil
}
