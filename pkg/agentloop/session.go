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
	"encoding/json"

	"github.com/google/uuid"

	"github.com/kaidrach/agentrun/pkg/llms"
	"github.com/kaidrach/agentrun/pkg/security"
	"github.com/kaidrach/agentrun/pkg/tokens"
)

// SessionID identifies one session for the lifetime of the process.
type SessionID string

// NewSessionID mints a fresh random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// Session is the state one Loop run accumulates and carries forward:
// the message history, the token accountant tracking spend against
// the model's context window, and the security context that governed
// how this session's tool registry was built. The security context is
// carried for provenance and diagnostics only — the tools themselves
// already closed over it at construction, so the loop's dispatch path
// never consults it directly.
type Session struct {
	ID       SessionID
	Messages []llms.Message
	Tracker  *tokens.Tracker
	Security *security.Context
}

// NewSession builds an empty Session tracked by tracker.
func NewSession(tracker *tokens.Tracker) *Session {
	return &Session{ID: NewSessionID(), Tracker: tracker}
}

// Fork deep-copies the message history into a new session under a
// fresh id. The fork shares the parent's security context (it is
// immutable) but gets its own tracker so the two histories account
// their spend independently from the fork point onward.
func (s *Session) Fork() *Session {
	messages := make([]llms.Message, len(s.Messages))
	for i, msg := range s.Messages {
		messages[i] = msg.Clone()
	}
	var tracker *tokens.Tracker
	if s.Tracker != nil {
		tracker = s.Tracker.Clone()
	}
	return &Session{
		ID:       NewSessionID(),
		Messages: messages,
		Tracker:  tracker,
		Security: s.Security,
	}
}

// WithSecurity attaches sc for provenance, returning the session for
// chaining.
func (s *Session) WithSecurity(sc *security.Context) *Session {
	s.Security = sc
	return s
}

// Append adds msg to the session's history.
func (s *Session) Append(msg llms.Message) {
	s.Messages = append(s.Messages, msg)
}

// sessionCheckpoint is the on-disk shape of a serialized session: the
// id, the full message history in wire form, and enough of the
// tracker's state to resume accounting. The security context is not
// serialized; it is rebuilt from configuration on restore.
type sessionCheckpoint struct {
	ID           SessionID          `json:"id"`
	Messages     []llms.Message     `json:"messages"`
	Cumulative   tokens.TokenBudget `json:"cumulative,omitempty"`
	ContextUsage uint64             `json:"context_usage,omitempty"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	cp := sessionCheckpoint{ID: s.ID, Messages: s.Messages}
	if s.Tracker != nil {
		cp.Cumulative = s.Tracker.Cumulative()
		cp.ContextUsage = s.Tracker.ContextWindow().Usage()
	}
	return json.Marshal(cp)
}

// UnmarshalJSON restores the id and message history. If a tracker is
// already attached it is restored to the checkpoint's accounting;
// otherwise callers attach one sized for the current model and call
// its Restore themselves.
func (s *Session) UnmarshalJSON(data []byte) error {
	var cp sessionCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return err
	}
	s.ID = cp.ID
	s.Messages = cp.Messages
	if s.Tracker != nil {
		s.Tracker.Restore(cp.Cumulative, cp.ContextUsage)
	}
	return nil
}
