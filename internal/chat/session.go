// Package chat holds the conversation session: one logical dialogue with
// the assistant, grounded on the current core report.
//
// A Session is Uninitialized until first used and Active afterwards. When
// the grounding context changes (a different report summary, or no report)
// the Session starts over with an empty history instead of mutating the
// old dialogue. A failed turn keeps the Session Active but drops the
// service-side handle so the next turn opens a new one.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"numerologyx/internal/gateway"
	"numerologyx/internal/logging"
	"numerologyx/internal/types"
)

// FallbackReply is appended as the assistant turn when a turn fails.
const FallbackReply = "Connection error."

// ErrSessionReplaced is returned when the context changed while a turn was
// in flight; the late reply is discarded.
var ErrSessionReplaced = errors.New("conversation context changed during turn")

// State of a Session.
type State int

const (
	StateUninitialized State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "uninitialized"
}

// Gateway is the subset of gateway.Gateway used by a Session.
type Gateway interface {
	StartConversation(ctx context.Context, instruction string) (gateway.Conversation, error)
	SendConversationTurn(ctx context.Context, conv gateway.Conversation, userText string) (*gateway.Response, error)
}

// Session is safe for concurrent use; callers still serialize turns.
type Session struct {
	mu         sync.Mutex
	gw         Gateway
	state      State
	contextKey string
	summary    string
	conv       gateway.Conversation
	history    []types.ChatMessage
	epoch      uint64
}

// New creates an Uninitialized Session.
func New(gw Gateway) *Session {
	return &Session{gw: gw}
}

// ContextKey identifies the grounding context of report: the JSON encoding
// of its summary, or "null" without a report.
func ContextKey(report *types.CoreReport) string {
	if report == nil {
		return "null"
	}
	data, err := json.Marshal(report.Summary)
	if err != nil {
		return "null"
	}
	return string(data)
}

// ContextSummary renders the core numbers of both systems and the summary
// for the system instruction. Empty without a complete report.
func ContextSummary(report *types.CoreReport) string {
	if report.Validate() != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("The user has already generated their numerology report. Key details:\n")
	for _, sys := range []struct {
		name string
		r    *types.SystemReport
	}{{"Pythagorean", report.Pythagorean}, {"Chaldean", report.Chaldean}} {
		c, in := sys.r.Calculations, sys.r.Interpretations
		fmt.Fprintf(&b, "- %s Core Numbers:\n", sys.name)
		fmt.Fprintf(&b, "  - Life Path: %d (%s)\n", c.LifePath.Number, in.LifePath.Title)
		fmt.Fprintf(&b, "  - Destiny: %d (%s)\n", c.Destiny.Number, in.Destiny.Title)
		fmt.Fprintf(&b, "  - Soul Urge: %d (%s)\n", c.SoulUrge.Number, in.SoulUrge.Title)
		fmt.Fprintf(&b, "  - Personality: %d (%s)\n", c.Personality.Number, in.Personality.Title)
	}
	fmt.Fprintf(&b, "- Summary: %s\n\n", report.Summary)
	b.WriteString("Use this to give personalized answers and refer to their numbers when relevant.")
	return b.String()
}

// Bind makes report the grounding context. A different context replaces
// the dialogue with a fresh Active one.
func (s *Session) Bind(report *types.CoreReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindLocked(report)
}

func (s *Session) bindLocked(report *types.CoreReport) {
	key := ContextKey(report)
	if s.state == StateActive && key == s.contextKey {
		return
	}
	if s.state == StateActive {
		logging.Chat("Conversation context changed; starting a new session")
	}
	s.state = StateActive
	s.contextKey = key
	s.summary = ContextSummary(report)
	s.conv = nil
	s.history = nil
	s.epoch++
}

// Send appends text as a user turn under the context of report and then
// the assistant reply. On a transport failure the fallback reply is
// appended instead and the error is returned alongside it.
func (s *Session) Send(ctx context.Context, report *types.CoreReport, text string) (types.ChatMessage, error) {
	s.mu.Lock()
	s.bindLocked(report)
	epoch := s.epoch
	s.history = append(s.history, types.ChatMessage{Role: types.RoleUser, Text: text})
	conv, summary := s.conv, s.summary
	s.mu.Unlock()

	reply, conv, err := s.turn(ctx, conv, summary, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		logging.ChatDebug("Dropping reply for a replaced conversation")
		return types.ChatMessage{}, ErrSessionReplaced
	}
	if err != nil {
		logging.ChatWarn("Conversation turn failed: %v", err)
		s.conv = nil
		msg := types.ChatMessage{Role: types.RoleAssistant, Text: FallbackReply}
		s.history = append(s.history, msg)
		return msg, err
	}
	s.conv = conv
	msg := types.ChatMessage{Role: types.RoleAssistant, Text: reply.Text, Sources: reply.Sources}
	s.history = append(s.history, msg)
	return msg, nil
}

func (s *Session) turn(ctx context.Context, conv gateway.Conversation, summary, text string) (*gateway.Response, gateway.Conversation, error) {
	if conv == nil {
		var err error
		conv, err = s.gw.StartConversation(ctx, gateway.ChatInstruction(summary))
		if err != nil {
			return nil, nil, err
		}
		logging.ChatDebug("Opened conversation (grounded=%v)", summary != "")
	}
	reply, err := s.gw.SendConversationTurn(ctx, conv, text)
	if err != nil {
		return nil, nil, err
	}
	return reply, conv, nil
}

// Reset returns the Session to Uninitialized with no history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateUninitialized
	s.contextKey = ""
	s.summary = ""
	s.conv = nil
	s.history = nil
	s.epoch++
}

// History returns a copy of the message history.
func (s *Session) History() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Key returns the context key of the current dialogue.
func (s *Session) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contextKey
}

// Connected reports whether a service-side conversation is open.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv != nil
}
