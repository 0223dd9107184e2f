package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numerologyx/internal/gateway"
	"numerologyx/internal/types"
)

func TestSession_SendAppendsBothTurns(t *testing.T) {
	gw := &mockGateway{replies: []*gateway.Response{{
		Text:    "Your life path 8 is about mastery.",
		Sources: []types.Source{{Title: "Guide", URI: "https://example.org"}},
	}}}
	s := New(gw)
	assert.Equal(t, StateUninitialized, s.State())

	msg, err := s.Send(context.Background(), testReport("Driven."), "What does my life path mean?")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAssistant, msg.Role)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, types.ChatMessage{Role: types.RoleUser, Text: "What does my life path mean?"}, history[0])
	assert.Equal(t, "Your life path 8 is about mastery.", history[1].Text)
	assert.Len(t, history[1].Sources, 1)
	assert.Equal(t, StateActive, s.State())
	assert.True(t, s.Connected())
}

func TestSession_FailureAppendsFallbackAndStaysActive(t *testing.T) {
	gw := &mockGateway{replies: []*gateway.Response{nil, {Text: "Back online."}}}
	s := New(gw)
	report := testReport("Driven.")

	msg, err := s.Send(context.Background(), report, "What does my life path mean?")
	assert.ErrorIs(t, err, gateway.ErrService)
	assert.Equal(t, FallbackReply, msg.Text)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, types.RoleUser, history[0].Role)
	assert.Equal(t, types.ChatMessage{Role: types.RoleAssistant, Text: "Connection error."}, history[1])
	assert.Equal(t, StateActive, s.State())
	assert.False(t, s.Connected())

	_, err = s.Send(context.Background(), report, "Try again")
	require.NoError(t, err)
	assert.Len(t, s.History(), 4)
	assert.Equal(t, 2, gw.startCount(), "failed conversation is re-created")
}

func TestSession_StartFailureUsesFallback(t *testing.T) {
	gw := &mockGateway{startErr: &gateway.Error{Kind: gateway.KindConfiguration, Message: "no key"}}
	s := New(gw)

	msg, err := s.Send(context.Background(), nil, "hello")
	assert.ErrorIs(t, err, gateway.ErrConfiguration)
	assert.Equal(t, FallbackReply, msg.Text)
	assert.Len(t, s.History(), 2)
}

func TestSession_ReusesConversationForSameContext(t *testing.T) {
	gw := &mockGateway{replies: []*gateway.Response{{Text: "a"}, {Text: "b"}}}
	s := New(gw)
	report := testReport("Driven.")

	_, err := s.Send(context.Background(), report, "one")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), testReport("Driven."), "two")
	require.NoError(t, err)

	assert.Equal(t, 1, gw.startCount())
	assert.Same(t, gw.convs[0], gw.convs[1])
	assert.Len(t, s.History(), 4)
}

func TestSession_ContextChangeStartsFresh(t *testing.T) {
	gw := &mockGateway{replies: []*gateway.Response{{Text: "a"}, {Text: "b"}}}
	s := New(gw)

	_, err := s.Send(context.Background(), testReport("First person."), "one")
	require.NoError(t, err)
	firstKey := s.Key()

	_, err = s.Send(context.Background(), testReport("Second person."), "two")
	require.NoError(t, err)

	assert.NotEqual(t, firstKey, s.Key())
	assert.Equal(t, 2, gw.startCount())
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "two", history[0].Text)
	assert.Contains(t, gw.instructions[1], "Second person.")
}

func TestSession_NoReportUsesGenericInstruction(t *testing.T) {
	gw := &mockGateway{replies: []*gateway.Response{{Text: "hi"}}}
	s := New(gw)

	_, err := s.Send(context.Background(), nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "null", s.Key())
	assert.NotContains(t, gw.instructions[0], "Numerology Context")
}

func TestSession_ReplacedDuringTurn(t *testing.T) {
	gw := &mockGateway{replies: []*gateway.Response{{Text: "late"}}, block: make(chan struct{})}
	s := New(gw)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), testReport("Driven."), "slow question")
		done <- err
	}()

	require.Eventually(t, func() bool { return len(s.History()) == 1 }, time.Second, 5*time.Millisecond)
	s.Reset()
	close(gw.block)

	assert.ErrorIs(t, <-done, ErrSessionReplaced)
	assert.Empty(t, s.History())
	assert.Equal(t, StateUninitialized, s.State())
}

func TestContextKeyAndSummary(t *testing.T) {
	assert.Equal(t, "null", ContextKey(nil))
	assert.Equal(t, `"Driven \"and\" bold."`, ContextKey(testReport(`Driven "and" bold.`)))

	summary := ContextSummary(testReport("Driven."))
	assert.Contains(t, summary, "- Pythagorean Core Numbers:\n  - Life Path: 8 (The Powerhouse)")
	assert.Contains(t, summary, "- Chaldean Core Numbers:")
	assert.Contains(t, summary, "  - Personality: 7 (The Seeker)")
	assert.Contains(t, summary, "- Summary: Driven.")

	assert.Empty(t, ContextSummary(nil))
	assert.Empty(t, ContextSummary(&types.CoreReport{Summary: "partial"}))
}

func TestSessionBind(t *testing.T) {
	s := New(&mockGateway{})
	s.Bind(testReport("A"))
	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, `"A"`, s.Key())
	s.Bind(nil)
	assert.Equal(t, "null", s.Key())
	assert.Equal(t, "active", s.State().String())
}
