package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numerologyx/internal/chat"
	"numerologyx/internal/types"
)

func TestSendMessage_AppendsUserThenAssistant(t *testing.T) {
	h := newHarness(t)
	h.calculate(t, asha)
	require.Empty(t, h.o.Messages())

	reply, err := h.o.SendMessage(context.Background(), "What does my life path mean?")
	require.NoError(t, err)
	assert.Equal(t, "About What does my life path mean?", reply.Text)

	st := h.o.State()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, types.RoleUser, st.Messages[0].Role)
	assert.Equal(t, "What does my life path mean?", st.Messages[0].Text)
	assert.Equal(t, types.RoleAssistant, st.Messages[1].Role)
	assert.False(t, st.ChatLoading)
}

func TestSendMessage_FailureAppendsFallback(t *testing.T) {
	h := newHarness(t)
	h.calculate(t, asha)
	h.gw.setErr(&h.gw.chatErr, errors.New("transport closed"))

	reply, err := h.o.SendMessage(context.Background(), "What does my life path mean?")
	require.NoError(t, err)
	assert.Equal(t, chat.FallbackReply, reply.Text)

	st := h.o.State()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, types.RoleUser, st.Messages[0].Role)
	assert.Equal(t, types.ChatMessage{Role: types.RoleAssistant, Text: "Connection error."}, st.Messages[1])
	assert.Equal(t, chat.StateActive.String(), st.ChatState)

	h.gw.setErr(&h.gw.chatErr, nil)
	_, err = h.o.SendMessage(context.Background(), "again")
	require.NoError(t, err)
	assert.Len(t, h.o.Messages(), 4)
	assert.Equal(t, 2, h.gw.count("start_conversation"))
}

func TestSendMessage_SingleFlight(t *testing.T) {
	h := newHarness(t)
	h.calculate(t, asha)
	h.gw.chatGate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := h.o.SendMessage(context.Background(), "first")
		done <- err
	}()
	require.Eventually(t, func() bool { return h.o.State().ChatLoading }, waitFor, tick)

	_, err := h.o.SendMessage(context.Background(), "second")
	assert.ErrorIs(t, err, ErrTurnInFlight)

	close(h.gw.chatGate)
	require.NoError(t, <-done)
	assert.Len(t, h.o.Messages(), 2)
}

func TestSendMessage_Empty(t *testing.T) {
	h := newHarness(t)
	_, err := h.o.SendMessage(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, h.gw.count("turn"))
}

func TestSendMessage_ResetDuringTurnDropsReply(t *testing.T) {
	h := newHarness(t)
	h.calculate(t, asha)
	h.gw.chatGate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := h.o.SendMessage(context.Background(), "first")
		done <- err
	}()
	require.Eventually(t, func() bool { return h.gw.count("turn") == 1 }, waitFor, tick)

	require.NoError(t, h.o.Reset(context.Background()))
	close(h.gw.chatGate)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Empty(t, h.o.Messages())
	assert.False(t, h.o.State().ChatLoading)
}
