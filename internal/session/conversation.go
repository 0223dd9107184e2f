package session

import (
	"context"
	"errors"
	"strings"

	"numerologyx/internal/chat"
	"numerologyx/internal/logging"
	"numerologyx/internal/types"
)

// SendMessage runs one conversation turn grounded on the current core
// report. Only one turn may be in flight. A failed turn is not an error:
// the fallback reply is appended to the history and returned.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) (types.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.ChatMessage{}, ErrEmptyMessage
	}

	o.mu.Lock()
	if o.chatLoading {
		o.mu.Unlock()
		return types.ChatMessage{}, ErrTurnInFlight
	}
	o.chatLoading = true
	o.chatTurn++
	turn := o.chatTurn
	report := o.core.Value
	o.mu.Unlock()

	msg, err := o.chat.Send(ctx, report, text)

	o.mu.Lock()
	if o.chatTurn == turn {
		o.chatLoading = false
	}
	o.mu.Unlock()

	switch {
	case errors.Is(err, chat.ErrSessionReplaced):
		return types.ChatMessage{}, ErrSuperseded
	case err != nil:
		logging.SessionWarn("Conversation turn degraded to fallback: %v", err)
	}
	return msg, nil
}

// Messages returns the conversation history.
func (o *Orchestrator) Messages() []types.ChatMessage {
	return o.chat.History()
}
