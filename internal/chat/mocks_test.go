package chat

import (
	"context"
	"errors"
	"sync"

	"numerologyx/internal/gateway"
	"numerologyx/internal/types"
)

type mockConversation struct {
	id int
}

func (c *mockConversation) Send(ctx context.Context, text string) (*gateway.Response, error) {
	return nil, errors.New("not used")
}

// mockGateway answers turns from a script. A nil entry fails the turn.
type mockGateway struct {
	mu           sync.Mutex
	replies      []*gateway.Response
	startErr     error
	instructions []string
	turns        []string
	convs        []gateway.Conversation
	block        chan struct{}
}

func (m *mockGateway) StartConversation(ctx context.Context, instruction string) (gateway.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.instructions = append(m.instructions, instruction)
	return &mockConversation{id: len(m.instructions)}, nil
}

func (m *mockGateway) SendConversationTurn(ctx context.Context, conv gateway.Conversation, userText string) (*gateway.Response, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, userText)
	m.convs = append(m.convs, conv)
	if len(m.replies) == 0 {
		return nil, errors.New("script exhausted")
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	if r == nil {
		return nil, &gateway.Error{Kind: gateway.KindService, Op: "conversation_turn", Message: "Failed to get a response from the AI assistant."}
	}
	return r, nil
}

func (m *mockGateway) startCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.instructions)
}

func testReport(summary string) *types.CoreReport {
	calc := &types.Calculations{
		LifePath:    types.CalculationDetail{Number: 8},
		Destiny:     types.CalculationDetail{Number: 3},
		SoulUrge:    types.CalculationDetail{Number: 5},
		Personality: types.CalculationDetail{Number: 7},
	}
	interp := &types.Interpretations{
		LifePath:    types.Interpretation{Title: "The Powerhouse"},
		Destiny:     types.Interpretation{Title: "The Communicator"},
		SoulUrge:    types.Interpretation{Title: "The Free Spirit"},
		Personality: types.Interpretation{Title: "The Seeker"},
	}
	return &types.CoreReport{
		Pythagorean: &types.SystemReport{Calculations: calc, Interpretations: interp},
		Chaldean:    &types.SystemReport{Calculations: calc, Interpretations: interp},
		Summary:     summary,
	}
}
