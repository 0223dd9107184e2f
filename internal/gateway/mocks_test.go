package gateway

import (
	"context"
	"sync"
)

// fakeModel replays canned replies and records requests.
type fakeModel struct {
	mu       sync.Mutex
	replies  []string
	usage    Usage
	err      error
	requests []Request

	convReplies []*Response
	convErr     error
	startErr    error
	started     []ConversationRequest
	sent        []string
}

func (f *fakeModel) Generate(ctx context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.replies) == 0 {
		return &Response{}, nil
	}
	text := f.replies[0]
	f.replies = f.replies[1:]
	return &Response{Text: text, Usage: f.usage}, nil
}

func (f *fakeModel) StartConversation(ctx context.Context, req ConversationRequest) (Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started = append(f.started, req)
	return &fakeConversation{model: f}, nil
}

func (f *fakeModel) lastRequest() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeConversation struct {
	model *fakeModel
}

func (c *fakeConversation) Send(ctx context.Context, text string) (*Response, error) {
	f := c.model
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	if f.convErr != nil {
		return nil, f.convErr
	}
	if len(f.convReplies) == 0 {
		return &Response{}, nil
	}
	r := f.convReplies[0]
	f.convReplies = f.convReplies[1:]
	return r, nil
}

// fakeRecorder collects Track calls.
type fakeRecorder struct {
	mu      sync.Mutex
	records []string
	input   int
	output  int
}

func (r *fakeRecorder) Track(model, operation string, input, output int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, model+"/"+operation)
	r.input += input
	r.output += output
}
