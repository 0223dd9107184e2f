package gateway

import (
	"context"

	"google.golang.org/genai"

	"numerologyx/internal/types"
)

// Request is one single-shot generation.
type Request struct {
	Model  string
	System string
	Prompt string
	// Schema constrains a JSON response; nil with JSON set asks for
	// free-form JSON.
	Schema *genai.Schema
	JSON   bool
}

// Response is the text of a generation plus any retrieval citations.
type Response struct {
	Text    string
	Sources []types.Source
	Usage   Usage
}

// Usage is the token accounting the service reported for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// UsageRecorder receives the usage of every successful call.
type UsageRecorder interface {
	Track(model, operation string, input, output int)
}

// Conversation is an open multi-turn dialogue on the service side.
type Conversation interface {
	Send(ctx context.Context, text string) (*Response, error)
}

// ConversationRequest configures a new Conversation.
type ConversationRequest struct {
	Model  string
	System string
	Search bool
}

// Model is the generative backend the Gateway talks to.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	StartConversation(ctx context.Context, req ConversationRequest) (Conversation, error)
}
