package gateway

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"numerologyx/internal/types"
)

// =============================================================================
// GOOGLE GENAI MODEL
// =============================================================================

// GenAIModel implements Model on the Gemini API.
type GenAIModel struct {
	client *genai.Client
}

// NewGenAIModel creates a Gemini API client.
func NewGenAIModel(ctx context.Context, apiKey string) (*GenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIModel{client: client}, nil
}

// Generate issues one GenerateContent call.
func (m *GenAIModel) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON || req.Schema != nil {
		config.ResponseMIMEType = "application/json"
	}
	if req.Schema != nil {
		config.ResponseSchema = req.Schema
	}

	resp, err := m.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}
	return toResponse(resp), nil
}

// StartConversation opens a chat with an empty history.
func (m *GenAIModel) StartConversation(ctx context.Context, req ConversationRequest) (Conversation, error) {
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Search {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	chat, err := m.client.Chats.Create(ctx, req.Model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("GenAI chat create failed: %w", err)
	}
	return &genaiConversation{chat: chat}, nil
}

type genaiConversation struct {
	chat *genai.Chat
}

func (c *genaiConversation) Send(ctx context.Context, text string) (*Response, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return nil, fmt.Errorf("GenAI chat send failed: %w", err)
	}
	return toResponse(resp), nil
}

// toResponse extracts the text and web grounding citations of the first
// candidate.
func toResponse(resp *genai.GenerateContentResponse) *Response {
	if resp == nil {
		return &Response{}
	}
	out := &Response{Text: resp.Text()}
	if um := resp.UsageMetadata; um != nil {
		out.Usage = Usage{InputTokens: int(um.PromptTokenCount), OutputTokens: int(um.CandidatesTokenCount)}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return out
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return out
	}
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		out.Sources = append(out.Sources, types.Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}
