package types

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "model"
)

// Source is a retrieval citation attached to an assistant reply.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ChatMessage is one entry of the conversation history.
type ChatMessage struct {
	Role    Role     `json:"role"`
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}
