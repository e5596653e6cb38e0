package domain

import "context"

// Role is a chat message author.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    Role
	Content string
}

// ChatRequest is a single-shot completion request.
type ChatRequest struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// NewPromptRequest builds a single user-message request.
func NewPromptRequest(prompt string, temperature float32, maxTokens int) ChatRequest {
	return ChatRequest{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// ChatResult carries the completion text and token usage.
type ChatResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatModel is the single-shot LLM completion contract shared between layers.
// Failures are wrapped with ErrLLMProviderError (or ErrCircuitOpen / ErrRateLimited).
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (ChatResult, error)
}
