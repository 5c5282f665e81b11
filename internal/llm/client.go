package llm

import (
	"context"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat-style turn sent to a model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient abstracts one provider's chat API. Provider-specific request
// and response shapes stay behind this boundary.
type ChatClient interface {
	Chat(ctx context.Context, model string, messages []Message) (string, error)
}

// ChatFunc adapts a function to the ChatClient interface. Used in tests.
type ChatFunc func(ctx context.Context, model string, messages []Message) (string, error)

func (f ChatFunc) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	return f(ctx, model, messages)
}
