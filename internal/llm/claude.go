package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

type ClaudeClient struct {
	client *anthropic.Client
}

func NewClaudeClient(apiKey string, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, opts...),
	}
}

func (c *ClaudeClient) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			// Anthropic takes the system prompt outside the message list.
			req.System = m.Content
		case RoleAssistant:
			req.Messages = append(req.Messages, anthropic.Message{
				Role: anthropic.RoleAssistant,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(m.Content),
				},
			})
		default:
			req.Messages = append(req.Messages, anthropic.Message{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(m.Content),
				},
			})
		}
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Content) > 0 && resp.Content[0].Text != nil {
		return *resp.Content[0].Text, nil
	}
	return "", fmt.Errorf("no response content")
}
