package llm

import (
	"context"
	"fmt"

	"github.com/c360studio/specdialog/conversation"
	"github.com/c360studio/specdialog/model"
)

// Collaborator adapts the Client to the conversation engine's Replyer
// interface. The engine hands it a fully framed prompt plus the recent
// session history; the collaborator threads them through the
// capability-routed completion path.
type Collaborator struct {
	client     *Client
	capability model.Capability
}

// NewCollaborator creates a Replyer backed by the LLM client. An empty
// capability defaults to conversing.
func NewCollaborator(client *Client, capability model.Capability) *Collaborator {
	if capability == "" {
		capability = model.CapabilityConversing
	}
	return &Collaborator{client: client, capability: capability}
}

// Reply generates a conversational response. History precedes the
// prompt so the model sees the dialogue in order.
func (c *Collaborator) Reply(ctx context.Context, prompt string, history []conversation.Message) (string, error) {
	messages := make([]Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	resp, err := c.client.Complete(ctx, Request{
		Capability: c.capability.String(),
		Messages:   messages,
	})
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return resp.Content, nil
}
