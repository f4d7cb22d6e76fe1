package api

import (
	"context"

	"github.com/opsdeck/opsdeck/internal/models"
)

// ChatRequest is one outgoing assistant turn. ConversationID is empty on
// the first turn; subsequent turns thread the id the server issued.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatResponse is the server's reply to one turn.
type ChatResponse struct {
	ConversationID     string                  `json:"conversationId"`
	Message            models.AssistantMessage `json:"message"`
	SuggestedFollowUps []string                `json:"suggestedFollowUps"`
}

// Chat sends one conversation turn to the assistant.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.post(ctx, "/ai-assistant/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Suggestions fetches context-aware conversation starters.
func (c *Client) Suggestions(ctx context.Context) (*models.SuggestionSet, error) {
	var out models.SuggestionSet
	if err := c.get(ctx, "/ai-assistant/suggestions", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
