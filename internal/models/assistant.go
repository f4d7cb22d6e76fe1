package models

import "time"

// Assistant message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AssistantMessage is one turn in an assistant conversation.
type AssistantMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Present on assistant turns that came from the server.
	TokensUsed int   `json:"tokensUsed,omitempty"`
	LatencyMs  int64 `json:"latencyMs,omitempty"`

	// Fallback marks a locally synthesized turn produced when the send
	// failed; it never round-tripped through the server.
	Fallback bool `json:"-"`
}

// SuggestionSet is the server's context-aware follow-up suggestions.
type SuggestionSet struct {
	Suggestions []string        `json:"suggestions"`
	BasedOn     SuggestionBasis `json:"basedOn"`
}

// SuggestionBasis describes the signals the suggestions were derived from.
type SuggestionBasis struct {
	HasAnomalies         bool `json:"hasAnomalies"`
	HasCostWarning       bool `json:"hasCostWarning"`
	HasPerformanceIssues bool `json:"hasPerformanceIssues"`
}
