// Package assistant holds the chat conversation with the operations
// assistant.
package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/query"
)

const opSuggestions = "assistant.suggestions"

// fallbackContent is the locally synthesized assistant turn shown when a
// send fails. The failed turn stays in the transcript; the conversation
// id is left untouched so the next send resumes the same thread.
const fallbackContent = "Sorry, I ran into a problem reaching the operations assistant. Please try again in a moment."

// Event represents an assistant service event.
type Event struct {
	Type    EventType
	Error   error
	Message *models.AssistantMessage
}

// EventType defines the type of assistant event.
type EventType int

// Assistant event types.
const (
	EventReplyReceived EventType = iota
	EventFallbackShown
	EventCleared
)

// Config holds configuration for the assistant service.
type Config struct {
	SuggestionsStaleAfter time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{SuggestionsStaleAfter: 5 * time.Minute}
}

// Service keeps the conversation transcript and threads the server's
// conversation id across turns.
type Service struct {
	api     *api.Client
	queries *query.Client
	config  Config

	send *query.Mutation[string, *api.ChatResponse]

	mu             sync.RWMutex
	messages       []models.AssistantMessage
	conversationID string
	followUps      []string

	eventChan chan Event
}

// New creates an assistant service.
func New(apiClient *api.Client, queries *query.Client, config Config) *Service {
	if config.SuggestionsStaleAfter == 0 {
		config = DefaultConfig()
	}

	s := &Service{
		api:       apiClient,
		queries:   queries,
		config:    config,
		eventChan: make(chan Event, 100),
	}

	s.send = query.NewMutation(queries,
		func(ctx context.Context, message string) (*api.ChatResponse, error) {
			s.mu.RLock()
			req := api.ChatRequest{Message: message, ConversationID: s.conversationID}
			s.mu.RUnlock()
			return s.api.Chat(ctx, req)
		},
		func(string, *api.ChatResponse) []query.Key {
			// A completed turn can change which follow-ups the server
			// would suggest.
			return []query.Key{query.NewKey(opSuggestions)}
		})

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Send appends the user's turn to the transcript immediately and sends
// it to the assistant. On failure the transcript gains a fixed apology
// turn instead of a server reply.
func (s *Service) Send(ctx context.Context, message string) (*models.AssistantMessage, error) {
	s.mu.Lock()
	s.messages = append(s.messages, models.AssistantMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   message,
		Timestamp: time.Now(),
	})
	s.mu.Unlock()

	resp, err := s.send.Do(ctx, message)
	if err != nil {
		logger.Error("assistant send failed", "error", err)
		fallback := models.AssistantMessage{
			ID:        uuid.NewString(),
			Role:      models.RoleAssistant,
			Content:   fallbackContent,
			Timestamp: time.Now(),
			Fallback:  true,
		}
		s.mu.Lock()
		s.messages = append(s.messages, fallback)
		s.mu.Unlock()
		s.sendEvent(Event{Type: EventFallbackShown, Error: err, Message: &fallback})
		return &fallback, nil
	}

	reply := resp.Message
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	if reply.Timestamp.IsZero() {
		reply.Timestamp = time.Now()
	}
	reply.Role = models.RoleAssistant

	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.conversationID = resp.ConversationID
	s.followUps = resp.SuggestedFollowUps
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventReplyReceived, Message: &reply})
	return &reply, nil
}

// Messages returns a copy of the transcript.
func (s *Service) Messages() []models.AssistantMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AssistantMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// ConversationID returns the server-issued thread id, empty before the
// first successful turn.
func (s *Service) ConversationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversationID
}

// FollowUps returns the follow-up prompts from the latest reply.
func (s *Service) FollowUps() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.followUps))
	copy(out, s.followUps)
	return out
}

// Pending reports whether a send is in flight.
func (s *Service) Pending() bool {
	return s.send.Pending()
}

// Suggestions returns context-aware conversation starters.
func (s *Service) Suggestions(ctx context.Context) (*models.SuggestionSet, error) {
	return query.Fetch(ctx, s.queries, query.NewKey(opSuggestions), s.config.SuggestionsStaleAfter,
		func(ctx context.Context) (*models.SuggestionSet, error) {
			return s.api.Suggestions(ctx)
		})
}

// Clear drops the transcript and starts a fresh thread.
func (s *Service) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.conversationID = ""
	s.followUps = nil
	s.mu.Unlock()
	s.sendEvent(Event{Type: EventCleared})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}
