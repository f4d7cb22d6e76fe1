package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/query"
)

type mockRoundTripper struct {
	fn func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.fn(req)
}

func jsonResponse(status int, body any) *http.Response {
	data, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
	}
}

func newService(fn func(req *http.Request) (*http.Response, error)) *Service {
	c := api.New("http://api.test/api", "test-token")
	c.SetHTTPClient(&http.Client{Transport: &mockRoundTripper{fn: fn}})
	return New(c, query.New(), DefaultConfig())
}

func chatReply(convID, content string, followUps ...string) *http.Response {
	return jsonResponse(http.StatusOK, map[string]any{"data": api.ChatResponse{
		ConversationID:     convID,
		Message:            models.AssistantMessage{ID: "m1", Role: models.RoleAssistant, Content: content},
		SuggestedFollowUps: followUps,
	}})
}

func TestSendThreadsConversationID(t *testing.T) {
	var sentIDs []string
	s := newService(func(req *http.Request) (*http.Response, error) {
		var body api.ChatRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		sentIDs = append(sentIDs, body.ConversationID)
		return chatReply("conv-1", "35 anomalies are open.", "Show critical ones"), nil
	})

	ctx := context.Background()
	reply, err := s.Send(ctx, "How many anomalies are open?")
	require.NoError(t, err)
	assert.Equal(t, "35 anomalies are open.", reply.Content)
	assert.False(t, reply.Fallback)
	assert.Equal(t, "conv-1", s.ConversationID())
	assert.Equal(t, []string{"Show critical ones"}, s.FollowUps())

	_, err = s.Send(ctx, "Show critical ones")
	require.NoError(t, err)

	require.Len(t, sentIDs, 2)
	assert.Empty(t, sentIDs[0], "first turn starts a new thread")
	assert.Equal(t, "conv-1", sentIDs[1], "second turn threads the issued id")

	msgs := s.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
}

func TestSendFailureAppendsFallback(t *testing.T) {
	var fail bool
	s := newService(func(req *http.Request) (*http.Response, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return chatReply("conv-9", "All systems nominal."), nil
	})

	ctx := context.Background()
	_, err := s.Send(ctx, "Status?")
	require.NoError(t, err)
	require.Equal(t, "conv-9", s.ConversationID())

	fail = true
	reply, err := s.Send(ctx, "And costs?")
	require.NoError(t, err, "a failed send surfaces as a fallback turn, not an error")
	assert.True(t, reply.Fallback)
	assert.Equal(t, models.RoleAssistant, reply.Role)

	msgs := s.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "And costs?", msgs[2].Content, "the failed user turn stays in the transcript")
	assert.True(t, msgs[3].Fallback)
	assert.Equal(t, "conv-9", s.ConversationID(), "conversation id survives a failed send")

	select {
	case ev := <-s.Events():
		assert.Equal(t, EventReplyReceived, ev.Type)
	default:
		t.Fatal("expected a reply event")
	}
	select {
	case ev := <-s.Events():
		assert.Equal(t, EventFallbackShown, ev.Type)
		assert.Error(t, ev.Error)
	default:
		t.Fatal("expected a fallback event")
	}
}

func TestClearResetsThread(t *testing.T) {
	s := newService(func(req *http.Request) (*http.Response, error) {
		var body api.ChatRequest
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body.ConversationID != "" {
			t.Errorf("conversation id should be empty after Clear, got %q", body.ConversationID)
		}
		return chatReply("conv-2", "Hello again."), nil
	})

	ctx := context.Background()
	_, err := s.Send(ctx, "Hi")
	require.NoError(t, err)

	s.Clear()
	assert.Empty(t, s.Messages())
	assert.Empty(t, s.ConversationID())
	assert.Empty(t, s.FollowUps())

	_, err = s.Send(ctx, "Hi")
	require.NoError(t, err)
}

func TestSuggestionsCached(t *testing.T) {
	var calls int
	s := newService(func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusOK, map[string]any{"data": models.SuggestionSet{
			Suggestions: []string{"Why did costs spike yesterday?"},
			BasedOn:     models.SuggestionBasis{HasCostWarning: true},
		}}), nil
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		set, err := s.Suggestions(ctx)
		require.NoError(t, err)
		require.Len(t, set.Suggestions, 1)
	}
	assert.Equal(t, 1, calls)
}
