package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
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

func TestRulesCachedUntilMutation(t *testing.T) {
	var listCalls atomic.Int64
	s := newService(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.Method == http.MethodGet && req.URL.Path == "/api/monitoring/alerts/rules":
			listCalls.Add(1)
			return jsonResponse(http.StatusOK, map[string]any{"data": []models.AlertRule{
				{ID: 1, Name: "cost spikes", Channel: models.ChannelEmail},
			}}), nil
		case req.Method == http.MethodPost && req.URL.Path == "/api/monitoring/alerts/rules":
			return jsonResponse(http.StatusCreated, map[string]any{"data": models.AlertRule{
				ID: 2, Name: "latency", Channel: models.ChannelSlack,
			}}), nil
		default:
			t.Errorf("unexpected %s %s", req.Method, req.URL.Path)
			return jsonResponse(http.StatusNotFound, nil), nil
		}
	})

	ctx := context.Background()
	_, err := s.Rules(ctx)
	require.NoError(t, err)
	_, err = s.Rules(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), listCalls.Load(), "rule list has no expiry")

	created, err := s.Create(ctx, models.AlertRule{Name: "latency", Channel: models.ChannelSlack})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)

	_, err = s.Rules(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), listCalls.Load(), "create must invalidate the rule list")
}

func TestFailedUpdateKeepsRuleList(t *testing.T) {
	var listCalls atomic.Int64
	s := newService(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.Method == http.MethodGet:
			listCalls.Add(1)
			return jsonResponse(http.StatusOK, map[string]any{"data": []models.AlertRule{{ID: 1}}}), nil
		case req.Method == http.MethodPut:
			return jsonResponse(http.StatusBadRequest, map[string]any{"error": "recipients required"}), nil
		default:
			return jsonResponse(http.StatusNotFound, nil), nil
		}
	})

	ctx := context.Background()
	_, err := s.Rules(ctx)
	require.NoError(t, err)

	_, err = s.Update(ctx, models.AlertRule{ID: 1})
	require.Error(t, err)

	_, err = s.Rules(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), listCalls.Load(), "failed mutation must not invalidate")
}

func TestDeleteInvalidatesRuleList(t *testing.T) {
	var listCalls atomic.Int64
	s := newService(func(req *http.Request) (*http.Response, error) {
		switch req.Method {
		case http.MethodGet:
			listCalls.Add(1)
			return jsonResponse(http.StatusOK, map[string]any{"data": []models.AlertRule{}}), nil
		case http.MethodDelete:
			return jsonResponse(http.StatusNoContent, nil), nil
		default:
			return jsonResponse(http.StatusNotFound, nil), nil
		}
	})

	ctx := context.Background()
	_, err := s.Rules(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, 1))

	_, err = s.Rules(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), listCalls.Load())
}

func TestTestRuleInvalidatesHistoryOnly(t *testing.T) {
	var historyCalls, listCalls atomic.Int64
	s := newService(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/api/monitoring/alerts/rules/5/test":
			return jsonResponse(http.StatusOK, map[string]any{"data": map[string]any{"delivered": true}}), nil
		case req.URL.Path == "/api/monitoring/alerts/history":
			historyCalls.Add(1)
			return jsonResponse(http.StatusOK, map[string]any{"data": []models.AlertHistoryEntry{
				{ID: 9, RuleID: 5, Status: models.AlertSent},
			}}), nil
		case req.URL.Path == "/api/monitoring/alerts/rules":
			listCalls.Add(1)
			return jsonResponse(http.StatusOK, map[string]any{"data": []models.AlertRule{}}), nil
		default:
			return jsonResponse(http.StatusNotFound, nil), nil
		}
	})

	ctx := context.Background()
	_, err := s.Rules(ctx)
	require.NoError(t, err)
	_, err = s.History(ctx, models.AlertHistoryFilter{RuleID: 5})
	require.NoError(t, err)

	require.NoError(t, s.Test(ctx, 5))

	_, err = s.History(ctx, models.AlertHistoryFilter{RuleID: 5})
	require.NoError(t, err)
	_, err = s.Rules(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), historyCalls.Load(), "test delivery should refresh history")
	assert.Equal(t, int64(1), listCalls.Load(), "test delivery must not touch the rule list")
}
