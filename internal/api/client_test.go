package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/opsdeck/opsdeck/internal/models"
)

// MockRoundTripper implements http.RoundTripper for testing
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

func jsonResponse(status int, body any) *http.Response {
	data, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
	}
}

func newTestClient(fn func(req *http.Request) (*http.Response, error)) *Client {
	c := New("http://api.test/api", "test-token")
	c.SetHTTPClient(&http.Client{Transport: &MockRoundTripper{RoundTripFunc: fn}})
	return c
}

func TestUsageSummaryEnvelope(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/ai-monitoring/usage/summary" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		if got := req.URL.Query().Get("period"); got != "week" {
			t.Errorf("period = %q, want week", got)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"data": models.UsageSummary{
				Period:     models.PeriodWeek,
				TotalCalls: 1234,
				TotalCost:  56.78,
			},
		}), nil
	})

	summary, err := c.UsageSummary(context.Background(), models.PeriodWeek)
	if err != nil {
		t.Fatalf("UsageSummary failed: %v", err)
	}
	if summary.TotalCalls != 1234 {
		t.Errorf("TotalCalls = %d, want 1234", summary.TotalCalls)
	}
	if summary.TotalCost != 56.78 {
		t.Errorf("TotalCost = %v, want 56.78", summary.TotalCost)
	}
}

func TestTenantHeader(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("X-Tenant-ID"); got != "42" {
			t.Errorf("X-Tenant-ID = %q, want 42", got)
		}
		return jsonResponse(http.StatusOK, map[string]any{"data": models.RealtimeUsageStats{}}), nil
	})
	c.SetTenant(42)

	if _, err := c.RealtimeUsage(context.Background()); err != nil {
		t.Fatalf("RealtimeUsage failed: %v", err)
	}
}

func TestConcurrentScopeRewrite(t *testing.T) {
	// Tenant switches rewrite token and scope while pollers keep
	// issuing requests; both sides must be safe to run at once.
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{"data": models.RealtimeUsageStats{}}), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.SetToken(fmt.Sprintf("token-%d-%d", n, j))
				c.SetTenant(int64(n*100 + j))
			}
		}(i)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := c.RealtimeUsage(context.Background()); err != nil {
					t.Errorf("RealtimeUsage failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestErrorMapping(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusConflict, map[string]any{
			"message": "anomaly is not in ACKNOWLEDGED state",
		}), nil
	})

	_, err := c.ResolveAnomaly(context.Background(), 7, "fixed")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %T", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d, want 409", apiErr.StatusCode)
	}
	if apiErr.Message != "anomaly is not in ACKNOWLEDGED state" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestResolveAnomalyBody(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", req.Method)
		}
		if req.URL.Path != "/api/monitoring/anomalies/7/resolve" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		body, _ := io.ReadAll(req.Body)
		var payload resolveRequest
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		if payload.Resolution != "scaled the worker pool" {
			t.Errorf("resolution = %q", payload.Resolution)
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"data": models.Anomaly{ID: 7, Status: models.AnomalyResolved},
		}), nil
	})

	anomaly, err := c.ResolveAnomaly(context.Background(), 7, "scaled the worker pool")
	if err != nil {
		t.Fatalf("ResolveAnomaly failed: %v", err)
	}
	if anomaly.Status != models.AnomalyResolved {
		t.Errorf("Status = %s, want RESOLVED", anomaly.Status)
	}
}

func TestAlertHistoryFilters(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("ruleId") != "3" || q.Get("status") != "FAILED" || q.Get("limit") != "25" {
			t.Errorf("unexpected query %s", req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"data": []models.AlertHistoryEntry{{ID: 1, RuleID: 3, Status: models.AlertFailed}},
		}), nil
	})

	entries, err := c.AlertHistory(context.Background(), models.AlertHistoryFilter{
		RuleID: 3,
		Status: models.AlertFailed,
		Limit:  25,
	})
	if err != nil {
		t.Fatalf("AlertHistory failed: %v", err)
	}
	if len(entries) != 1 || entries[0].RuleID != 3 {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestChatThreadsConversationID(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		var payload ChatRequest
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("invalid chat body: %v", err)
		}
		if payload.ConversationID != "conv-1" {
			t.Errorf("conversationId = %q, want conv-1", payload.ConversationID)
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"data": ChatResponse{
				ConversationID:     "conv-1",
				Message:            models.AssistantMessage{Role: models.RoleAssistant, Content: "reply"},
				SuggestedFollowUps: []string{"Show cost trends"},
			},
		}), nil
	})

	resp, err := c.Chat(context.Background(), ChatRequest{Message: "follow up", ConversationID: "conv-1"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.ConversationID != "conv-1" {
		t.Errorf("ConversationID = %q", resp.ConversationID)
	}
	if len(resp.SuggestedFollowUps) != 1 {
		t.Errorf("SuggestedFollowUps = %v", resp.SuggestedFollowUps)
	}
}

func TestRunDetectionNoContent(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/monitoring/anomalies/detect" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		return &http.Response{StatusCode: http.StatusAccepted, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	})

	if err := c.RunDetection(context.Background()); err != nil {
		t.Fatalf("RunDetection failed: %v", err)
	}
}
