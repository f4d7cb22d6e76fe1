package anomalies

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

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

func newService(t *testing.T, fn func(req *http.Request) (*http.Response, error)) *Service {
	t.Helper()
	c := api.New("http://api.test/api", "test-token")
	c.SetHTTPClient(&http.Client{Transport: &mockRoundTripper{fn: fn}})
	s := New(c, query.New(), Config{PollInterval: time.Hour})
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDetailWithoutIDSkipsNetwork(t *testing.T) {
	var calls atomic.Int64
	s := newService(t, func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, map[string]any{"data": models.Anomaly{}}), nil
	})

	anomaly, err := s.Detail(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, anomaly)
	assert.Zero(t, calls.Load())
}

func TestListCachedPerFilter(t *testing.T) {
	var calls atomic.Int64
	s := newService(t, func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, map[string]any{"data": []models.Anomaly{
			{ID: 1, Status: models.AnomalyOpen},
		}}), nil
	})

	ctx := context.Background()
	_, err := s.List(ctx, models.AnomalyFilter{})
	require.NoError(t, err)
	_, err = s.List(ctx, models.AnomalyFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load(), "same filter should be served from cache")

	_, err = s.List(ctx, models.AnomalyFilter{Severity: models.SeverityHigh})
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load(), "distinct filter is a distinct slot")
}

func TestAcknowledgeInvalidatesListAndStats(t *testing.T) {
	var listCalls, statsCalls atomic.Int64
	s := newService(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/api/monitoring/anomalies":
			listCalls.Add(1)
			return jsonResponse(http.StatusOK, map[string]any{"data": []models.Anomaly{
				{ID: 7, Status: models.AnomalyOpen},
			}}), nil
		case "/api/monitoring/anomalies/stats":
			statsCalls.Add(1)
			return jsonResponse(http.StatusOK, map[string]any{"data": models.AnomalyStats{Total: 1, Open: 1}}), nil
		case "/api/monitoring/anomalies/7/acknowledge":
			return jsonResponse(http.StatusOK, map[string]any{"data": models.Anomaly{
				ID: 7, Status: models.AnomalyAcknowledged,
			}}), nil
		default:
			t.Errorf("unexpected path %s", req.URL.Path)
			return jsonResponse(http.StatusNotFound, nil), nil
		}
	})

	ctx := context.Background()
	_, err := s.List(ctx, models.AnomalyFilter{})
	require.NoError(t, err)
	_, err = s.Stats(ctx)
	require.NoError(t, err)

	updated, err := s.Acknowledge(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.AnomalyAcknowledged, updated.Status)

	_, err = s.List(ctx, models.AnomalyFilter{})
	require.NoError(t, err)
	_, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), listCalls.Load(), "list slot should be refetched after transition")
	assert.Equal(t, int64(2), statsCalls.Load(), "stats slot should be refetched after transition")
}

func TestFailedTransitionLeavesCacheIntact(t *testing.T) {
	var listCalls atomic.Int64
	s := newService(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/api/monitoring/anomalies":
			listCalls.Add(1)
			return jsonResponse(http.StatusOK, map[string]any{"data": []models.Anomaly{
				{ID: 3, Status: models.AnomalyOpen},
			}}), nil
		case "/api/monitoring/anomalies/3/resolve":
			return jsonResponse(http.StatusConflict, map[string]any{
				"error": "anomaly must be acknowledged before resolution",
			}), nil
		default:
			return jsonResponse(http.StatusNotFound, nil), nil
		}
	})

	ctx := context.Background()
	_, err := s.List(ctx, models.AnomalyFilter{})
	require.NoError(t, err)

	_, err = s.Resolve(ctx, 3, "fixed")
	require.Error(t, err)

	_, err = s.List(ctx, models.AnomalyFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), listCalls.Load(), "failed transition must not invalidate")
}

func TestRulesNeverExpire(t *testing.T) {
	var calls atomic.Int64
	s := newService(t, func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, map[string]any{"data": []models.DetectionRule{
			{ID: "cost-spike", Name: "Cost spike"},
		}}), nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		rules, err := s.Rules(ctx)
		require.NoError(t, err)
		require.Len(t, rules, 1)
	}
	assert.Equal(t, int64(1), calls.Load())
}

func TestConcurrentRefreshIsSafe(t *testing.T) {
	// Refresh runs from the poll goroutine and from manager-driven
	// refreshes at once; the critical-anomaly seen set must survive
	// that. Every request serves a new critical ID so each pass
	// writes to the set.
	var seq atomic.Int64
	s := newService(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/api/monitoring/anomalies":
			id := seq.Add(1)
			return jsonResponse(http.StatusOK, map[string]any{"data": []models.Anomaly{
				{ID: id, Severity: models.SeverityCritical, Status: models.AnomalyOpen},
			}}), nil
		case "/api/monitoring/anomalies/stats":
			return jsonResponse(http.StatusOK, map[string]any{"data": models.AnomalyStats{Open: 1}}), nil
		default:
			return jsonResponse(http.StatusNotFound, nil), nil
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Refresh(context.Background())
		}()
	}
	wg.Wait()
}

func TestRunDetectionInvalidates(t *testing.T) {
	var statsCalls atomic.Int64
	s := newService(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/api/monitoring/anomalies/detect":
			return jsonResponse(http.StatusAccepted, map[string]any{"data": map[string]any{"started": true}}), nil
		case "/api/monitoring/anomalies/stats":
			statsCalls.Add(1)
			return jsonResponse(http.StatusOK, map[string]any{"data": models.AnomalyStats{}}), nil
		default:
			return jsonResponse(http.StatusNotFound, nil), nil
		}
	})

	ctx := context.Background()
	_, err := s.Stats(ctx)
	require.NoError(t, err)

	require.NoError(t, s.RunDetection(ctx))

	_, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), statsCalls.Load())

	select {
	case ev := <-s.Events():
		assert.Equal(t, EventDetectionStarted, ev.Type)
	default:
		t.Fatal("expected a detection event")
	}
}
