package infra

import (
	"strings"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/internal/app"
	"github.com/opsdeck/opsdeck/internal/models"
)

func sampleSnapshot() snapshot {
	return snapshot{
		health: &models.InfrastructureHealth{
			Overall: "degraded",
			Services: []models.ServiceHealth{
				{Name: "postgres", Status: "healthy", LatencyMs: 2.1},
				{Name: "redis", Status: "degraded", LatencyMs: 48.0},
			},
		},
		latency: &models.LatencyStats{P50: 20, P95: 120, P99: 400, Max: 900},
		errors: &models.ErrorStats{
			Total: 12,
			Rate:  0.4,
			ByEndpoint: []models.EndpointErrors{
				{Endpoint: "/api/ai-monitoring/usage/realtime", Count: 7},
			},
		},
		system: &models.SystemMetrics{
			CPUPercent:    35,
			MemoryPercent: 61,
			MemoryUsedMB:  512,
			UptimeSeconds: 90000,
		},
		slowQueries: []models.SlowQuery{
			{Query: "SELECT * FROM ai_usage_events WHERE ...", DurationMs: 1250, Calls: 3, LastSeen: time.Now()},
		},
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_ViewBeforeLoad(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(100, 40)
	if m.View() == "" {
		t.Error("View should render the loading spinner before data arrives")
	}
}

func TestModel_ViewWithSnapshot(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(100, 40)

	updated, _ := m.Update(snapshotLoadedMsg{snap: sampleSnapshot()})
	view := updated.View()

	for _, want := range []string{"postgres", "redis", "degraded", "Slow Queries"} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q", want)
		}
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{90000, "1d 1h"},
		{7320, "2h 2m"},
		{90, "1m"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.seconds); got != tt.want {
			t.Errorf("formatUptime(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
