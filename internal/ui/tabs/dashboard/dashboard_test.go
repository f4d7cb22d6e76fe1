package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/internal/app"
	"github.com/opsdeck/opsdeck/internal/models"
)

func TestNew(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_View(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	m := New(state, nil)
	m.SetSize(100, 40)

	view := m.View()
	if view == "" {
		t.Error("View returned empty string")
	}

	state.SetRealtime(&models.RealtimeUsageStats{
		Last5Minutes: models.WindowCounters{Calls: 12, Tokens: 3400, Cost: 0.42},
		ActiveTools:  []models.ActiveTool{{Tool: "crm-summarizer", Calls: 8}},
	})
	state.SetSummary(&models.UsageSummary{
		Period:      models.PeriodDay,
		TotalCalls:  240,
		TotalCost:   12.5,
		SuccessRate: 99.1,
		TopTools:    []models.ToolUsage{{Tool: "crm-summarizer", Calls: 120}},
	})
	state.SetCost(&models.GlobalCost{CurrentSpend: 80, Projected: 120, TenantCount: 4}, models.CostBandOK)

	view = m.View()
	if !strings.Contains(view, "crm-summarizer") {
		t.Error("View should contain the active tool name")
	}
	if !strings.Contains(view, "Spend") {
		t.Error("View should contain the spend card")
	}
}

func TestModel_TrendsLoaded(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	m := New(state, nil)
	m.SetSize(100, 40)

	points := []models.UsageTrendPoint{
		{Date: time.Now().AddDate(0, 0, -1), Calls: 10, Cost: 1.5},
		{Date: time.Now(), Calls: 20, Cost: 2.5},
	}
	updated, _ := m.Update(trendsLoadedMsg{trends: points})
	view := updated.View()
	if !strings.Contains(view, "Usage Trend") {
		t.Error("View should contain the trend card")
	}
}

func TestModel_SetSize(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(100, 50)
	if m.width != 100 || m.height != 50 {
		t.Error("SetSize did not record dimensions")
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
