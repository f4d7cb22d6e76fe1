package anomalies

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/app"
	"github.com/opsdeck/opsdeck/internal/models"
)

func sampleAnomalies() []models.Anomaly {
	return []models.Anomaly{
		{
			ID:          1,
			Category:    "COST",
			Severity:    models.SeverityCritical,
			Status:      models.AnomalyOpen,
			Description: "Spend spike on gpt-4o",
			DetectedAt:  time.Now(),
		},
		{
			ID:          2,
			Category:    "LATENCY",
			Severity:    models.SeverityMedium,
			Status:      models.AnomalyAcknowledged,
			Description: "p95 latency above baseline",
			DetectedAt:  time.Now(),
		},
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_ListView(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(120, 40)

	updated, _ := m.Update(anomaliesLoadedMsg{anomalies: sampleAnomalies()})
	view := updated.View()
	if !strings.Contains(view, "Spend spike on gpt-4o") {
		t.Error("View should list the anomaly description")
	}
	if !strings.Contains(view, "CRITICAL") {
		t.Error("View should show the severity")
	}
}

func TestModel_DetailView(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(120, 40)
	m.Update(anomaliesLoadedMsg{anomalies: sampleAnomalies()})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view := updated.View()
	if !strings.Contains(view, "Anomaly #1") {
		t.Error("Enter should open the detail view for the selected anomaly")
	}

	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEsc})
	view = updated.View()
	if strings.Contains(view, "Anomaly #1") && !strings.Contains(view, "p95 latency") {
		t.Error("Esc should return to the list")
	}
}

func TestModel_IllegalTransitionWarns(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(120, 40)
	m.Update(anomaliesLoadedMsg{anomalies: sampleAnomalies()})

	// Second row is ACKNOWLEDGED; acknowledging again is illegal.
	m.table.SetCursor(1)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if cmd == nil {
		t.Fatal("expected a notification command")
	}
	msg := cmd()
	notif, ok := msg.(app.AddNotificationMsg)
	if !ok {
		t.Fatalf("expected AddNotificationMsg, got %T", msg)
	}
	if notif.Type != app.NotificationWarning {
		t.Errorf("notification type = %v, want warning", notif.Type)
	}
}

func TestModel_ResolveRequiresAcknowledged(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(120, 40)
	m.Update(anomaliesLoadedMsg{anomalies: sampleAnomalies()})

	// First row is OPEN; resolving it directly must warn, not open the form.
	m.table.SetCursor(0)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.resolving {
		t.Error("resolve form should not open for an OPEN anomaly")
	}
	if cmd == nil {
		t.Fatal("expected a warning command")
	}

	// The ACKNOWLEDGED row opens the form.
	m.table.SetCursor(1)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if !m.resolving {
		t.Error("resolve form should open for an ACKNOWLEDGED anomaly")
	}

	view := m.View()
	if !strings.Contains(view, "Resolve anomaly #2") {
		t.Error("resolve form should name the target anomaly")
	}
}

func TestModel_TransitionClosesDetail(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(120, 40)
	m.Update(anomaliesLoadedMsg{anomalies: sampleAnomalies()})

	m.table.SetCursor(0)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.detail == nil {
		t.Fatal("Enter should open the detail view")
	}

	acked := sampleAnomalies()[0]
	acked.Status = models.AnomalyAcknowledged
	m.Update(transitionResultMsg{anomaly: &acked, action: "acknowledge"})
	if m.detail != nil {
		t.Error("a successful transition should close the detail view")
	}
	if !strings.Contains(m.View(), "p95 latency") {
		t.Error("View should be back on the list after the transition")
	}
}

func TestModel_FailedTransitionKeepsDetail(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(120, 40)
	m.Update(anomaliesLoadedMsg{anomalies: sampleAnomalies()})

	m.table.SetCursor(0)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(transitionResultMsg{action: "acknowledge", err: errTransition})
	if m.detail == nil {
		t.Error("a failed transition should leave the detail view open")
	}
}

var errTransition = errors.New("anomaly already acknowledged")

func TestModel_FilterCycles(t *testing.T) {
	m := New(app.NewState(), nil)

	if next := nextSeverity(""); next != models.SeverityLow {
		t.Errorf("nextSeverity(all) = %v", next)
	}
	if next := nextSeverity(models.SeverityCritical); next != "" {
		t.Errorf("nextSeverity(CRITICAL) should wrap to all, got %v", next)
	}
	if next := nextStatus(models.AnomalyFalsePositive); next != "" {
		t.Errorf("nextStatus(FALSE_POSITIVE) should wrap to all, got %v", next)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if m.filter.Severity != models.SeverityLow {
		t.Errorf("filter severity = %v after one cycle", m.filter.Severity)
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
