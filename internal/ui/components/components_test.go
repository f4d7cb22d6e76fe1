package components

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/models"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.label != "Loading" {
		t.Error("Spinner label mismatch")
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Init")

	s.SetLabel("Loading")
	if s.Label() != "Loading" {
		t.Errorf("Label = %s, want Loading", s.Label())
	}

	if s.View() == "" {
		t.Error("View returned empty")
	}

	if s.ViewWithLabel() == "" {
		t.Error("ViewWithLabel returned empty")
	}

	if s.Init() == nil {
		t.Error("Init should return command")
	}

	m, cmd := s.Update(spinner.TickMsg{})
	_ = m
	if cmd == nil {
		t.Error("Update should return command for tick")
	}

	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 20, 5)
	if view == "" {
		t.Error("RenderSpinnerCentered returned empty")
	}
}

func TestRenderLineChart(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	s := RenderLineChart(data, 20, 5, "Test")
	if s == "" {
		t.Error("RenderLineChart returned empty")
	}
}

func TestRenderDualLineChart(t *testing.T) {
	calls := []float64{1, 2, 3}
	cost := []float64{3, 2, 1}
	s := RenderDualLineChart(calls, cost, 20, 5, "Title")
	if s == "" {
		t.Error("RenderDualLineChart returned empty")
	}
}

func TestRenderBarChart(t *testing.T) {
	values := []float64{10, 20}
	labels := []string{"A", "B"}
	s := RenderBarChart(values, labels, 20)
	if s == "" {
		t.Error("RenderBarChart returned empty")
	}
}

func TestRenderSparkline(t *testing.T) {
	data := []float64{1, 2, 3}
	s := RenderSparkline(data, 10)
	if s == "" {
		t.Error("RenderSparkline returned empty")
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "A", Color: lipgloss.Color("#ffffff")},
	}
	s := RenderLegend(items)
	if s == "" {
		t.Error("RenderLegend returned empty")
	}
}

func TestBandGaugeView(t *testing.T) {
	g := NewBandGauge(models.CostThresholds{Warning: 100, Critical: 150})

	view := g.View(50, 60)
	if view == "" {
		t.Error("View returned empty")
	}

	// Spend past the critical threshold must not overflow the bar.
	view = g.View(500, 60)
	if view == "" {
		t.Error("View returned empty for over-critical spend")
	}

	if g.ViewCompact(120) == "" {
		t.Error("ViewCompact returned empty")
	}
}

func TestBandGaugeZeroThresholds(t *testing.T) {
	g := NewBandGauge(models.CostThresholds{})
	if g.View(10, 40) == "" {
		t.Error("View returned empty for zero thresholds")
	}
}

func TestRenderGradientBar(t *testing.T) {
	if RenderGradientBar(50, 20) == "" {
		t.Error("RenderGradientBar returned empty")
	}
	if RenderGradientBar(150, 20) == "" {
		t.Error("RenderGradientBar should clamp, not fail")
	}
	if RenderGradientBar(50, 0) != "" {
		t.Error("RenderGradientBar with zero width should be empty")
	}
}

func TestSimpleMeter(t *testing.T) {
	for _, pct := range []float64{10, 75, 95} {
		if SimpleMeter(pct, "cpu", 40) == "" {
			t.Errorf("SimpleMeter(%v) returned empty", pct)
		}
	}
}
