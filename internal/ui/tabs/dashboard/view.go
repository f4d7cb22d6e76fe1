package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/ui/components"
	"github.com/opsdeck/opsdeck/internal/ui/styles"
)

// View renders the dashboard tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var sections []string
	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderTopRow())
	sections = append(sections, m.renderCostCard())
	sections = append(sections, m.renderTrendCard())

	if m.errorMsg != "" {
		sections = append(sections, styles.ErrorTextStyle.Render("  "+m.errorMsg))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.ContentStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Operations Dashboard")

	period := models.PeriodDay
	if m.services != nil {
		period = m.services.Monitor().Period()
	}
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("AI usage and spend · period: %s", period))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTopRow() string {
	halfWidth := max(m.width/2-4, 30)

	realtime := m.renderRealtimeCard(halfWidth)
	summary := m.renderSummaryCard(halfWidth)

	if m.width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left, realtime, summary)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, realtime, summary)
}

func (m *Model) renderRealtimeCard(width int) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Live Activity"))
	rows = append(rows, "")

	rt := m.state.GetRealtime()
	if rt == nil {
		rows = append(rows, styles.SubtleStyle.Render("  waiting for data..."))
		return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, renderWindowRow("Last 5 min", rt.Last5Minutes))
	rows = append(rows, renderWindowRow("Last hour ", rt.Last1Hour))
	rows = append(rows, renderWindowRow("Today     ", rt.Today))

	if len(rt.ActiveTools) > 0 {
		rows = append(rows, "")
		rows = append(rows, styles.HighlightStyle.Render("  Active tools"))
		for i, tool := range rt.ActiveTools {
			if i >= 5 {
				break
			}
			rows = append(rows, fmt.Sprintf("  %s %s",
				styles.SuccessTextStyle.Render("●"),
				fmt.Sprintf("%-20s %d calls", tool.Tool, tool.Calls)))
		}
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderWindowRow(label string, w models.WindowCounters) string {
	return fmt.Sprintf("  %s  %s",
		styles.SubtleStyle.Render(label),
		fmt.Sprintf("%6d calls  %8d tok  $%8.2f", w.Calls, w.Tokens, w.Cost))
}

func (m *Model) renderSummaryCard(width int) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Period Summary"))
	rows = append(rows, "")

	summary := m.state.GetSummary()
	if summary == nil {
		rows = append(rows, styles.SubtleStyle.Render("  waiting for data..."))
		return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, fmt.Sprintf("  Calls        %d", summary.TotalCalls))
	rows = append(rows, fmt.Sprintf("  Tokens       %d", summary.TotalTokens))
	rows = append(rows, fmt.Sprintf("  Cost         $%.2f", summary.TotalCost))
	rows = append(rows, fmt.Sprintf("  Avg latency  %.0f ms", summary.AvgLatencyMs))

	successStyle := styles.SuccessTextStyle
	if summary.SuccessRate < 95 {
		successStyle = styles.WarningTextStyle
	}
	if summary.SuccessRate < 90 {
		successStyle = styles.ErrorTextStyle
	}
	rows = append(rows, fmt.Sprintf("  Success      %s", successStyle.Render(fmt.Sprintf("%.1f%%", summary.SuccessRate))))

	if len(summary.TopTools) > 0 {
		rows = append(rows, "")
		rows = append(rows, styles.HighlightStyle.Render("  Top tools"))

		values := make([]float64, 0, len(summary.TopTools))
		labels := make([]string, 0, len(summary.TopTools))
		for i, tool := range summary.TopTools {
			if i >= 5 {
				break
			}
			values = append(values, float64(tool.Calls))
			labels = append(labels, tool.Tool)
		}
		rows = append(rows, components.RenderBarChart(values, labels, width-6))
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderCostCard() string {
	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Spend"))
	rows = append(rows, "")

	global, band := m.state.GetCost()
	if global == nil {
		rows = append(rows, styles.SubtleStyle.Render("  waiting for data..."))
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	thresholds := models.CostThresholds{}
	if m.services != nil {
		thresholds = m.services.Monitor().Thresholds()
	}
	gauge := components.NewBandGauge(thresholds)
	rows = append(rows, "  "+gauge.View(global.CurrentSpend, cardWidth-6))
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  Projected    $%.2f", global.Projected))
	rows = append(rows, fmt.Sprintf("  Tenants      %d", global.TenantCount))

	if band == models.CostBandCritical {
		rows = append(rows, "")
		rows = append(rows, styles.ErrorTextStyle.Render("  ▲ Spend is over the critical threshold"))
	}

	if m.breakdown != nil && len(m.breakdown.ByTool) > 0 {
		rows = append(rows, "")
		rows = append(rows, styles.HighlightStyle.Render("  By tool"))
		for i, slice := range m.breakdown.ByTool {
			if i >= 5 {
				break
			}
			rows = append(rows, fmt.Sprintf("  %-20s $%8.2f  %5.1f%%", slice.Name, slice.Cost, slice.Percent))
		}
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderTrendCard() string {
	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Usage Trend"))
	rows = append(rows, "")

	switch {
	case m.loading && len(m.trends) == 0:
		rows = append(rows, "  "+m.spinner.ViewWithLabel())
	case len(m.trends) == 0:
		rows = append(rows, styles.SubtleStyle.Render("  no trend data"))
	default:
		calls := make([]float64, 0, len(m.trends))
		cost := make([]float64, 0, len(m.trends))
		for _, p := range m.trends {
			calls = append(calls, float64(p.Calls))
			cost = append(cost, p.Cost)
		}
		rows = append(rows, components.RenderDualLineChart(calls, cost, cardWidth-10, 8, "calls vs cost"))
		rows = append(rows, "")
		rows = append(rows, "  "+components.RenderLegend([]components.LegendItem{
			{Label: "calls", Color: lipgloss.Color("12")},
			{Label: "cost", Color: lipgloss.Color("11")},
		}))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
