package infra

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/ui/components"
	"github.com/opsdeck/opsdeck/internal/ui/styles"
)

// View renders the infra tab.
func (m *Model) View() string {
	if !m.loaded {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var sections []string
	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderHealthCard())
	sections = append(sections, m.renderMetricsRow())
	sections = append(sections, m.renderSlowQueriesCard())

	if m.snap.err != nil {
		sections = append(sections, styles.ErrorTextStyle.Render("  "+m.snap.err.Error()))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.ContentStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Infrastructure")
	subtitle := styles.HelpStyle.Render("Backing services, latency and server health")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderHealthCard() string {
	cardWidth := max(m.width-6, 40)

	var rows []string
	overall := "unknown"
	if m.snap.health != nil {
		overall = m.snap.health.Overall
	}
	rows = append(rows, fmt.Sprintf("%s  %s",
		styles.CardTitleStyle.Render("Services"),
		styles.GetHealthStyle(overall).Render(overall)))
	rows = append(rows, "")

	if m.snap.health == nil || len(m.snap.health.Services) == 0 {
		rows = append(rows, styles.SubtleStyle.Render("  no health data"))
	}
	if m.snap.health != nil {
		for _, svc := range m.snap.health.Services {
			marker := styles.GetHealthStyle(svc.Status).Render("●")
			rows = append(rows, fmt.Sprintf("  %s %-20s %-10s %6.0f ms",
				marker, svc.Name, svc.Status, svc.LatencyMs))
		}
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderMetricsRow() string {
	halfWidth := max(m.width/2-4, 30)

	left := m.renderLatencyCard(halfWidth)
	right := m.renderSystemCard(halfWidth)

	if m.width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *Model) renderLatencyCard(width int) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Requests"))
	rows = append(rows, "")

	if m.snap.latency != nil {
		l := m.snap.latency
		rows = append(rows, fmt.Sprintf("  p50   %7.1f ms", l.P50))
		rows = append(rows, fmt.Sprintf("  p95   %7.1f ms", l.P95))
		rows = append(rows, fmt.Sprintf("  p99   %7.1f ms", l.P99))
		rows = append(rows, fmt.Sprintf("  max   %7.1f ms", l.Max))
	} else {
		rows = append(rows, styles.SubtleStyle.Render("  no latency data"))
	}

	if m.snap.errors != nil {
		e := m.snap.errors
		rows = append(rows, "")
		rateStyle := styles.SuccessTextStyle
		if e.Rate >= 1 {
			rateStyle = styles.WarningTextStyle
		}
		if e.Rate >= 5 {
			rateStyle = styles.ErrorTextStyle
		}
		rows = append(rows, fmt.Sprintf("  Errors  %d (%s)",
			e.Total, rateStyle.Render(fmt.Sprintf("%.2f%%", e.Rate))))
		for i, ep := range e.ByEndpoint {
			if i >= 3 {
				break
			}
			rows = append(rows, fmt.Sprintf("    %-28s %d", truncate(ep.Endpoint, 28), ep.Count))
		}
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderSystemCard(width int) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Server"))
	rows = append(rows, "")

	if m.snap.system == nil {
		rows = append(rows, styles.SubtleStyle.Render("  no system data"))
		return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	s := m.snap.system
	meterWidth := max(width-8, 20)
	rows = append(rows, "  "+components.SimpleMeter(s.CPUPercent, "cpu", meterWidth))
	rows = append(rows, "  "+components.SimpleMeter(s.MemoryPercent, "mem", meterWidth))
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  Memory     %.0f MB", s.MemoryUsedMB))
	rows = append(rows, fmt.Sprintf("  Uptime     %s", formatUptime(s.UptimeSeconds)))
	if s.Goroutines > 0 {
		rows = append(rows, fmt.Sprintf("  Goroutines %d", s.Goroutines))
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderSlowQueriesCard() string {
	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Slow Queries"))
	rows = append(rows, "")

	if len(m.snap.slowQueries) == 0 {
		rows = append(rows, styles.SuccessTextStyle.Render("  none above threshold"))
	}
	for _, q := range m.snap.slowQueries {
		durStyle := styles.WarningTextStyle
		if q.DurationMs >= 1000 {
			durStyle = styles.ErrorTextStyle
		}
		rows = append(rows, fmt.Sprintf("  %s  ×%-4d %s",
			durStyle.Render(fmt.Sprintf("%7.1f ms", q.DurationMs)),
			q.Calls,
			styles.SubtleStyle.Render(truncate(q.Query, max(cardWidth-24, 20)))))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatUptime(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if limit <= 3 {
		return s[:limit]
	}
	return s[:limit-3] + "..."
}
