package anomalies

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/ui/components"
	"github.com/opsdeck/opsdeck/internal/ui/styles"
)

// View renders the anomalies tab.
func (m *Model) View() string {
	if m.loading && len(m.anomalies) == 0 && m.errorMsg == "" {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	if m.resolving {
		return m.renderResolveForm()
	}

	if m.detail != nil {
		return m.renderDetail()
	}

	var sections []string
	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderStats())
	sections = append(sections, m.renderFilterLine())
	sections = append(sections, m.table.View())

	if m.errorMsg != "" {
		sections = append(sections, styles.ErrorTextStyle.Render("  "+m.errorMsg))
	}

	return styles.ContentStyle.
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Anomalies")
	subtitle := styles.HelpStyle.Render("Detected metric deviations and their triage state")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderStats() string {
	stats := m.state.GetAnomalyStats()
	if stats == nil {
		return ""
	}

	parts := []string{
		fmt.Sprintf("total %d", stats.Total),
		styles.StatusOpenStyle.Render(fmt.Sprintf("open %d", stats.Open)),
	}

	for _, sev := range []models.AnomalySeverity{
		models.SeverityCritical, models.SeverityHigh,
		models.SeverityMedium, models.SeverityLow,
	} {
		if n := stats.BySeverity[sev]; n > 0 {
			parts = append(parts, styles.GetSeverityStyle(sev).Render(fmt.Sprintf("%s %d", sev, n)))
		}
	}

	if stats.LastRunAt != nil {
		parts = append(parts, styles.SubtleStyle.Render(
			"last run "+stats.LastRunAt.Format("15:04:05")))
	}

	line := "  "
	for i, p := range parts {
		if i > 0 {
			line += styles.SubtleStyle.Render("  │  ")
		}
		line += p
	}
	return line + "\n"
}

func (m *Model) renderFilterLine() string {
	severity := "all"
	if m.filter.Severity != "" {
		severity = string(m.filter.Severity)
	}
	status := "all"
	if m.filter.Status != "" {
		status = string(m.filter.Status)
	}

	line := fmt.Sprintf("  severity: %s   status: %s",
		styles.HighlightStyle.Render(severity),
		styles.HighlightStyle.Render(status))

	if m.detecting {
		line += "   " + m.spinner.View() + styles.SubtleStyle.Render(" detecting...")
	}
	return line + "\n"
}

func (m *Model) renderDetail() string {
	a := m.detail
	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, fmt.Sprintf("%s  %s  %s",
		styles.CardTitleStyle.Render(fmt.Sprintf("Anomaly #%d", a.ID)),
		styles.GetSeverityStyle(a.Severity).Render(string(a.Severity)),
		styles.GetStatusStyle(a.Status).Render(string(a.Status))))
	rows = append(rows, "")
	rows = append(rows, "  "+a.Description)
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  Type       %s", a.Type))
	rows = append(rows, fmt.Sprintf("  Category   %s", a.Category))
	if a.TenantID != 0 {
		rows = append(rows, fmt.Sprintf("  Tenant     %d", a.TenantID))
	}
	rows = append(rows, fmt.Sprintf("  Observed   %.2f (expected %.2f, deviation %+.1f%%)",
		a.CurrentValue, a.ExpectedValue, a.Deviation))
	rows = append(rows, fmt.Sprintf("  Detected   %s", a.DetectedAt.Format(time.RFC1123)))

	if a.AcknowledgedAt != nil {
		rows = append(rows, fmt.Sprintf("  Acked      %s by %s",
			a.AcknowledgedAt.Format(time.RFC1123), a.AcknowledgedBy))
	}
	if a.ResolvedAt != nil {
		rows = append(rows, fmt.Sprintf("  Resolved   %s by %s",
			a.ResolvedAt.Format(time.RFC1123), a.ResolvedBy))
		if a.Resolution != "" {
			rows = append(rows, fmt.Sprintf("  Resolution %s", a.Resolution))
		}
	}

	rows = append(rows, "")
	rows = append(rows, m.renderDetailActions(a))

	card := styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	return styles.ContentStyle.
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), card))
}

func (m *Model) renderDetailActions(a *models.Anomaly) string {
	var actions []string
	if a.Status.CanAcknowledge() {
		actions = append(actions, "[a] acknowledge")
	}
	if a.Status.CanResolve() {
		actions = append(actions, "[x] resolve")
	}
	if a.Status.CanMarkFalsePositive() {
		actions = append(actions, "[f] false positive")
	}
	actions = append(actions, "[esc] back")

	line := "  "
	for i, action := range actions {
		if i > 0 {
			line += "   "
		}
		line += styles.InfoTextStyle.Render(action)
	}
	return line
}

func (m *Model) renderResolveForm() string {
	target := m.targetAnomaly()
	title := "Resolve anomaly"
	if target != nil {
		title = fmt.Sprintf("Resolve anomaly #%d", target.ID)
	}

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render(title))
	rows = append(rows, "")
	rows = append(rows, "  "+m.resolutionInput.View())
	rows = append(rows, "")
	rows = append(rows, styles.SubtleStyle.Render("  enter to submit, esc to cancel"))

	form := styles.FocusedBorderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterBoth(form, m.width, m.height)
}
