package alerts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/ui/components"
	"github.com/opsdeck/opsdeck/internal/ui/styles"
)

// View renders the alerts tab.
func (m *Model) View() string {
	if m.loading && len(m.rules) == 0 && m.errorMsg == "" && !m.showHistory {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	if m.creating {
		return m.renderCreateForm()
	}
	if m.confirmDelete {
		return m.renderDeleteConfirm()
	}
	if m.showHistory {
		return m.renderHistory()
	}

	var sections []string
	sections = append(sections, m.renderTitle("Alert Rules", "Notification policies for detected anomalies"))
	sections = append(sections, m.table.View())

	if len(m.rules) == 0 && !m.loading {
		sections = append(sections, "")
		sections = append(sections, styles.SubtleStyle.Render("  No alert rules yet. Press n to create one."))
	}

	if m.errorMsg != "" {
		sections = append(sections, styles.ErrorTextStyle.Render("  "+m.errorMsg))
	}

	return styles.ContentStyle.
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle(title, subtitle string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render(title),
		styles.HelpStyle.Render(subtitle),
		"")
}

func (m *Model) renderHistory() string {
	var sections []string
	sections = append(sections, m.renderTitle("Alert History", "Recent notification deliveries"))

	if m.loading && len(m.history) == 0 {
		sections = append(sections, "  "+m.spinner.ViewWithLabel())
	} else if len(m.history) == 0 {
		sections = append(sections, styles.SubtleStyle.Render("  No deliveries recorded."))
	}

	for i, e := range m.history {
		if i >= max(m.height-8, 5) {
			break
		}
		sections = append(sections, m.renderHistoryEntry(e))
	}

	if m.errorMsg != "" {
		sections = append(sections, styles.ErrorTextStyle.Render("  "+m.errorMsg))
	}

	sections = append(sections, "")
	sections = append(sections, styles.SubtleStyle.Render("  esc or h to go back"))

	return styles.ContentStyle.
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHistoryEntry(e models.AlertHistoryEntry) string {
	var statusStyle lipgloss.Style
	switch e.Status {
	case models.AlertSent:
		statusStyle = styles.SuccessTextStyle
	case models.AlertFailed:
		statusStyle = styles.ErrorTextStyle
	default:
		statusStyle = styles.WarningTextStyle
	}

	line := fmt.Sprintf("  %s  %-7s  %-25s  %s → %s",
		e.SentAt.Format("01-02 15:04"),
		statusStyle.Render(string(e.Status)),
		truncate(e.RuleName, 25),
		e.Channel,
		e.Recipient)

	if e.Error != "" {
		line += "\n" + styles.ErrorTextStyle.Render("              "+truncate(e.Error, max(m.width-16, 20)))
	}
	return line
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

func (m *Model) renderCreateForm() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("New Alert Rule"))
	rows = append(rows, "")
	rows = append(rows, m.renderFormField(fieldName, "Name      ", m.nameInput.View()))
	rows = append(rows, m.renderFormField(fieldRecipients, "Recipients", m.recipientsInput.View()))
	rows = append(rows, m.renderFormField(fieldChannel, "Channel   ", string(m.channel)+" (←/→ to change)"))
	rows = append(rows, "")
	rows = append(rows, styles.SubtleStyle.Render("  New rules fire on HIGH and CRITICAL, throttled to one per hour."))
	rows = append(rows, "")

	submit := "  Create  "
	cancel := "  Cancel  "
	if m.focusedField == fieldSubmit {
		submit = styles.ActiveTabStyle.Render(submit)
	} else {
		submit = styles.InactiveTabStyle.Render(submit)
	}
	if m.focusedField == fieldCancel {
		cancel = styles.ActiveTabStyle.Render(cancel)
	} else {
		cancel = styles.InactiveTabStyle.Render(cancel)
	}
	rows = append(rows, "  "+submit+"  "+cancel)
	rows = append(rows, "")
	rows = append(rows, styles.SubtleStyle.Render("  tab to move, esc to cancel"))

	form := styles.FocusedBorderStyle.Render(strings.Join(rows, "\n"))
	return styles.CenterBoth(form, m.width, m.height)
}

func (m *Model) renderFormField(field formField, label, value string) string {
	marker := "  "
	labelStyle := styles.BlurredStyle
	if m.focusedField == field {
		marker = styles.FocusedStyle.Render("▸ ")
		labelStyle = styles.FocusedStyle
	}
	return fmt.Sprintf("%s%s  %s", marker, labelStyle.Render(label), value)
}

func (m *Model) renderDeleteConfirm() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Delete alert rule?"),
		"",
		fmt.Sprintf("  %s", m.deleteName),
		"",
		styles.SubtleStyle.Render("  y to delete, n to cancel"),
	)
	box := styles.FocusedBorderStyle.Render(content)
	return styles.CenterBoth(box, m.width, m.height)
}
