package assistant

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/ui/styles"
)

// View renders the assistant tab.
func (m *Model) View() string {
	var sections []string
	sections = append(sections, m.renderTitle())
	sections = append(sections, m.viewport.View())
	sections = append(sections, m.renderInputLine())

	return styles.ContentStyle.
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Assistant")
	subtitle := styles.HelpStyle.Render("Ask about your usage, spend and anomalies")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderTranscript fills the viewport from the conversation thread.
func (m *Model) renderTranscript() {
	var messages []models.AssistantMessage
	var followUps []string
	if m.services != nil {
		messages = m.services.Assistant().Messages()
		followUps = m.services.Assistant().FollowUps()
	}

	if len(messages) == 0 {
		m.viewport.SetContent(m.renderEmptyState())
		return
	}

	wrapWidth := max(m.width-12, 20)
	var lines []string
	for _, msg := range messages {
		lines = append(lines, m.renderMessage(msg, wrapWidth)...)
		lines = append(lines, "")
	}

	if m.pending {
		lines = append(lines, "  "+m.spinner.ViewWithLabel())
	} else if len(followUps) > 0 {
		lines = append(lines, styles.SubtleStyle.Render("  Follow-ups:"))
		for _, f := range followUps {
			lines = append(lines, styles.InfoTextStyle.Render("  · "+f))
		}
	}

	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) renderMessage(msg models.AssistantMessage, wrapWidth int) []string {
	var header string
	bodyStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)

	switch {
	case msg.Role == models.RoleUser:
		header = styles.HighlightStyle.Render("You")
	case msg.Fallback:
		header = styles.ErrorTextStyle.Render("Assistant (offline)")
		bodyStyle = styles.ErrorTextStyle
	default:
		header = styles.SuccessTextStyle.Render("Assistant")
	}

	timestamp := styles.SubtleStyle.Render(msg.Timestamp.Format("15:04:05"))
	lines := []string{fmt.Sprintf("  %s  %s", header, timestamp)}

	wrapped := lipgloss.NewStyle().Width(wrapWidth).Render(msg.Content)
	for _, line := range strings.Split(wrapped, "\n") {
		lines = append(lines, "  "+bodyStyle.Render(line))
	}

	if msg.TokensUsed > 0 {
		lines = append(lines, styles.SubtleStyle.Render(
			fmt.Sprintf("  %d tokens · %d ms", msg.TokensUsed, msg.LatencyMs)))
	}
	return lines
}

func (m *Model) renderEmptyState() string {
	var lines []string
	lines = append(lines, "")
	lines = append(lines, styles.SubtleStyle.Render("  Start a conversation, or try one of these:"))
	lines = append(lines, "")

	if m.suggestions != nil {
		for _, s := range m.suggestions.Suggestions {
			lines = append(lines, styles.InfoTextStyle.Render("  · "+s))
		}
	} else {
		lines = append(lines, styles.InfoTextStyle.Render("  · How is my spend trending this week?"))
		lines = append(lines, styles.InfoTextStyle.Render("  · Any open critical anomalies?"))
		lines = append(lines, styles.InfoTextStyle.Render("  · Which tool costs the most?"))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderInputLine() string {
	prompt := styles.FocusedStyle.Render("❯")
	if m.pending {
		prompt = m.spinner.View()
	}
	box := styles.FocusedBorderStyle.
		Width(max(m.width-4, 24)).
		Render(fmt.Sprintf("%s %s", prompt, m.input.View()))

	hint := styles.SubtleStyle.Render("  enter to send · ctrl+l to clear · tab to leave")
	return lipgloss.JoinVertical(lipgloss.Left, box, hint)
}
