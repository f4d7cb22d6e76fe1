// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/models"
)

// OpsDeck palette. Teal primary with a violet accent; status colors
// follow terminal conventions.
var (
	Primary   = lipgloss.Color("36")
	Secondary = lipgloss.Color("141")
	Subtle    = lipgloss.Color("240")

	Success = lipgloss.Color("42")
	Error   = lipgloss.Color("196")
	Warning = lipgloss.Color("220")
	Info    = lipgloss.Color("45")

	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")
)

// Headings and layout.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)
	SubTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Secondary).MarginBottom(1)
	ContentStyle  = lipgloss.NewStyle().Padding(1, 2)
)

// Navbar.
var (
	TabBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(Subtle)

	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(Primary).
			Padding(0, 2).
			MarginRight(1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(TextSecondary).
				Background(BgLight).
				Padding(0, 2).
				MarginRight(1)
)

// Cards and input focus.
var (
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Subtle).
			Padding(1, 2).
			MarginBottom(1)

	CardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)

	FocusedStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	BlurredStyle = lipgloss.NewStyle().Foreground(TextMuted)

	FocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Primary).
				Padding(0, 1)

	BlurredBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Subtle).
				Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)
)

// Toasts. Each severity tints both border and text.
var (
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)

	NotificationBaseStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1).
				Border(lipgloss.RoundedBorder())

	NotificationSuccessStyle = NotificationBaseStyle.BorderForeground(Success).Foreground(Success)
	NotificationErrorStyle   = NotificationBaseStyle.BorderForeground(Error).Foreground(Error)
	NotificationWarningStyle = NotificationBaseStyle.BorderForeground(Warning).Foreground(Warning)
	NotificationInfoStyle    = NotificationBaseStyle.BorderForeground(Info).Foreground(Info)
)

// Help overlay.
var (
	HelpStyle = lipgloss.NewStyle().Foreground(TextMuted)

	HelpPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Primary).
			Padding(1, 3).
			Background(BgDark)
)

// Lists and tables.
var (
	ListItemStyle = lipgloss.NewStyle().PaddingLeft(2)

	SelectedListItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(Primary).
				Bold(true).
				SetString("> ")

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(Subtle)

	TableCellStyle     = lipgloss.NewStyle().Padding(0, 1)
	TableSelectedStyle = lipgloss.NewStyle().Background(BgAccent).Foreground(TextPrimary).Bold(true)
)

// Inline text emphasis.
var (
	SubtleStyle      = lipgloss.NewStyle().Foreground(Subtle)
	HighlightStyle   = lipgloss.NewStyle().Foreground(Primary)
	ErrorTextStyle   = lipgloss.NewStyle().Foreground(Error)
	SuccessTextStyle = lipgloss.NewStyle().Foreground(Success)
	WarningTextStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoTextStyle    = lipgloss.NewStyle().Foreground(Info)
)

// Cost band indicators.
var (
	BandOKStyle       = lipgloss.NewStyle().Foreground(Success)
	BandWarningStyle  = lipgloss.NewStyle().Foreground(Warning).Bold(true)
	BandCriticalStyle = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// Anomaly severity and status indicators.
var (
	SeverityLowStyle      = lipgloss.NewStyle().Foreground(Info)
	SeverityMediumStyle   = lipgloss.NewStyle().Foreground(Warning)
	SeverityHighStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	SeverityCriticalStyle = lipgloss.NewStyle().Foreground(Error).Bold(true)

	StatusOpenStyle          = lipgloss.NewStyle().Foreground(Error)
	StatusAcknowledgedStyle  = lipgloss.NewStyle().Foreground(Warning)
	StatusResolvedStyle      = lipgloss.NewStyle().Foreground(Success)
	StatusFalsePositiveStyle = lipgloss.NewStyle().Foreground(Subtle)
)

// GetBandStyle returns the style matching a cost band.
func GetBandStyle(band models.CostBand) lipgloss.Style {
	switch band {
	case models.CostBandCritical:
		return BandCriticalStyle
	case models.CostBandWarning:
		return BandWarningStyle
	default:
		return BandOKStyle
	}
}

// GetSeverityStyle returns the style matching an anomaly severity.
func GetSeverityStyle(severity models.AnomalySeverity) lipgloss.Style {
	switch severity {
	case models.SeverityCritical:
		return SeverityCriticalStyle
	case models.SeverityHigh:
		return SeverityHighStyle
	case models.SeverityMedium:
		return SeverityMediumStyle
	default:
		return SeverityLowStyle
	}
}

// GetStatusStyle returns the style matching an anomaly status.
func GetStatusStyle(status models.AnomalyStatus) lipgloss.Style {
	switch status {
	case models.AnomalyOpen:
		return StatusOpenStyle
	case models.AnomalyAcknowledged:
		return StatusAcknowledgedStyle
	case models.AnomalyResolved:
		return StatusResolvedStyle
	default:
		return StatusFalsePositiveStyle
	}
}

// GetHealthStyle returns the style matching a component health string.
func GetHealthStyle(status string) lipgloss.Style {
	switch status {
	case "healthy", "up":
		return SuccessTextStyle
	case "degraded":
		return WarningTextStyle
	default:
		return ErrorTextStyle
	}
}

// CenterHorizontal centers content within the given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content within the given width and height.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
