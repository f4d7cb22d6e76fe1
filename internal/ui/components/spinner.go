package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/ui/styles"
)

// LoadingSpinner pairs a bubbles spinner with a short activity label,
// e.g. "Loading anomalies...".
type LoadingSpinner struct {
	inner      spinner.Model
	label      string
	labelStyle lipgloss.Style
}

// NewSpinner returns a dot spinner labelled with the given text.
func NewSpinner(label string) LoadingSpinner {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
	)
	return LoadingSpinner{
		inner:      sp,
		label:      label,
		labelStyle: lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

func (l LoadingSpinner) Init() tea.Cmd {
	return l.inner.Tick
}

// Update advances the animation on spinner tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	next, cmd := l.inner.Update(msg)
	l.inner = next
	return l, cmd
}

// View renders the animated glyph alone.
func (l LoadingSpinner) View() string {
	return l.inner.View()
}

// ViewWithLabel renders the glyph followed by the activity label.
func (l LoadingSpinner) ViewWithLabel() string {
	return l.inner.View() + " " + l.labelStyle.Render(l.label)
}

// SetLabel replaces the activity label.
func (l *LoadingSpinner) SetLabel(label string) {
	l.label = label
}

// Label returns the current activity label.
func (l LoadingSpinner) Label() string {
	return l.label
}

// Tick returns the command that drives the animation.
func (l LoadingSpinner) Tick() tea.Cmd {
	return l.inner.Tick
}

// RenderSpinnerCentered places the labelled spinner in the middle of a
// width-by-height region, for full-pane loading states.
func RenderSpinnerCentered(s LoadingSpinner, width, height int) string {
	return styles.CenterBoth(s.ViewWithLabel(), width, height)
}
