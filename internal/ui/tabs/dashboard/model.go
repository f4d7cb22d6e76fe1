// Package dashboard provides the main monitoring overview tab.
package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/app"
	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/services"
	"github.com/opsdeck/opsdeck/internal/ui/components"
)

const loadTimeout = 30 * time.Second

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	TogglePeriod key.Binding
	Refresh      key.Binding
	Up           key.Binding
	Down         key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		TogglePeriod: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle period"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// trendsLoadedMsg is sent when the usage trend series is loaded.
type trendsLoadedMsg struct {
	trends    []models.UsageTrendPoint
	breakdown *models.CostBreakdown
}

// trendsErrorMsg is sent when loading the trend series failed.
type trendsErrorMsg struct {
	err error
}

// Model represents the dashboard tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int

	trends    []models.UsageTrendPoint
	breakdown *models.CostBreakdown
	loading   bool
	errorMsg  string
}

// New creates a new dashboard model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		services: svc,
		spinner:  components.NewSpinner("Loading dashboard..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the dashboard tab.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.loadTrendsCmd())
}

// loadTrendsCmd loads the trend series and cost breakdown. Both reads go
// through the cache, so repeated tab switches stay cheap.
func (m *Model) loadTrendsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		mon := m.services.Monitor()
		trends, err := mon.Trends(ctx, 0)
		if err != nil {
			return trendsErrorMsg{err: err}
		}
		breakdown, err := mon.Costs(ctx)
		if err != nil {
			return trendsErrorMsg{err: err}
		}
		return trendsLoadedMsg{trends: trends, breakdown: breakdown}
	}
}

// Update handles messages for the dashboard tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case trendsLoadedMsg:
		m.trends = msg.trends
		m.breakdown = msg.breakdown
		m.loading = false
		m.errorMsg = ""

	case trendsErrorMsg:
		m.loading = false
		m.errorMsg = msg.err.Error()

	case app.DashboardLoadedMsg:
		if m.trends == nil && !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadTrendsCmd())
		}

	case app.RefreshMsg:
		if msg.Resource == "all" || msg.Resource == "monitoring" {
			m.loading = true
			cmds = append(cmds, m.loadTrendsCmd())
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.TogglePeriod):
		m.togglePeriod()
		m.loading = true
		return tea.Batch(
			m.loadTrendsCmd(),
			func() tea.Msg { return app.RefreshMsg{Resource: "monitoring"} },
		)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// togglePeriod cycles day, week, month. Each period has its own cache
// slots, so switching back serves the previous figures instantly.
func (m *Model) togglePeriod() {
	if m.services == nil {
		return
	}
	mon := m.services.Monitor()
	switch mon.Period() {
	case models.PeriodDay:
		mon.SetPeriod(models.PeriodWeek)
	case models.PeriodWeek:
		mon.SetPeriod(models.PeriodMonth)
	default:
		mon.SetPeriod(models.PeriodDay)
	}
}

// SetSize sets the available size for the dashboard tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.TogglePeriod,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.TogglePeriod, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
