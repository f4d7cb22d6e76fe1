// Package infra provides the infrastructure health tab.
package infra

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

// keyMap defines the key bindings specific to the infra tab.
type keyMap struct {
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
}

// defaultKeyMap returns the default key bindings for the infra tab.
func defaultKeyMap() keyMap {
	return keyMap{
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

// snapshot holds everything the infra view renders. Reads that fail
// leave their field nil; the view shows what it has.
type snapshot struct {
	health      *models.InfrastructureHealth
	latency     *models.LatencyStats
	errors      *models.ErrorStats
	system      *models.SystemMetrics
	slowQueries []models.SlowQuery
	err         error
}

// snapshotLoadedMsg carries a loaded infra snapshot.
type snapshotLoadedMsg struct {
	snap snapshot
}

// Model represents the infra tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int

	snap    snapshot
	loaded  bool
	loading bool
}

// New creates a new infra model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		services: svc,
		spinner:  components.NewSpinner("Checking infrastructure..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the infra tab.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Init(), m.loadCmd())
}

// loadCmd loads all infra reads. A single failing read does not blank
// the rest of the page; the first error is kept for display.
func (m *Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		mon := m.services.Monitor()
		var snap snapshot

		keep := func(err error) {
			if err != nil && snap.err == nil {
				snap.err = err
			}
		}

		var err error
		snap.health, err = mon.Infrastructure(ctx)
		keep(err)
		snap.latency, err = mon.Latency(ctx)
		keep(err)
		snap.errors, err = mon.Errors(ctx)
		keep(err)
		snap.system, err = mon.System(ctx)
		keep(err)
		snap.slowQueries, err = mon.SlowQueries(ctx, models.SlowQueryFilter{Limit: 10})
		keep(err)

		return snapshotLoadedMsg{snap: snap}
	}
}

// Update handles messages for the infra tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case snapshotLoadedMsg:
		m.snap = msg.snap
		m.loaded = true
		m.loading = false

	case app.RefreshMsg:
		if msg.Resource == "all" || msg.Resource == "monitoring" {
			m.loading = true
			cmds = append(cmds, m.loadCmd())
		}

	case app.ServiceEventMsg:
		if _, ok := msg.Event.(services.InfraUpdatedEvent); ok && !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadCmd())
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			cmds = append(cmds, m.loadCmd())
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the infra tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Refresh}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
