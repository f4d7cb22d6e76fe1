// Package anomalies provides the anomaly triage tab.
package anomalies

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/app"
	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/services"
	"github.com/opsdeck/opsdeck/internal/ui/components"
	"github.com/opsdeck/opsdeck/internal/ui/styles"
)

const loadTimeout = 30 * time.Second

// keyMap defines the key bindings specific to the anomalies tab.
type keyMap struct {
	Open          key.Binding
	Acknowledge   key.Binding
	Resolve       key.Binding
	FalsePositive key.Binding
	Detect        key.Binding
	CycleSeverity key.Binding
	CycleStatus   key.Binding
	Escape        key.Binding
}

// defaultKeyMap returns the default key bindings for the anomalies tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Acknowledge: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "acknowledge"),
		),
		Resolve: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "resolve"),
		),
		FalsePositive: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "false positive"),
		),
		Detect: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "run detection"),
		),
		CycleSeverity: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "filter severity"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "filter status"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// anomaliesLoadedMsg is sent when an anomaly page is loaded.
type anomaliesLoadedMsg struct {
	anomalies []models.Anomaly
	stats     *models.AnomalyStats
}

// anomaliesErrorMsg is sent when loading fails.
type anomaliesErrorMsg struct {
	err error
}

// transitionResultMsg is sent when a lifecycle transition completes.
type transitionResultMsg struct {
	anomaly *models.Anomaly
	action  string
	err     error
}

// detectionDoneMsg is sent when a manual detection run completes.
type detectionDoneMsg struct {
	err error
}

// Model represents the anomalies tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	spinner  components.LoadingSpinner
	keys     keyMap
	table    table.Model
	width    int
	height   int

	anomalies []models.Anomaly
	filter    models.AnomalyFilter
	loading   bool
	detecting bool
	errorMsg  string

	// Detail mode. Nil means the list is showing.
	detail *models.Anomaly

	// Resolve form.
	resolving       bool
	resolutionInput textinput.Model
}

// New creates a new anomalies model.
func New(state *app.State, svc *services.Manager) *Model {
	resolutionInput := textinput.New()
	resolutionInput.Placeholder = "What fixed it?"
	resolutionInput.CharLimit = 200
	resolutionInput.Width = 50

	t := table.New(
		table.WithColumns(listColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:           state,
		services:        svc,
		spinner:         components.NewSpinner("Loading anomalies..."),
		keys:            defaultKeyMap(),
		table:           t,
		resolutionInput: resolutionInput,
	}
}

func listColumns(width int) []table.Column {
	descWidth := max(width-52, 20)
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Severity", Width: 10},
		{Title: "Status", Width: 14},
		{Title: "Category", Width: 12},
		{Title: "Description", Width: descWidth},
	}
}

// Init initializes the anomalies tab.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Init(), m.loadCmd())
}

// loadCmd loads the anomaly list for the current filter plus the stats.
func (m *Model) loadCmd() tea.Cmd {
	filter := m.filter
	return func() tea.Msg {
		if m.services == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		svc := m.services.Anomalies()
		list, err := svc.List(ctx, filter)
		if err != nil {
			return anomaliesErrorMsg{err: err}
		}
		stats, err := svc.Stats(ctx)
		if err != nil {
			return anomaliesErrorMsg{err: err}
		}
		return anomaliesLoadedMsg{anomalies: list, stats: stats}
	}
}

func (m *Model) transitionCmd(action string, id int64, resolution string) tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		svc := m.services.Anomalies()
		var (
			anomaly *models.Anomaly
			err     error
		)
		switch action {
		case "acknowledge":
			anomaly, err = svc.Acknowledge(ctx, id)
		case "resolve":
			anomaly, err = svc.Resolve(ctx, id, resolution)
		case "false-positive":
			anomaly, err = svc.MarkFalsePositive(ctx, id)
		}
		return transitionResultMsg{anomaly: anomaly, action: action, err: err}
	}
}

func (m *Model) detectCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return detectionDoneMsg{err: m.services.Anomalies().RunDetection(ctx)}
	}
}

// Update handles messages for the anomalies tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if m.resolving {
		return m.updateResolveForm(msg)
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case anomaliesLoadedMsg:
		m.anomalies = msg.anomalies
		m.loading = false
		m.errorMsg = ""
		m.updateTableRows()
		if msg.stats != nil {
			m.state.SetAnomalyStats(msg.stats)
		}
		// Refresh the open detail from the reloaded list.
		if m.detail != nil {
			m.detail = m.findAnomaly(m.detail.ID)
		}

	case anomaliesErrorMsg:
		m.loading = false
		m.errorMsg = msg.err.Error()

	case transitionResultMsg:
		cmds = append(cmds, m.handleTransitionResult(msg)...)

	case detectionDoneMsg:
		m.detecting = false
		if msg.err != nil {
			cmds = append(cmds, notify(app.NotificationError, fmt.Sprintf("Detection failed: %v", msg.err)))
		} else {
			cmds = append(cmds, notify(app.NotificationSuccess, "Detection run completed"))
			m.loading = true
			cmds = append(cmds, m.loadCmd())
		}

	case app.RefreshMsg:
		if msg.Resource == "all" || msg.Resource == "anomalies" {
			m.loading = true
			cmds = append(cmds, m.loadCmd())
		}

	case app.ServiceEventMsg:
		// A poll or transition elsewhere refreshed the population.
		if _, ok := msg.Event.(services.AnomaliesUpdatedEvent); ok && !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadCmd())
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleTransitionResult(msg transitionResultMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if msg.err != nil {
		cmds = append(cmds, notify(app.NotificationError, fmt.Sprintf("Transition failed: %v", msg.err)))
		return cmds
	}

	// A successful transition closes the detail pane; the refreshed
	// list shows the new status.
	m.detail = nil
	cmds = append(cmds, notify(app.NotificationSuccess, fmt.Sprintf("Anomaly %s", pastTense(msg.action))))
	m.loading = true
	cmds = append(cmds, m.loadCmd())
	return cmds
}

func pastTense(action string) string {
	switch action {
	case "acknowledge":
		return "acknowledged"
	case "resolve":
		return "resolved"
	case "false-positive":
		return "marked false positive"
	default:
		return action
	}
}

func (m *Model) updateResolveForm(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.resolving = false
			m.resolutionInput.Blur()
			return m, nil
		case "enter":
			resolution := m.resolutionInput.Value()
			if resolution == "" {
				return m, notify(app.NotificationWarning, "Resolution text is required")
			}
			m.resolving = false
			m.resolutionInput.Blur()
			target := m.targetAnomaly()
			if target == nil {
				return m, nil
			}
			return m, m.transitionCmd("resolve", target.ID, resolution)
		}
	}

	var cmd tea.Cmd
	m.resolutionInput, cmd = m.resolutionInput.Update(msg)
	return m, cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.detail != nil {
			m.detail = nil
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if m.detail == nil {
			if a := m.selectedAnomaly(); a != nil {
				m.detail = a
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Acknowledge):
		return m.startTransition("acknowledge")

	case key.Matches(msg, m.keys.Resolve):
		target := m.targetAnomaly()
		if target == nil {
			return m, nil
		}
		if !target.Status.CanResolve() {
			return m, notify(app.NotificationWarning,
				fmt.Sprintf("Cannot resolve an anomaly in status %s", target.Status))
		}
		m.resolving = true
		m.resolutionInput.SetValue("")
		m.resolutionInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.FalsePositive):
		return m.startTransition("false-positive")

	case key.Matches(msg, m.keys.Detect):
		if m.detecting {
			return m, nil
		}
		m.detecting = true
		return m, tea.Batch(
			notify(app.NotificationInfo, "Detection run started"),
			m.detectCmd(),
		)

	case key.Matches(msg, m.keys.CycleSeverity):
		m.filter.Severity = nextSeverity(m.filter.Severity)
		m.loading = true
		return m, m.loadCmd()

	case key.Matches(msg, m.keys.CycleStatus):
		m.filter.Status = nextStatus(m.filter.Status)
		m.loading = true
		return m, m.loadCmd()
	}

	if m.detail == nil {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) startTransition(action string) (app.Tab, tea.Cmd) {
	target := m.targetAnomaly()
	if target == nil {
		return m, nil
	}

	switch action {
	case "acknowledge":
		if !target.Status.CanAcknowledge() {
			return m, notify(app.NotificationWarning,
				fmt.Sprintf("Cannot acknowledge an anomaly in status %s", target.Status))
		}
	case "false-positive":
		if !target.Status.CanMarkFalsePositive() {
			return m, notify(app.NotificationWarning,
				fmt.Sprintf("Cannot mark an anomaly in status %s as false positive", target.Status))
		}
	}

	return m, m.transitionCmd(action, target.ID, "")
}

// targetAnomaly is the detail anomaly if open, otherwise the table selection.
func (m *Model) targetAnomaly() *models.Anomaly {
	if m.detail != nil {
		return m.detail
	}
	return m.selectedAnomaly()
}

func (m *Model) selectedAnomaly() *models.Anomaly {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.anomalies) {
		return nil
	}
	return &m.anomalies[cursor]
}

func (m *Model) findAnomaly(id int64) *models.Anomaly {
	for i := range m.anomalies {
		if m.anomalies[i].ID == id {
			return &m.anomalies[i]
		}
	}
	return nil
}

func (m *Model) updateTableRows() {
	rows := make([]table.Row, 0, len(m.anomalies))
	for _, a := range m.anomalies {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", a.ID),
			string(a.Severity),
			string(a.Status),
			a.Category,
			a.Description,
		})
	}
	m.table.SetRows(rows)
}

// nextSeverity cycles all, LOW, MEDIUM, HIGH, CRITICAL.
func nextSeverity(s models.AnomalySeverity) models.AnomalySeverity {
	switch s {
	case "":
		return models.SeverityLow
	case models.SeverityLow:
		return models.SeverityMedium
	case models.SeverityMedium:
		return models.SeverityHigh
	case models.SeverityHigh:
		return models.SeverityCritical
	default:
		return ""
	}
}

// nextStatus cycles all, OPEN, ACKNOWLEDGED, RESOLVED, FALSE_POSITIVE.
func nextStatus(s models.AnomalyStatus) models.AnomalyStatus {
	switch s {
	case "":
		return models.AnomalyOpen
	case models.AnomalyOpen:
		return models.AnomalyAcknowledged
	case models.AnomalyAcknowledged:
		return models.AnomalyResolved
	case models.AnomalyResolved:
		return models.AnomalyFalsePositive
	default:
		return ""
	}
}

func notify(t app.NotificationType, message string) tea.Cmd {
	return func() tea.Msg {
		return app.AddNotificationMsg{
			Type:     t,
			Message:  message,
			Duration: 5 * time.Second,
		}
	}
}

// SetSize sets the available size for the anomalies tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-12, 4))
	m.table.SetColumns(listColumns(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.detail != nil {
		return []key.Binding{
			m.keys.Acknowledge,
			m.keys.Resolve,
			m.keys.FalsePositive,
			m.keys.Escape,
		}
	}
	return []key.Binding{
		m.keys.Open,
		m.keys.Acknowledge,
		m.keys.Detect,
		m.keys.CycleSeverity,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Open, m.keys.Escape},
		{m.keys.Acknowledge, m.keys.Resolve, m.keys.FalsePositive},
		{m.keys.Detect, m.keys.CycleSeverity, m.keys.CycleStatus},
	}
}
