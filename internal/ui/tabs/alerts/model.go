// Package alerts provides the alert rule management tab.
package alerts

import (
	"context"
	"fmt"
	"strings"
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

// formField represents which field is focused in the create form.
type formField int

const (
	fieldName formField = iota
	fieldRecipients
	fieldChannel
	fieldSubmit
	fieldCancel
)

const formFieldCount = 5

// keyMap defines the key bindings specific to the alerts tab.
type keyMap struct {
	New     key.Binding
	Toggle  key.Binding
	Test    key.Binding
	Delete  key.Binding
	History key.Binding
	Digest  key.Binding
	Escape  key.Binding
}

// defaultKeyMap returns the default key bindings for the alerts tab.
func defaultKeyMap() keyMap {
	return keyMap{
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new rule"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "enable/disable"),
		),
		Test: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "test rule"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "history"),
		),
		Digest: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "send digest"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// rulesLoadedMsg is sent when the rule list is loaded.
type rulesLoadedMsg struct {
	rules []models.AlertRule
}

// historyLoadedMsg is sent when the delivery history is loaded.
type historyLoadedMsg struct {
	entries []models.AlertHistoryEntry
}

// alertsErrorMsg is sent when a read fails.
type alertsErrorMsg struct {
	err error
}

// mutationDoneMsg is sent when a rule mutation or delivery action completes.
type mutationDoneMsg struct {
	action string
	err    error
}

// Model represents the alerts tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	spinner  components.LoadingSpinner
	keys     keyMap
	table    table.Model
	width    int
	height   int

	rules    []models.AlertRule
	loading  bool
	errorMsg string

	// History mode.
	showHistory bool
	history     []models.AlertHistoryEntry

	// Create form.
	creating        bool
	focusedField    formField
	nameInput       textinput.Model
	recipientsInput textinput.Model
	channel         models.AlertChannel

	// Delete confirmation.
	confirmDelete bool
	deleteID      int64
	deleteName    string
}

// New creates a new alerts model.
func New(state *app.State, svc *services.Manager) *Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "Rule name"
	nameInput.CharLimit = 80
	nameInput.Width = 40

	recipientsInput := textinput.New()
	recipientsInput.Placeholder = "ops@example.com, oncall@example.com"
	recipientsInput.CharLimit = 200
	recipientsInput.Width = 40

	t := table.New(
		table.WithColumns(ruleColumns(80)),
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
		spinner:         components.NewSpinner("Loading alert rules..."),
		keys:            defaultKeyMap(),
		table:           t,
		nameInput:       nameInput,
		recipientsInput: recipientsInput,
		channel:         models.ChannelEmail,
	}
}

func ruleColumns(width int) []table.Column {
	nameWidth := max(width-58, 20)
	return []table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "Enabled", Width: 8},
		{Title: "Channel", Width: 9},
		{Title: "Severities", Width: 20},
		{Title: "Throttle", Width: 9},
	}
}

// Init initializes the alerts tab.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Init(), m.loadRulesCmd())
}

func (m *Model) loadRulesCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		rules, err := m.services.Alerts().Rules(ctx)
		if err != nil {
			return alertsErrorMsg{err: err}
		}
		return rulesLoadedMsg{rules: rules}
	}
}

func (m *Model) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		entries, err := m.services.Alerts().History(ctx, models.AlertHistoryFilter{Limit: 50})
		if err != nil {
			return alertsErrorMsg{err: err}
		}
		return historyLoadedMsg{entries: entries}
	}
}

// Update handles messages for the alerts tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if m.creating {
		return m.updateCreateForm(msg)
	}
	if m.confirmDelete {
		return m.updateDeleteConfirm(msg)
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case rulesLoadedMsg:
		m.rules = msg.rules
		m.loading = false
		m.errorMsg = ""
		m.updateTableRows()

	case historyLoadedMsg:
		m.history = msg.entries
		m.loading = false
		m.errorMsg = ""

	case alertsErrorMsg:
		m.loading = false
		m.errorMsg = msg.err.Error()

	case mutationDoneMsg:
		cmds = append(cmds, m.handleMutationDone(msg)...)

	case app.RefreshMsg:
		if msg.Resource == "all" || msg.Resource == "alerts" {
			m.loading = true
			cmds = append(cmds, m.loadRulesCmd())
			if m.showHistory {
				cmds = append(cmds, m.loadHistoryCmd())
			}
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

func (m *Model) handleMutationDone(msg mutationDoneMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if msg.err != nil {
		cmds = append(cmds, notify(app.NotificationError, fmt.Sprintf("%s failed: %v", msg.action, msg.err)))
		return cmds
	}

	cmds = append(cmds, notify(app.NotificationSuccess, msg.action+" succeeded"))
	m.loading = true
	cmds = append(cmds, m.loadRulesCmd())
	if msg.action == "Test delivery" || m.showHistory {
		cmds = append(cmds, m.loadHistoryCmd())
	}
	return cmds
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.showHistory {
			m.showHistory = false
		}
		return m, nil

	case key.Matches(msg, m.keys.History):
		m.showHistory = !m.showHistory
		if m.showHistory {
			m.loading = true
			return m, m.loadHistoryCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.creating = true
		m.focusedField = fieldName
		m.nameInput.SetValue("")
		m.recipientsInput.SetValue("")
		m.channel = models.ChannelEmail
		m.nameInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Toggle):
		if rule := m.selectedRule(); rule != nil {
			toggled := *rule
			toggled.Enabled = !toggled.Enabled
			return m, m.updateRuleCmd(toggled)
		}
		return m, nil

	case key.Matches(msg, m.keys.Test):
		if rule := m.selectedRule(); rule != nil {
			return m, m.testRuleCmd(rule.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if rule := m.selectedRule(); rule != nil {
			m.confirmDelete = true
			m.deleteID = rule.ID
			m.deleteName = rule.Name
		}
		return m, nil

	case key.Matches(msg, m.keys.Digest):
		return m, m.sendDigestCmd()
	}

	if !m.showHistory {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateCreateForm(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.creating = false
			m.blurForm()
			return m, nil

		case "tab", "down":
			m.focusedField = (m.focusedField + 1) % formFieldCount
			m.updateFormFocus()
			return m, textinput.Blink

		case "shift+tab", "up":
			m.focusedField = (m.focusedField - 1 + formFieldCount) % formFieldCount
			m.updateFormFocus()
			return m, textinput.Blink

		case "left", "right":
			if m.focusedField == fieldChannel {
				m.channel = nextChannel(m.channel)
				return m, nil
			}

		case "enter":
			switch m.focusedField {
			case fieldChannel:
				m.channel = nextChannel(m.channel)
				return m, nil
			case fieldSubmit:
				return m.submitCreateForm()
			case fieldCancel:
				m.creating = false
				m.blurForm()
				return m, nil
			default:
				m.focusedField = (m.focusedField + 1) % formFieldCount
				m.updateFormFocus()
				return m, textinput.Blink
			}
		}
	}

	var cmd tea.Cmd
	switch m.focusedField {
	case fieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case fieldRecipients:
		m.recipientsInput, cmd = m.recipientsInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) submitCreateForm() (app.Tab, tea.Cmd) {
	name := strings.TrimSpace(m.nameInput.Value())
	if name == "" {
		return m, notify(app.NotificationWarning, "Rule name is required")
	}

	var recipients []string
	for _, r := range strings.Split(m.recipientsInput.Value(), ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return m, notify(app.NotificationWarning, "At least one recipient is required")
	}

	rule := models.AlertRule{
		Name:    name,
		Enabled: true,
		Severities: []models.AnomalySeverity{
			models.SeverityHigh, models.SeverityCritical,
		},
		Channel:         m.channel,
		Recipients:      recipients,
		ThrottleMinutes: 60,
	}

	m.creating = false
	m.blurForm()
	return m, m.createRuleCmd(rule)
}

func (m *Model) updateDeleteConfirm(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.confirmDelete = false
			id := m.deleteID
			m.deleteID = 0
			return m, m.deleteRuleCmd(id)
		case "n", "N", "esc":
			m.confirmDelete = false
			m.deleteID = 0
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) blurForm() {
	m.nameInput.Blur()
	m.recipientsInput.Blur()
}

func (m *Model) updateFormFocus() {
	m.blurForm()
	switch m.focusedField {
	case fieldName:
		m.nameInput.Focus()
	case fieldRecipients:
		m.recipientsInput.Focus()
	}
}

func nextChannel(c models.AlertChannel) models.AlertChannel {
	switch c {
	case models.ChannelEmail:
		return models.ChannelSlack
	case models.ChannelSlack:
		return models.ChannelWebhook
	default:
		return models.ChannelEmail
	}
}

func (m *Model) createRuleCmd(rule models.AlertRule) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		_, err := m.services.Alerts().Create(ctx, rule)
		return mutationDoneMsg{action: "Create rule", err: err}
	}
}

func (m *Model) updateRuleCmd(rule models.AlertRule) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		_, err := m.services.Alerts().Update(ctx, rule)
		return mutationDoneMsg{action: "Update rule", err: err}
	}
}

func (m *Model) deleteRuleCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return mutationDoneMsg{action: "Delete rule", err: m.services.Alerts().Delete(ctx, id)}
	}
}

func (m *Model) testRuleCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return mutationDoneMsg{action: "Test delivery", err: m.services.Alerts().Test(ctx, id)}
	}
}

func (m *Model) sendDigestCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return mutationDoneMsg{action: "Send digest", err: m.services.Alerts().SendDigest(ctx)}
	}
}

func (m *Model) selectedRule() *models.AlertRule {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rules) {
		return nil
	}
	return &m.rules[cursor]
}

func (m *Model) updateTableRows() {
	rows := make([]table.Row, 0, len(m.rules))
	for _, r := range m.rules {
		enabled := "no"
		if r.Enabled {
			enabled = "yes"
		}

		severities := make([]string, 0, len(r.Severities))
		for _, s := range r.Severities {
			severities = append(severities, string(s))
		}

		rows = append(rows, table.Row{
			r.Name,
			enabled,
			string(r.Channel),
			strings.Join(severities, ","),
			fmt.Sprintf("%dm", r.ThrottleMinutes),
		})
	}
	m.table.SetRows(rows)
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

// SetSize sets the available size for the alerts tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-10, 4))
	m.table.SetColumns(ruleColumns(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.showHistory {
		return []key.Binding{m.keys.History, m.keys.Escape}
	}
	return []key.Binding{
		m.keys.New,
		m.keys.Toggle,
		m.keys.Test,
		m.keys.History,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.New, m.keys.Toggle, m.keys.Delete},
		{m.keys.Test, m.keys.Digest},
		{m.keys.History, m.keys.Escape},
	}
}
