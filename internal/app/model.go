// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/services"
	"github.com/opsdeck/opsdeck/internal/ui/styles"
)

// TabID identifies one of the five top-level pages.
type TabID int

const (
	TabDashboard TabID = iota
	TabAnomalies
	TabAlerts
	TabInfra
	TabAssistant
)

var tabNames = [...]string{"Dashboard", "Anomalies", "Alerts", "Infra", "Assistant"}

func (t TabID) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// Tab is the contract every page implements. The root model routes
// messages to the active tab and asks it to render into the content
// region below the navbar.
type Tab interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Tab, tea.Cmd)
	View() string
	SetSize(width, height int)
	ShortHelp() []key.Binding
	FullHelp() [][]key.Binding
}

// KeyMap holds the global keybindings.
type KeyMap struct {
	Tab1     key.Binding
	Tab2     key.Binding
	Tab3     key.Binding
	Tab4     key.Binding
	Tab5     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	Escape   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Filter   key.Binding
}

func bind(helpKey, helpDesc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, helpDesc))
}

// DefaultKeyMap returns the global keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:     bind("1", "dashboard", "1"),
		Tab2:     bind("2", "anomalies", "2"),
		Tab3:     bind("3", "alerts", "3"),
		Tab4:     bind("4", "infra", "4"),
		Tab5:     bind("5", "assistant", "5"),
		NextTab:  bind("tab", "next tab", "tab"),
		PrevTab:  bind("shift+tab", "prev tab", "shift+tab"),
		Refresh:  bind("r", "refresh", "r", "ctrl+r"),
		Help:     bind("?", "toggle help", "?"),
		Quit:     bind("q", "quit", "q", "ctrl+c"),
		Up:       bind("↑/k", "up", "up", "k"),
		Down:     bind("↓/j", "down", "down", "j"),
		Left:     bind("←/h", "left", "left", "h"),
		Right:    bind("→/l", "right", "right", "l"),
		Enter:    bind("enter", "select", "enter"),
		Escape:   bind("esc", "cancel", "esc"),
		PageUp:   bind("pgup", "page up", "pgup", "ctrl+u"),
		PageDown: bind("pgdn", "page down", "pgdown", "ctrl+d"),
		Home:     bind("home", "go to top", "home", "g"),
		End:      bind("end", "go to bottom", "end", "G"),
		Filter:   bind("/", "filter", "/"),
	}
}

// ShortHelp returns the bindings shown in the navbar hint.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns the binding groups for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5},
		{k.NextTab, k.PrevTab},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Model is the root application model. It owns the navbar, the help
// overlay, toast notifications, and delegates everything else to the
// active tab.
type Model struct {
	activeTab TabID
	tabs      []Tab

	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap

	spinner spinner.Model

	width  int
	height int

	showHelp bool
	ready    bool

	eventChannel chan services.ServiceEvent
}

// NewModel builds the root model. Tabs are attached afterwards through
// SetTabs so they can share the model's State.
func NewModel(mgr *services.Manager) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return &Model{
		activeTab: TabDashboard,
		tabs:      make([]Tab, len(tabNames)),
		state:     NewState(),
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		spinner:   sp,
	}
}

// SetTabs attaches the page implementations.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.ready {
		m.updateTabSizes()
	}
}

// GetState returns the shared application state.
func (m *Model) GetState() *State { return m.state }

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager { return m.services }

// GetCommands returns the command factory.
func (m *Model) GetCommands() *Commands { return m.commands }

// GetKeyMap returns the global keybindings.
func (m *Model) GetKeyMap() KeyMap { return m.keymap }

// GetActiveTab returns the currently selected page.
func (m *Model) GetActiveTab() TabID { return m.activeTab }

// IsReady reports whether a window size has been received.
func (m *Model) IsReady() bool { return m.ready }

// Init starts the spinner and tick loops, subscribes to service
// events, kicks off the first dashboard load, and initializes tabs.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{m.spinner.Tick, defaultTickCmd()}
	if m.services != nil {
		cmds = append(cmds,
			subscribeToServicesCmd(m.services),
			loadDashboardCmd(m.services),
		)
	}
	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}
	return tea.Batch(cmds...)
}

// Update dispatches terminal messages and application messages, then
// forwards the message to the active tab.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.updateTabSizes()
	case tea.KeyMsg:
		if cmd := m.handleKeyMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case DashboardLoadedMsg:
		cmds = append(cmds, m.handleDashboardLoaded(msg)...)
	case SwitchTenantResultMsg:
		cmds = append(cmds, m.handleSwitchTenantResult(msg)...)
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
		m.state.SetLoadingNotification("Refreshing...")
	case StopLoadingMsg:
		m.state.SetLoading(msg.Resource, false)
		if !m.state.AnyLoading() {
			m.state.ClearLoadingNotification()
		}
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(msg.Error.Error()))
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh(msg)...)
	case TabSwitchMsg:
		m.selectTab(msg.Tab)
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleDashboardLoaded(msg DashboardLoadedMsg) []tea.Cmd {
	m.state.SetLoading("initial", false)
	m.state.SetLoading("monitoring", false)

	if msg.Realtime != nil {
		m.state.SetRealtime(msg.Realtime)
	}
	if msg.Summary != nil {
		m.state.SetSummary(msg.Summary)
	}
	if msg.Global != nil {
		m.state.SetCost(msg.Global, msg.Band)
	}

	var cmds []tea.Cmd
	if msg.Error != nil {
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Failed to load dashboard: %v", msg.Error)))
	}
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
	return cmds
}

func (m *Model) handleSwitchTenantResult(msg SwitchTenantResultMsg) []tea.Cmd {
	if !msg.Success {
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("Failed to switch tenant: %v", msg.Error))}
	}
	cmds := []tea.Cmd{notifySuccessCmd(fmt.Sprintf("Switched to %s", msg.Name))}
	if m.services != nil {
		cmds = append(cmds, loadDashboardCmd(m.services))
	}
	return cmds
}

func (m *Model) handleRefresh(msg RefreshMsg) []tea.Cmd {
	if m.services == nil {
		return nil
	}

	cmds := []tea.Cmd{func() tea.Msg { return StartLoadingMsg(msg) }}
	switch msg.Resource {
	case "all", "monitoring":
		cmds = append(cmds, loadDashboardCmd(m.services))
	case "anomalies":
		cmds = append(cmds, loadAnomaliesCmd(m.services, models.AnomalyFilter{}))
	case "alerts":
		cmds = append(cmds, loadAlertRulesCmd(m.services))
	}
	return cmds
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return nil
	}
	var cmd tea.Cmd
	m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
	return cmd
}

func (m *Model) selectTab(id TabID) {
	m.activeTab = id
	m.updateTabSizes()
}

func (m *Model) updateTabSizes() {
	// Navbar, separators, and the help hint take five rows.
	contentHeight := max(m.height-5, 0)
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	// The assistant tab owns most keystrokes while its input is focused;
	// only the quit chord and tab cycling stay global there.
	if m.activeTab == TabAssistant {
		switch msg.String() {
		case "ctrl+c", "tab", "shift+tab":
		default:
			return nil
		}
	}

	km := m.keymap
	switch {
	case key.Matches(msg, km.Quit):
		return tea.Quit

	case key.Matches(msg, km.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, km.Tab1):
		m.selectTab(TabDashboard)
	case key.Matches(msg, km.Tab2):
		m.selectTab(TabAnomalies)
	case key.Matches(msg, km.Tab3):
		m.selectTab(TabAlerts)
	case key.Matches(msg, km.Tab4):
		m.selectTab(TabInfra)
	case key.Matches(msg, km.Tab5):
		m.selectTab(TabAssistant)

	case key.Matches(msg, km.NextTab):
		if !m.showHelp {
			m.selectTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))
		}
	case key.Matches(msg, km.PrevTab):
		if !m.showHelp {
			m.selectTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))
		}

	case key.Matches(msg, km.Refresh):
		if m.services != nil {
			return tea.Batch(
				func() tea.Msg { return StartLoadingMsg{Resource: "monitoring"} },
				loadDashboardCmd(m.services),
			)
		}

	case key.Matches(msg, km.Escape):
		if m.showHelp {
			m.showHelp = false
		}
	}

	return nil
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.TenantsChangedEvent:
		m.state.SetTenants(e.Tenants, e.ActiveTenant)

	case services.RealtimeUpdatedEvent:
		if e.Realtime != nil {
			m.state.SetRealtime(e.Realtime)
		}

	case services.SummaryUpdatedEvent:
		if e.Summary != nil {
			m.state.SetSummary(e.Summary)
		}

	case services.CostUpdatedEvent:
		m.state.SetCost(e.Global, e.Band)

	case services.BandChangedEvent:
		m.state.SetCost(e.Global, e.Band)
		switch e.Band {
		case models.CostBandCritical:
			return notifyErrorCmd(fmt.Sprintf("Spend crossed the critical threshold (%s)", e.Band))
		case models.CostBandWarning:
			return notifyWarningCmd(fmt.Sprintf("Spend crossed the warning threshold (%s)", e.Band))
		default:
			return notifySuccessCmd("Spend is back within budget")
		}

	case services.AnomaliesUpdatedEvent:
		if e.Stats != nil {
			m.state.SetAnomalyStats(e.Stats)
		}

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

// View composes navbar, active tab content, and any overlays.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(styles.ContentStyle.Render(m.spinner.View() + " Loading..."))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	view := b.String()
	if m.showHelp {
		view = m.overlayCentered(view, m.renderHelp())
	}
	if toasts := m.renderNotifications(); len(toasts) > 0 {
		view = m.overlayToasts(view, toasts)
	}
	return view
}

// spliceAt replaces the [x, x+width) column span of line with patch,
// preserving ANSI sequences on both remaining sides.
func spliceAt(line, patch string, x, width int) string {
	left := ansi.Truncate(line, x, "")
	right := ansi.TruncateLeft(line, x+width, "")
	if pad := x - lipgloss.Width(left); pad > 0 {
		left += strings.Repeat(" ", pad)
	}
	return left + patch + right
}

func (m *Model) overlayCentered(base, overlay string) string {
	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(overlay, "\n")
	overlayWidth := lipgloss.Width(overlay)

	x := max((m.width-overlayWidth)/2, 0)
	y := max((m.height-len(overlayLines))/2, 0)

	for i, line := range overlayLines {
		row := y + i
		if row >= len(baseLines) {
			break
		}
		baseLines[row] = spliceAt(baseLines[row], line, x, overlayWidth)
	}
	return strings.Join(baseLines, "\n")
}

func (m *Model) overlayToasts(base string, toasts []string) string {
	stack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	stackLines := strings.Split(stack, "\n")
	baseLines := strings.Split(base, "\n")

	x := max(m.width-lipgloss.Width(stack)-2, 0)
	const y = 2 // below the navbar

	for i, line := range stackLines {
		row := y + i
		if row >= len(baseLines) {
			break
		}
		baseLine := baseLines[row]
		if w := lipgloss.Width(baseLine); w < x {
			baseLines[row] = baseLine + strings.Repeat(" ", x-w) + line
		} else {
			baseLines[row] = ansi.Truncate(baseLine, x, "") + line
		}
	}
	return strings.Join(baseLines, "\n")
}

func (m *Model) renderNavbar() string {
	entries := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if TabID(i) == m.activeTab {
			entries = append(entries, styles.ActiveTabStyle.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			entries = append(entries, styles.InactiveTabStyle.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, entries...)

	// The active tenant lives in the navbar so every tab shows scope.
	if active := m.state.GetActiveTenant(); active != nil {
		scope := styles.SubtleStyle.Render("tenant: " + active.Name)
		if gap := m.width - lipgloss.Width(bar) - lipgloss.Width(scope) - 4; gap > 0 {
			bar += strings.Repeat(" ", gap) + scope
		}
	}

	return styles.TabBarStyle.Width(m.width).Render(bar)
}

var toastPrefixes = map[NotificationType]string{
	NotificationSuccess: "[OK]",
	NotificationError:   "[ERR]",
	NotificationWarning: "[WARN]",
	NotificationInfo:    "[INFO]",
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		switch n.Type {
		case NotificationSuccess:
			style = styles.NotificationSuccessStyle
		case NotificationError:
			style = styles.NotificationErrorStyle
		case NotificationWarning:
			style = styles.NotificationWarningStyle
		default:
			style = styles.NotificationInfoStyle
		}

		prefix := toastPrefixes[n.Type]
		if n.Type == NotificationLoading {
			prefix = m.spinner.View()
		}

		toasts = append(toasts, styles.ToastStyle.Render(style.Render(prefix+" "+n.Message)))
	}
	return toasts
}

func (m *Model) renderHelp() string {
	lines := []string{
		styles.TitleStyle.Render("Keyboard Shortcuts"),
		"",
		styles.HighlightStyle.Render("Navigation"),
		"  1-5        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		styles.HighlightStyle.Render("Actions"),
		"  r          Refresh data",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
		"",
		styles.HighlightStyle.Render("Lists"),
		"  j/k, ↑/↓   Move up/down",
		"  Enter      Select item",
		"  /          Filter",
		"",
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, styles.HighlightStyle.Render(m.activeTab.String()+" Tab"))
			for _, b := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", b.Help().Key, b.Help().Desc))
			}
		}
	}

	lines = append(lines, "", styles.SubtleStyle.Render("Press ? or Esc to close"))
	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.activeTab.String(),
		styles.SubtleStyle.Render("This tab is not yet implemented."),
	)
	return styles.ContentStyle.Render(content)
}
