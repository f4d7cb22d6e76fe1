// Package assistant provides the chat assistant tab.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/app"
	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/services"
	"github.com/opsdeck/opsdeck/internal/ui/components"
)

const sendTimeout = 60 * time.Second

// keyMap defines the key bindings specific to the assistant tab.
type keyMap struct {
	Send   key.Binding
	Clear  key.Binding
	ScrlUp key.Binding
	ScrlDn key.Binding
}

// defaultKeyMap returns the default key bindings for the assistant tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear conversation"),
		),
		ScrlUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrlDn: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

// replyMsg carries the assistant turn for a completed send. Failed sends
// still deliver a turn, the locally synthesized fallback.
type replyMsg struct {
	message *models.AssistantMessage
	err     error
}

// suggestionsLoadedMsg carries the context-aware starter suggestions.
type suggestionsLoadedMsg struct {
	suggestions *models.SuggestionSet
}

// Model represents the assistant tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	spinner  components.LoadingSpinner
	keys     keyMap
	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int

	suggestions *models.SuggestionSet
	pending     bool
}

// New creates a new assistant model.
func New(state *app.State, svc *services.Manager) *Model {
	input := textinput.New()
	input.Placeholder = "Ask about usage, costs or anomalies..."
	input.CharLimit = 500
	input.Focus()

	return &Model{
		state:    state,
		services: svc,
		spinner:  components.NewSpinner("Thinking..."),
		keys:     defaultKeyMap(),
		input:    input,
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the assistant tab.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Init(),
		m.loadSuggestionsCmd(),
	)
}

func (m *Model) loadSuggestionsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		// Suggestions are best-effort; the input works without them.
		set, err := m.services.Assistant().Suggestions(ctx)
		if err != nil {
			return nil
		}
		return suggestionsLoadedMsg{suggestions: set}
	}
}

func (m *Model) sendCmd(message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		reply, err := m.services.Assistant().Send(ctx, message)
		return replyMsg{message: reply, err: err}
	}
}

// Update handles messages for the assistant tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case replyMsg:
		m.pending = false
		m.renderTranscript()
		m.viewport.GotoBottom()

	case suggestionsLoadedMsg:
		m.suggestions = msg.suggestions

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.pending || m.services == nil {
			return m, nil
		}
		m.input.SetValue("")
		m.pending = true
		m.renderTranscript()
		m.viewport.GotoBottom()
		return m, m.sendCmd(text)

	case key.Matches(msg, m.keys.Clear):
		if m.services != nil {
			m.services.Assistant().Clear()
		}
		m.renderTranscript()
		return m, m.loadSuggestionsCmd()

	case key.Matches(msg, m.keys.ScrlUp), key.Matches(msg, m.keys.ScrlDn):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// SetSize sets the available size for the assistant tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-8, 20)
	m.viewport.Width = width
	m.viewport.Height = max(height-6, 3)
	m.renderTranscript()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Send,
		m.keys.Clear,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Send, m.keys.Clear},
		{m.keys.ScrlUp, m.keys.ScrlDn},
	}
}
