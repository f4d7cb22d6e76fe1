package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/services"
)

// Notification durations by severity. Errors linger longest so they
// are not missed between polls.
const (
	DefaultTickInterval         = 2 * time.Second
	DefaultNotificationDuration = 5 * time.Second
	QuickNotificationDuration   = 3 * time.Second
	LongNotificationDuration    = 10 * time.Second

	// commandTimeout bounds every service call issued from the UI.
	commandTimeout = 30 * time.Second
)

// tickCmd schedules the next housekeeping TickMsg.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadDashboardCmd returns a command that loads the dashboard figures.
func loadDashboardCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		mon := mgr.Monitor()

		realtime, err := mon.Realtime(ctx)
		if err != nil {
			return DashboardLoadedMsg{Error: err}
		}
		summary, err := mon.Summary(ctx)
		if err != nil {
			return DashboardLoadedMsg{Realtime: realtime, Error: err}
		}
		global, err := mon.GlobalCost(ctx)
		if err != nil {
			return DashboardLoadedMsg{Realtime: realtime, Summary: summary, Error: err}
		}

		return DashboardLoadedMsg{
			Realtime: realtime,
			Summary:  summary,
			Global:   global,
			Band:     mon.Band(global.CurrentSpend),
		}
	}
}

// loadAnomaliesCmd returns a command that loads anomalies and their stats.
func loadAnomaliesCmd(mgr *services.Manager, filter models.AnomalyFilter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		list, err := mgr.Anomalies().List(ctx, filter)
		if err != nil {
			return AnomaliesLoadedMsg{Error: err}
		}
		stats, err := mgr.Anomalies().Stats(ctx)
		if err != nil {
			return AnomaliesLoadedMsg{Anomalies: list, Error: err}
		}
		return AnomaliesLoadedMsg{Anomalies: list, Stats: stats}
	}
}

// loadAlertRulesCmd returns a command that loads the alert rules.
func loadAlertRulesCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		rules, err := mgr.Alerts().Rules(ctx)
		return AlertRulesLoadedMsg{Rules: rules, Error: err}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// WaitForServiceEvent is the public version for use in models.
func WaitForServiceEvent(ch <-chan services.ServiceEvent) tea.Cmd {
	return services.WaitForEvent(ch)
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// switchTenantCmd returns a command that switches the active tenant.
func switchTenantCmd(mgr *services.Manager, name string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.SwitchTenant(name)
		return SwitchTenantResultMsg{
			Name:    name,
			Success: err == nil,
			Error:   err,
		}
	}
}

// notifyCmd emits a toast of the given kind for its standard duration.
func notifyCmd(kind NotificationType, message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: kind, Message: message, Duration: duration}
	}
}

func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// delayedCmd replays an arbitrary message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// Commands exposes the command constructors to tab packages, which
// cannot reach the unexported functions directly.
type Commands struct {
	manager *services.Manager
}

func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

func (c *Commands) Tick(interval time.Duration) tea.Cmd { return tickCmd(interval) }
func (c *Commands) DefaultTick() tea.Cmd                { return defaultTickCmd() }
func (c *Commands) Quit() tea.Cmd                       { return tea.Quit }
func (c *Commands) Batch(cmds ...tea.Cmd) tea.Cmd       { return tea.Batch(cmds...) }

func (c *Commands) LoadDashboard() tea.Cmd { return loadDashboardCmd(c.manager) }

func (c *Commands) LoadAnomalies(filter models.AnomalyFilter) tea.Cmd {
	return loadAnomaliesCmd(c.manager, filter)
}

func (c *Commands) LoadAlertRules() tea.Cmd { return loadAlertRulesCmd(c.manager) }

func (c *Commands) SubscribeToServices() tea.Cmd { return subscribeToServicesCmd(c.manager) }

func (c *Commands) SwitchTenant(name string) tea.Cmd { return switchTenantCmd(c.manager, name) }

func (c *Commands) NotifySuccess(message string) tea.Cmd { return notifySuccessCmd(message) }
func (c *Commands) NotifyError(message string) tea.Cmd   { return notifyErrorCmd(message) }
func (c *Commands) NotifyWarning(message string) tea.Cmd { return notifyWarningCmd(message) }
func (c *Commands) NotifyInfo(message string) tea.Cmd    { return notifyInfoCmd(message) }

func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}
