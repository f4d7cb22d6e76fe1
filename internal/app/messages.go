package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// DashboardLoadedMsg contains the initial dashboard figures.
type DashboardLoadedMsg struct {
	Realtime *models.RealtimeUsageStats
	Summary  *models.UsageSummary
	Global   *models.GlobalCost
	Band     models.CostBand
	Error    error
}

// AnomaliesLoadedMsg contains a loaded anomaly page.
type AnomaliesLoadedMsg struct {
	Anomalies []models.Anomaly
	Stats     *models.AnomalyStats
	Error     error
}

// AnomalyTransitionMsg contains the result of a lifecycle transition.
type AnomalyTransitionMsg struct {
	Anomaly *models.Anomaly
	Action  string
	Error   error
}

// AlertRulesLoadedMsg contains the loaded alert rules.
type AlertRulesLoadedMsg struct {
	Rules []models.AlertRule
	Error error
}

// AlertHistoryLoadedMsg contains loaded alert delivery history.
type AlertHistoryLoadedMsg struct {
	Entries []models.AlertHistoryEntry
	Error   error
}

// AssistantReplyMsg contains an assistant turn, including the local
// fallback turn produced after a failed send.
type AssistantReplyMsg struct {
	Message *models.AssistantMessage
	Error   error
}

// SwitchTenantMsg requests switching to a different tenant.
type SwitchTenantMsg struct {
	Name string
}

// SwitchTenantResultMsg contains the result of a tenant switch.
type SwitchTenantResultMsg struct {
	Name    string
	Success bool
	Error   error
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "monitoring", "anomalies", "alerts"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// DelayedMsg wraps a message to be sent after a delay.
type DelayedMsg struct {
	Delay time.Duration
	Msg   tea.Msg
}
