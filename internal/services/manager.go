// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/query"
	"github.com/opsdeck/opsdeck/internal/services/alerts"
	"github.com/opsdeck/opsdeck/internal/services/anomalies"
	"github.com/opsdeck/opsdeck/internal/services/assistant"
	"github.com/opsdeck/opsdeck/internal/services/monitor"
	"github.com/opsdeck/opsdeck/internal/services/tenants"
)

type (
	// TenantsChangedEvent is emitted when the tenant roster or the active
	// tenant changes.
	TenantsChangedEvent struct {
		Tenants      []models.TenantProfile
		ActiveTenant *models.TenantProfile
	}

	// RealtimeUpdatedEvent is emitted when live usage counters refresh.
	RealtimeUpdatedEvent struct {
		Realtime *models.RealtimeUsageStats
	}

	// SummaryUpdatedEvent is emitted when the usage summary refreshes.
	SummaryUpdatedEvent struct {
		Summary *models.UsageSummary
	}

	// CostUpdatedEvent is emitted when global cost figures refresh.
	CostUpdatedEvent struct {
		Global *models.GlobalCost
		Band   models.CostBand
	}

	// BandChangedEvent is emitted when the cost band crosses a threshold.
	BandChangedEvent struct {
		Global *models.GlobalCost
		Band   models.CostBand
	}

	// InfraUpdatedEvent is emitted when infrastructure health refreshes.
	// Tabs re-read the detailed figures through the cache.
	InfraUpdatedEvent struct{}

	// AnomaliesUpdatedEvent is emitted when the anomaly list or stats
	// refresh, or when a lifecycle transition completes.
	AnomaliesUpdatedEvent struct {
		Anomaly *models.Anomaly
		Stats   *models.AnomalyStats
	}

	// AlertsChangedEvent is emitted when the alert rule set changes.
	AlertsChangedEvent struct {
		Rule *models.AlertRule
	}

	// AssistantReplyEvent is emitted when the assistant produces a turn,
	// including the local fallback turn after a failed send.
	AssistantReplyEvent struct {
		Message  *models.AssistantMessage
		Fallback bool
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (TenantsChangedEvent) isServiceEvent()   {}
func (RealtimeUpdatedEvent) isServiceEvent()  {}
func (SummaryUpdatedEvent) isServiceEvent()   {}
func (CostUpdatedEvent) isServiceEvent()      {}
func (BandChangedEvent) isServiceEvent()      {}
func (InfraUpdatedEvent) isServiceEvent()     {}
func (AnomaliesUpdatedEvent) isServiceEvent() {}
func (AlertsChangedEvent) isServiceEvent()    {}
func (AssistantReplyEvent) isServiceEvent()   {}
func (ErrorEvent) isServiceEvent()            {}

// Manager orchestrates services and event routing. A tenant switch
// re-points the API client and drops the entire cache, so every tab
// re-reads under the new tenant scope.
type Manager struct {
	mu        sync.RWMutex
	api       *api.Client
	queries   *query.Client
	tenants   *tenants.Service
	monitor   *monitor.Service
	anomalies *anomalies.Service
	alerts    *alerts.Service
	assistant *assistant.Service

	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		api:       api.New(cfg.APIBaseURL, cfg.APIToken),
		queries:   query.New(),
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
	}
	if cfg.TenantID != 0 {
		m.api.SetTenant(cfg.TenantID)
	}

	var err error
	m.tenants, err = tenants.New(cfg.TenantsPath)
	if err != nil {
		return nil, err
	}

	monitorConfig := monitor.DefaultConfig()
	monitorConfig.RealtimeInterval = cfg.RealtimeRefreshInterval
	monitorConfig.MonitoringInterval = cfg.MonitoringRefreshInterval
	monitorConfig.Thresholds = cfg.CostThresholds
	m.monitor = monitor.New(m.api, m.queries, monitorConfig)

	anomalyConfig := anomalies.DefaultConfig()
	anomalyConfig.PollInterval = cfg.AnomalyRefreshInterval
	m.anomalies = anomalies.New(m.api, m.queries, anomalyConfig)

	m.alerts = alerts.New(m.api, m.queries, alerts.DefaultConfig())
	m.assistant = assistant.New(m.api, m.queries, assistant.DefaultConfig())

	if active := m.tenants.GetActiveTenant(); active != nil {
		m.applyTenant(active)
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.tenants.Events():
			m.handleTenantEvent(event)

		case event := <-m.monitor.Events():
			m.handleMonitorEvent(event)

		case event := <-m.anomalies.Events():
			m.handleAnomalyEvent(event)

		case event := <-m.alerts.Events():
			m.handleAlertEvent(event)

		case event := <-m.assistant.Events():
			m.handleAssistantEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleTenantEvent converts and broadcasts tenant events. An active
// tenant change re-scopes the API client and resets the cache.
func (m *Manager) handleTenantEvent(event tenants.Event) {
	switch event.Type {
	case tenants.EventProfilesLoaded, tenants.EventProfilesChanged,
		tenants.EventActiveTenantChanged:

		if event.Type == tenants.EventActiveTenantChanged {
			m.applyTenant(m.tenants.GetActiveTenant())
		}

		m.broadcast(TenantsChangedEvent{
			Tenants:      m.tenants.GetTenants(),
			ActiveTenant: m.tenants.GetActiveTenant(),
		})

	case tenants.EventError:
		m.broadcast(ErrorEvent{Service: "tenants", Error: event.Error})
	}
}

// applyTenant points the API client at the tenant and drops every cached
// slot. Cached values from the previous tenant must never be served
// under the new one.
func (m *Manager) applyTenant(t *models.TenantProfile) {
	if t == nil {
		return
	}
	m.api.SetTenant(t.TenantID)
	if t.APIToken != "" {
		m.api.SetToken(t.APIToken)
	}
	m.queries.Reset()
}

func (m *Manager) handleMonitorEvent(event monitor.Event) {
	switch event.Type {
	case monitor.EventRealtimeUpdated:
		m.broadcast(RealtimeUpdatedEvent{Realtime: event.Realtime})

	case monitor.EventSummaryUpdated:
		m.broadcast(SummaryUpdatedEvent{Summary: event.Summary})

	case monitor.EventCostUpdated:
		m.broadcast(CostUpdatedEvent{Global: event.Global, Band: event.Band})

	case monitor.EventBandChanged:
		m.broadcast(BandChangedEvent{Global: event.Global, Band: event.Band})

	case monitor.EventInfraUpdated:
		m.broadcast(InfraUpdatedEvent{})

	case monitor.EventErrorOccurred:
		m.broadcast(ErrorEvent{Service: "monitor", Error: event.Error})
	}
}

func (m *Manager) handleAnomalyEvent(event anomalies.Event) {
	switch event.Type {
	case anomalies.EventListUpdated, anomalies.EventStatsUpdated,
		anomalies.EventTransitioned, anomalies.EventDetectionStarted:
		m.broadcast(AnomaliesUpdatedEvent{Anomaly: event.Anomaly, Stats: event.Stats})

	case anomalies.EventErrorOccurred:
		m.broadcast(ErrorEvent{Service: "anomalies", Error: event.Error})
	}
}

func (m *Manager) handleAlertEvent(event alerts.Event) {
	switch event.Type {
	case alerts.EventRulesChanged, alerts.EventRuleTested, alerts.EventDigestSent:
		m.broadcast(AlertsChangedEvent{Rule: event.Rule})

	case alerts.EventErrorOccurred:
		m.broadcast(ErrorEvent{Service: "alerts", Error: event.Error})
	}
}

func (m *Manager) handleAssistantEvent(event assistant.Event) {
	switch event.Type {
	case assistant.EventReplyReceived:
		m.broadcast(AssistantReplyEvent{Message: event.Message})

	case assistant.EventFallbackShown:
		m.broadcast(AssistantReplyEvent{Message: event.Message, Fallback: true})

	case assistant.EventCleared:
		m.broadcast(AssistantReplyEvent{})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// SwitchTenant activates the named tenant profile.
func (m *Manager) SwitchTenant(name string) error {
	return m.tenants.SetActiveTenant(name)
}

// RefreshAll force-refreshes every polled surface.
func (m *Manager) RefreshAll(ctx context.Context) {
	go func() { _, _ = m.monitor.RefreshRealtime(ctx) }()
	go m.monitor.RefreshMonitoring(ctx)
	go m.anomalies.Refresh(ctx)
}

// Tenants returns the tenants service.
func (m *Manager) Tenants() *tenants.Service {
	return m.tenants
}

// Monitor returns the monitor service.
func (m *Manager) Monitor() *monitor.Service {
	return m.monitor
}

// Anomalies returns the anomalies service.
func (m *Manager) Anomalies() *anomalies.Service {
	return m.anomalies
}

// Alerts returns the alerts service.
func (m *Manager) Alerts() *alerts.Service {
	return m.alerts
}

// Assistant returns the assistant service.
func (m *Manager) Assistant() *assistant.Service {
	return m.assistant
}

// Queries returns the shared cache client.
func (m *Manager) Queries() *query.Client {
	return m.queries
}

// API returns the shared API client.
func (m *Manager) API() *api.Client {
	return m.api
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.tenants.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := m.monitor.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := m.anomalies.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
