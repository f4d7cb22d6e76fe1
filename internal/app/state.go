// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsdeck/opsdeck/internal/models"
)

// NotificationType classifies a toast.
type NotificationType int

const (
	NotificationSuccess NotificationType = iota
	NotificationError
	NotificationWarning
	NotificationInfo
	NotificationLoading
)

var notificationTypeNames = map[NotificationType]string{
	NotificationSuccess: "success",
	NotificationError:   "error",
	NotificationWarning: "warning",
	NotificationInfo:    "info",
	NotificationLoading: "loading",
}

func (n NotificationType) String() string {
	if name, ok := notificationTypeNames[n]; ok {
		return name
	}
	return "unknown"
}

// LoadingNotificationID is the fixed ID of the single loading toast,
// which is updated in place rather than stacked.
const LoadingNotificationID = "__loading__"

// maxNotifications caps the toast backlog.
const maxNotifications = 10

// Notification is a user-facing toast message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the toast has outlived its duration.
// A zero duration means it stays until removed explicitly.
func (n *Notification) IsExpired() bool {
	return n.Duration > 0 && time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks which resources have a fetch in flight.
type LoadingState struct {
	Initial    bool
	Monitoring bool
	Anomalies  bool
	Alerts     bool
}

// State is the shared application state read by every tab.
type State struct {
	mu sync.RWMutex

	Realtime     *models.RealtimeUsageStats
	Summary      *models.UsageSummary
	GlobalCost   *models.GlobalCost
	CostBand     models.CostBand
	AnomalyStats *models.AnomalyStats

	Tenants      []models.TenantProfile
	ActiveTenant *models.TenantProfile

	Loading LoadingState

	LastUpdated time.Time

	notifications []Notification
}

// NewState returns an empty state with the initial load pending.
func NewState() *State {
	return &State{Loading: LoadingState{Initial: true}}
}

// SetLoading flips the in-flight flag for one resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "monitoring":
		s.Loading.Monitoring = loading
	case "anomalies":
		s.Loading.Anomalies = loading
	case "alerts":
		s.Loading.Alerts = loading
	}
}

// AnyLoading reports whether any fetch is in flight.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.Loading
	return l.Initial || l.Monitoring || l.Anomalies || l.Alerts
}

// IsInitialLoading reports whether the first load has not finished.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// SetRealtime updates the live usage counters.
func (s *State) SetRealtime(stats *models.RealtimeUsageStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Realtime = stats
	s.LastUpdated = time.Now()
}

// GetRealtime returns the live usage counters.
func (s *State) GetRealtime() *models.RealtimeUsageStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Realtime
}

// SetSummary updates the period usage summary.
func (s *State) SetSummary(summary *models.UsageSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Summary = summary
	s.LastUpdated = time.Now()
}

// GetSummary returns the period usage summary.
func (s *State) GetSummary() *models.UsageSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Summary
}

// SetCost updates the global cost figures and the derived band.
func (s *State) SetCost(global *models.GlobalCost, band models.CostBand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GlobalCost = global
	s.CostBand = band
	s.LastUpdated = time.Now()
}

// GetCost returns the global cost figures and the derived band.
func (s *State) GetCost() (*models.GlobalCost, models.CostBand) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.GlobalCost, s.CostBand
}

// SetAnomalyStats updates the anomaly population summary.
func (s *State) SetAnomalyStats(stats *models.AnomalyStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AnomalyStats = stats
	s.LastUpdated = time.Now()
}

// GetAnomalyStats returns the anomaly population summary.
func (s *State) GetAnomalyStats() *models.AnomalyStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AnomalyStats
}

// SetTenants updates the tenant roster and the active tenant.
func (s *State) SetTenants(tenants []models.TenantProfile, active *models.TenantProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tenants = tenants
	s.ActiveTenant = active
}

// GetTenants returns a copy of the tenant roster.
func (s *State) GetTenants() []models.TenantProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.Tenants)
}

// GetActiveTenant returns the active tenant profile.
func (s *State) GetActiveTenant() *models.TenantProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ActiveTenant
}

// AddNotification queues a toast and returns its ID.
func (s *State) AddNotification(kind NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}
	s.notifications = append(s.notifications, n)
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}
	return n.ID
}

// RemoveNotification drops the toast with the given ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.ID == id
	})
}

// ClearExpiredNotifications drops toasts past their duration.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.IsExpired()
	})
}

// GetNotifications returns the toasts that are still live.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	live := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			live = append(live, n)
		}
	}
	return live
}

// ClearAllNotifications drops every toast.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}

// SetLoadingNotification shows or updates the single loading toast.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}
	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading toast.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.ID == LoadingNotificationID
	})
}

// GetLastUpdated returns the time of the most recent data update.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns how long ago data was last updated.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
