package app

import (
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/internal/models"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.Loading.Initial != true {
		t.Error("Initial loading should be true")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading("anomalies", true)
	if !s.Loading.Anomalies {
		t.Error("Anomalies loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading("anomalies", false)
	// Initial is still true
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading("initial", false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}
}

func TestState_MonitoringData(t *testing.T) {
	s := NewState()

	s.SetRealtime(&models.RealtimeUsageStats{
		Last5Minutes: models.WindowCounters{Calls: 5},
	})
	if got := s.GetRealtime(); got == nil || got.Last5Minutes.Calls != 5 {
		t.Error("GetRealtime should return the stored counters")
	}

	s.SetSummary(&models.UsageSummary{TotalCalls: 100})
	if got := s.GetSummary(); got == nil || got.TotalCalls != 100 {
		t.Error("GetSummary should return the stored summary")
	}

	s.SetCost(&models.GlobalCost{CurrentSpend: 120}, models.CostBandWarning)
	global, band := s.GetCost()
	if global == nil || global.CurrentSpend != 120 {
		t.Error("GetCost should return the stored figures")
	}
	if band != models.CostBandWarning {
		t.Errorf("band = %v, want WARNING", band)
	}

	s.SetAnomalyStats(&models.AnomalyStats{Total: 3, Open: 2})
	if got := s.GetAnomalyStats(); got == nil || got.Open != 2 {
		t.Error("GetAnomalyStats should return the stored stats")
	}
}

func TestState_Tenants(t *testing.T) {
	s := NewState()

	tenants := []models.TenantProfile{
		{Name: "acme", TenantID: 1},
		{Name: "globex", TenantID: 2},
	}
	s.SetTenants(tenants, &tenants[1])

	if got := s.GetTenants(); len(got) != 2 {
		t.Errorf("GetTenants len = %d, want 2", len(got))
	}

	active := s.GetActiveTenant()
	if active == nil {
		t.Fatal("GetActiveTenant returned nil")
	}
	if active.Name != "globex" {
		t.Errorf("active tenant = %s, want globex", active.Name)
	}
}

func TestState_NotificationLifecycle(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	if live := s.GetNotifications(); len(live) != 1 || live[0].Message != "test" {
		t.Errorf("GetNotifications = %v, want one toast with message test", live)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("toast should be gone after RemoveNotification")
	}
}

func TestState_NotificationCap(t *testing.T) {
	s := NewState()
	for i := 0; i < maxNotifications+5; i++ {
		s.AddNotification(NotificationInfo, "n", time.Minute)
	}
	if got := len(s.GetNotifications()); got != maxNotifications {
		t.Errorf("live toasts = %d, want cap %d", got, maxNotifications)
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()
	s.notifications = []Notification{
		{ID: "expired", CreatedAt: time.Now().Add(-2 * time.Minute), Duration: time.Minute},
		{ID: "active", CreatedAt: time.Now(), Duration: time.Minute},
	}

	s.ClearExpiredNotifications()

	live := s.GetNotifications()
	if len(live) != 1 || live[0].ID != "active" {
		t.Errorf("after expiry sweep got %v, want only the active toast", live)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	if live := s.GetNotifications(); len(live) != 1 || live[0].ID != LoadingNotificationID {
		t.Fatalf("expected single loading toast, got %v", live)
	}

	// A second call updates the message instead of stacking.
	s.SetLoadingNotification("still loading...")
	live := s.GetNotifications()
	if len(live) != 1 {
		t.Errorf("loading toast stacked: %d entries", len(live))
	}
	if live[0].Message != "still loading..." {
		t.Errorf("message = %q, want still loading...", live[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("loading toast should be cleared")
	}
}

func TestState_LastUpdated(t *testing.T) {
	s := NewState()

	if s.TimeSinceUpdate() != 0 {
		t.Error("TimeSinceUpdate should be zero before any update")
	}

	s.SetRealtime(&models.RealtimeUsageStats{})
	if s.GetLastUpdated().IsZero() {
		t.Error("LastUpdated should be set after a write")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationType(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
