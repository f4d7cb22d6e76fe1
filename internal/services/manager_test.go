package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		APIBaseURL:                "http://api.test/api",
		APIToken:                  "test-token",
		RealtimeRefreshInterval:   time.Hour,
		MonitoringRefreshInterval: time.Hour,
		AnomalyRefreshInterval:    time.Hour,
		CostThresholds:            models.CostThresholds{Warning: 100, Critical: 150},
		TenantsPath:               filepath.Join(dir, "tenants.json"),
	}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManagerBroadcastsTenantChanges(t *testing.T) {
	m := newTestManager(t)

	ch, _ := m.Subscribe()

	err := m.Tenants().AddTenant(models.TenantProfile{
		Name:     "acme",
		TenantID: 42,
	})
	if err != nil {
		t.Fatalf("AddTenant failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if tc, ok := ev.(TenantsChangedEvent); ok {
				if len(tc.Tenants) != 1 || tc.Tenants[0].Name != "acme" {
					t.Fatalf("unexpected tenants payload: %+v", tc.Tenants)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for TenantsChangedEvent")
		}
	}
}

func TestSwitchTenantResetsCache(t *testing.T) {
	m := newTestManager(t)

	if err := m.Tenants().AddTenant(models.TenantProfile{Name: "acme", TenantID: 1}); err != nil {
		t.Fatalf("AddTenant failed: %v", err)
	}
	if err := m.Tenants().AddTenant(models.TenantProfile{Name: "globex", TenantID: 2}); err != nil {
		t.Fatalf("AddTenant failed: %v", err)
	}

	if err := m.SwitchTenant("globex"); err != nil {
		t.Fatalf("SwitchTenant failed: %v", err)
	}

	active := m.Tenants().GetActiveTenant()
	if active == nil || active.Name != "globex" {
		t.Fatalf("active tenant = %+v, want globex", active)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	m := newTestManager(t)

	ch, _ := m.Subscribe()
	m.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		// Drained events from before unsubscribe are fine; the channel
		// must end up closed.
		for range ch {
		}
	}
}
