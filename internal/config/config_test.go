package config

import (
	"path/filepath"
	"testing"
	"time"
)

func setTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	// Keep .env discovery away from the repo checkout.
	t.Chdir(home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := setTestHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:3001/api" {
		t.Errorf("unexpected default API URL: %s", cfg.APIBaseURL)
	}
	if cfg.RealtimeRefreshInterval != 10*time.Second {
		t.Errorf("unexpected realtime interval: %v", cfg.RealtimeRefreshInterval)
	}
	if cfg.MonitoringRefreshInterval != 30*time.Second {
		t.Errorf("unexpected monitoring interval: %v", cfg.MonitoringRefreshInterval)
	}
	if cfg.AnomalyRefreshInterval != 60*time.Second {
		t.Errorf("unexpected anomaly interval: %v", cfg.AnomalyRefreshInterval)
	}
	if cfg.CostThresholds.Warning != 100 || cfg.CostThresholds.Critical != 150 {
		t.Errorf("unexpected cost thresholds: %+v", cfg.CostThresholds)
	}

	wantTenants := filepath.Join(home, ".config", "opsdeck", "tenants.json")
	if cfg.TenantsPath != wantTenants {
		t.Errorf("tenants path = %s, want %s", cfg.TenantsPath, wantTenants)
	}
}

func TestLoadOverrides(t *testing.T) {
	setTestHome(t)

	t.Setenv("OPSDECK_API_URL", "https://api.nexora.example/api")
	t.Setenv("OPSDECK_API_TOKEN", "tok-123")
	t.Setenv("OPSDECK_TENANT_ID", "42")
	t.Setenv("REALTIME_REFRESH_INTERVAL", "5s")
	t.Setenv("MONITORING_REFRESH_INTERVAL", "45")
	t.Setenv("COST_WARNING_THRESHOLD", "250.5")
	t.Setenv("COST_CRITICAL_THRESHOLD", "400")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIBaseURL != "https://api.nexora.example/api" {
		t.Errorf("API URL override not applied: %s", cfg.APIBaseURL)
	}
	if cfg.APIToken != "tok-123" {
		t.Errorf("API token override not applied")
	}
	if cfg.TenantID != 42 {
		t.Errorf("tenant id = %d, want 42", cfg.TenantID)
	}
	if cfg.RealtimeRefreshInterval != 5*time.Second {
		t.Errorf("realtime interval = %v, want 5s", cfg.RealtimeRefreshInterval)
	}
	// Bare numbers are interpreted as seconds.
	if cfg.MonitoringRefreshInterval != 45*time.Second {
		t.Errorf("monitoring interval = %v, want 45s", cfg.MonitoringRefreshInterval)
	}
	if cfg.CostThresholds.Warning != 250.5 || cfg.CostThresholds.Critical != 400 {
		t.Errorf("cost thresholds = %+v", cfg.CostThresholds)
	}
}

func TestLoadRejectsInvertedThresholds(t *testing.T) {
	setTestHome(t)

	t.Setenv("COST_WARNING_THRESHOLD", "500")
	t.Setenv("COST_CRITICAL_THRESHOLD", "100")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for warning threshold above critical")
	}
}

func TestGetEnvDurationFallback(t *testing.T) {
	t.Setenv("TEST_DURATION", "not-a-duration")
	if got := getEnvDuration("TEST_DURATION", 7*time.Second); got != 7*time.Second {
		t.Errorf("invalid duration should fall back to default, got %v", got)
	}
}
