package tenants

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/internal/models"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	tenantsPath := filepath.Join(t.TempDir(), "tenants.json")

	svc, err := New(tenantsPath)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})

	return svc, tenantsPath
}

func TestNew(t *testing.T) {
	svc, tenantsPath := newTestService(t)

	if svc == nil {
		t.Fatal("New() returned nil service")
	}
	if _, err := os.Stat(tenantsPath); err != nil {
		t.Errorf("tenants file was not created: %v", err)
	}
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New(\"\") should fail")
	}
}

func TestNew_LoadsExistingFile(t *testing.T) {
	tenantsPath := filepath.Join(t.TempDir(), "tenants.json")

	file := ProfilesFile{
		Tenants: []models.TenantProfile{
			{Name: "acme", TenantID: 1},
			{Name: "globex", TenantID: 2},
		},
		ActiveTenant: "globex",
		Version:      1,
	}
	data, _ := json.Marshal(file)
	if err := os.WriteFile(tenantsPath, data, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	svc, err := New(tenantsPath)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer func() {
		_ = svc.Close()
	}()

	if svc.Count() != 2 {
		t.Errorf("Count() = %d, want 2", svc.Count())
	}
	active := svc.GetActiveTenant()
	if active == nil || active.Name != "globex" {
		t.Errorf("active tenant = %v, want globex", active)
	}
}

func TestAddTenant(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.AddTenant(models.TenantProfile{Name: "acme", TenantID: 1})
	if err != nil {
		t.Fatalf("AddTenant() failed: %v", err)
	}

	tenants := svc.GetTenants()
	if len(tenants) != 1 {
		t.Fatalf("GetTenants() returned %d tenants, want 1", len(tenants))
	}
	if tenants[0].AddedAt.IsZero() {
		t.Error("AddedAt should be auto-set")
	}

	// First profile becomes active.
	active := svc.GetActiveTenant()
	if active == nil || active.Name != "acme" {
		t.Errorf("active tenant = %v, want acme", active)
	}
}

func TestAddTenant_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.AddTenant(models.TenantProfile{Name: "acme"}); err != nil {
		t.Fatalf("first AddTenant() failed: %v", err)
	}
	if err := svc.AddTenant(models.TenantProfile{Name: "acme"}); err == nil {
		t.Fatal("AddTenant() should fail for duplicate name")
	}
	if svc.Count() != 1 {
		t.Error("duplicate tenant should not be added")
	}
}

func TestSetActiveTenant(t *testing.T) {
	svc, _ := newTestService(t)

	_ = svc.AddTenant(models.TenantProfile{Name: "acme", TenantID: 1})
	_ = svc.AddTenant(models.TenantProfile{Name: "globex", TenantID: 2})

	if err := svc.SetActiveTenant("globex"); err != nil {
		t.Fatalf("SetActiveTenant() failed: %v", err)
	}
	active := svc.GetActiveTenant()
	if active == nil || active.Name != "globex" {
		t.Errorf("active tenant = %v, want globex", active)
	}

	if err := svc.SetActiveTenant("no-such-tenant"); err == nil {
		t.Error("SetActiveTenant() should fail for unknown name")
	}
}

func TestDeleteTenant(t *testing.T) {
	svc, _ := newTestService(t)

	_ = svc.AddTenant(models.TenantProfile{Name: "acme", TenantID: 1})
	_ = svc.AddTenant(models.TenantProfile{Name: "globex", TenantID: 2})

	if err := svc.DeleteTenant("acme"); err != nil {
		t.Fatalf("DeleteTenant() failed: %v", err)
	}
	if svc.Count() != 1 {
		t.Errorf("Count() = %d, want 1", svc.Count())
	}

	// Active falls back to the remaining profile.
	active := svc.GetActiveTenant()
	if active == nil || active.Name != "globex" {
		t.Errorf("active tenant = %v, want globex", active)
	}

	if err := svc.DeleteTenant("no-such-tenant"); err != nil {
		if svc.Count() != 1 {
			t.Error("failed delete should not change profiles")
		}
	} else {
		t.Error("DeleteTenant() should fail for unknown name")
	}
}

func TestExternalEditReload(t *testing.T) {
	svc, tenantsPath := newTestService(t)

	_ = svc.AddTenant(models.TenantProfile{Name: "acme", TenantID: 1})

	// Simulate another tool rewriting the shared profiles file.
	file := ProfilesFile{
		Tenants: []models.TenantProfile{
			{Name: "acme", TenantID: 1},
			{Name: "globex", TenantID: 2},
		},
		ActiveTenant: "globex",
		Version:      1,
	}
	data, _ := json.Marshal(file)
	if err := os.WriteFile(tenantsPath, data, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if svc.Count() == 2 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if svc.Count() != 2 {
		t.Fatalf("external edit not picked up, Count() = %d", svc.Count())
	}
	active := svc.GetActiveTenant()
	if active == nil || active.Name != "globex" {
		t.Errorf("active tenant = %v, want globex", active)
	}
}
