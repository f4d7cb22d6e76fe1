package models

import "time"

// TenantProfile identifies one platform tenant the dashboard can scope to.
// Profiles live in a local JSON file that is hot-reloaded on change.
type TenantProfile struct {
	Name     string    `json:"name"`
	TenantID int64     `json:"tenantId"`
	APIToken string    `json:"apiToken,omitempty"`
	AddedAt  time.Time `json:"addedAt,omitempty"`
	IsActive bool      `json:"isActive,omitempty"`
}

// Clone returns a copy of the profile.
func (t *TenantProfile) Clone() TenantProfile {
	return *t
}
