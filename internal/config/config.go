// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/opsdeck/opsdeck/internal/models"
)

// Config holds the application configuration.
type Config struct {
	APIBaseURL string
	APIToken   string
	TenantID   int64

	RealtimeRefreshInterval   time.Duration
	MonitoringRefreshInterval time.Duration
	AnomalyRefreshInterval    time.Duration

	CostThresholds models.CostThresholds

	TenantsPath  string
	DatabasePath string
	LogPath      string
}

// Default values. The cost thresholds mirror the server-side alerting
// configuration and can be overridden per deployment.
const (
	defaultRealtimeRefreshInterval   = 10 * time.Second
	defaultMonitoringRefreshInterval = 30 * time.Second
	defaultAnomalyRefreshInterval    = 60 * time.Second

	defaultCostWarningThreshold  = 100.0
	defaultCostCriticalThreshold = 150.0
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		APIBaseURL: getEnvString("OPSDECK_API_URL", "http://localhost:3001/api"),
		APIToken:   getEnvString("OPSDECK_API_TOKEN", ""),
		TenantID:   getEnvInt64("OPSDECK_TENANT_ID", 0),

		RealtimeRefreshInterval:   getEnvDuration("REALTIME_REFRESH_INTERVAL", defaultRealtimeRefreshInterval),
		MonitoringRefreshInterval: getEnvDuration("MONITORING_REFRESH_INTERVAL", defaultMonitoringRefreshInterval),
		AnomalyRefreshInterval:    getEnvDuration("ANOMALY_REFRESH_INTERVAL", defaultAnomalyRefreshInterval),

		CostThresholds: models.CostThresholds{
			Warning:  getEnvFloat("COST_WARNING_THRESHOLD", defaultCostWarningThreshold),
			Critical: getEnvFloat("COST_CRITICAL_THRESHOLD", defaultCostCriticalThreshold),
		},

		TenantsPath:  getEnvString("TENANTS_PATH", getDefaultTenantsPath()),
		DatabasePath: getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		LogPath:      getEnvString("OPSDECK_LOG", ""),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("OPSDECK_API_URL must not be empty")
	}
	if cfg.CostThresholds.Warning > cfg.CostThresholds.Critical {
		return nil, fmt.Errorf("COST_WARNING_THRESHOLD (%v) must not exceed COST_CRITICAL_THRESHOLD (%v)",
			cfg.CostThresholds.Warning, cfg.CostThresholds.Critical)
	}

	// Ensure tenants directory exists
	if err := ensureDir(filepath.Dir(cfg.TenantsPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "opsdeck", ".env"),
			filepath.Join(home, ".opsdeck", ".env"),
		)
	}

	return paths
}

// getDefaultTenantsPath returns the default path for the tenant profiles file.
func getDefaultTenantsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tenants.json"
	}
	return filepath.Join(home, ".config", "opsdeck", "tenants.json")
}

// getDefaultDatabasePath returns the default path for the seed database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nexora-demo.db"
	}
	return filepath.Join(home, ".config", "opsdeck", "nexora-demo.db")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt64 retrieves an integer environment variable or returns the default.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
