package models

import "time"

// ServiceHealth is the health of one backing service.
type ServiceHealth struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"` // "healthy", "degraded", "down"
	LatencyMs float64   `json:"latencyMs"`
	CheckedAt time.Time `json:"checkedAt"`
}

// InfrastructureHealth aggregates backing-service health checks.
type InfrastructureHealth struct {
	Overall  string          `json:"overall"`
	Services []ServiceHealth `json:"services"`
}

// LatencyStats carries request latency percentiles computed server-side.
type LatencyStats struct {
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// ErrorStats summarizes recent request errors.
type ErrorStats struct {
	Total      int64            `json:"total"`
	Rate       float64          `json:"rate"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByEndpoint []EndpointErrors `json:"byEndpoint"`
}

// EndpointErrors attributes errors to one endpoint.
type EndpointErrors struct {
	Endpoint string `json:"endpoint"`
	Count    int64  `json:"count"`
}

// SystemMetrics is the server's own resource usage.
type SystemMetrics struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	MemoryUsedMB  float64 `json:"memoryUsedMb"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	Goroutines    int     `json:"goroutines,omitempty"`
}

// SlowQuery is one database query exceeding the slow threshold.
type SlowQuery struct {
	Query      string    `json:"query"`
	DurationMs float64   `json:"durationMs"`
	Calls      int64     `json:"calls"`
	LastSeen   time.Time `json:"lastSeen"`
}

// SlowQueryFilter narrows slow-query reads.
type SlowQueryFilter struct {
	Limit       int
	MinDuration float64
}
