package models

import "time"

// AnomalyStatus is the lifecycle state of a detected anomaly.
type AnomalyStatus string

// Anomaly lifecycle states. Resolved and false-positive are terminal.
const (
	AnomalyOpen          AnomalyStatus = "OPEN"
	AnomalyAcknowledged  AnomalyStatus = "ACKNOWLEDGED"
	AnomalyResolved      AnomalyStatus = "RESOLVED"
	AnomalyFalsePositive AnomalyStatus = "FALSE_POSITIVE"
)

// AnomalySeverity ranks how far a metric deviated.
type AnomalySeverity string

// Severities in escalating order.
const (
	SeverityLow      AnomalySeverity = "LOW"
	SeverityMedium   AnomalySeverity = "MEDIUM"
	SeverityHigh     AnomalySeverity = "HIGH"
	SeverityCritical AnomalySeverity = "CRITICAL"
)

// Anomaly is a server-detected deviation of a monitored metric from its
// expected value. Status transitions happen only through explicit
// mutations; the client reflects them by refetching, never by editing
// the cached copy.
type Anomaly struct {
	ID             int64           `json:"id"`
	Type           string          `json:"type"`
	Category       string          `json:"category"`
	Severity       AnomalySeverity `json:"severity"`
	Status         AnomalyStatus   `json:"status"`
	TenantID       int64           `json:"tenantId,omitempty"`
	Description    string          `json:"description"`
	CurrentValue   float64         `json:"currentValue"`
	ExpectedValue  float64         `json:"expectedValue"`
	Deviation      float64         `json:"deviation"`
	DetectedAt     time.Time       `json:"detectedAt"`
	AcknowledgedAt *time.Time      `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy string          `json:"acknowledgedBy,omitempty"`
	ResolvedAt     *time.Time      `json:"resolvedAt,omitempty"`
	ResolvedBy     string          `json:"resolvedBy,omitempty"`
	Resolution     string          `json:"resolution,omitempty"`
}

// IsTerminal reports whether the status admits no further transitions.
func (s AnomalyStatus) IsTerminal() bool {
	return s == AnomalyResolved || s == AnomalyFalsePositive
}

// CanAcknowledge reports whether an acknowledge transition is legal.
func (s AnomalyStatus) CanAcknowledge() bool {
	return s == AnomalyOpen
}

// CanResolve reports whether a resolve transition is legal.
// Resolution requires a prior acknowledgement.
func (s AnomalyStatus) CanResolve() bool {
	return s == AnomalyAcknowledged
}

// CanMarkFalsePositive reports whether a false-positive transition is legal.
func (s AnomalyStatus) CanMarkFalsePositive() bool {
	return s == AnomalyOpen || s == AnomalyAcknowledged
}

// AnomalyStats summarizes the anomaly population for the stats card.
type AnomalyStats struct {
	Total      int64                     `json:"total"`
	Open       int64                     `json:"open"`
	BySeverity map[AnomalySeverity]int64 `json:"bySeverity"`
	ByCategory map[string]int64          `json:"byCategory"`
	LastRunAt  *time.Time                `json:"lastRunAt,omitempty"`
}

// DetectionRule describes one server-side detection rule. The catalog is
// static reference data and is never auto-refetched.
type DetectionRule struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Metric      string          `json:"metric"`
	Method      string          `json:"method"`
	Severity    AnomalySeverity `json:"severity"`
	Description string          `json:"description"`
}

// AnomalyFilter narrows anomaly list queries.
type AnomalyFilter struct {
	Category string
	Severity AnomalySeverity
	Status   AnomalyStatus
	TenantID int64
}
