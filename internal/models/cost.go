package models

// CostSlice is one attribution bucket in a cost breakdown.
type CostSlice struct {
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	Calls   int64   `json:"calls"`
	Percent float64 `json:"percent"`
}

// CostBreakdown attributes spend across tools, models and tenants for a period.
type CostBreakdown struct {
	Period   UsagePeriod `json:"period"`
	ByTool   []CostSlice `json:"byTool"`
	ByModel  []CostSlice `json:"byModel"`
	ByTenant []CostSlice `json:"byTenant"`
	Total    float64     `json:"total"`
}

// GlobalCost is the platform-wide spend position for a period.
type GlobalCost struct {
	Period       UsagePeriod `json:"period"`
	CurrentSpend float64     `json:"currentSpend"`
	Projected    float64     `json:"projectedSpend"`
	TenantCount  int         `json:"tenantCount"`
}

// CostBand classifies current spend against configured thresholds.
type CostBand int

// Cost bands in escalating order.
const (
	CostBandOK CostBand = iota
	CostBandWarning
	CostBandCritical
)

// String returns the band name.
func (b CostBand) String() string {
	switch b {
	case CostBandWarning:
		return "WARNING"
	case CostBandCritical:
		return "CRITICAL"
	default:
		return "OK"
	}
}

// CostThresholds holds the warning and critical spend thresholds.
// Values are injected from configuration in one place; the defaults
// mirror the server-side alerting configuration.
type CostThresholds struct {
	Warning  float64
	Critical float64
}

// EvaluateCostBand classifies spend into a band. The critical check runs
// first so a spend above both thresholds always reports CRITICAL.
func EvaluateCostBand(currentSpend float64, t CostThresholds) CostBand {
	if t.Critical > 0 && currentSpend/t.Critical*100 >= 100 {
		return CostBandCritical
	}
	if t.Warning > 0 && currentSpend/t.Warning*100 >= 100 {
		return CostBandWarning
	}
	return CostBandOK
}
