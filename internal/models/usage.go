// Package models defines data structures and domain types.
package models

import "time"

// UsagePeriod selects the aggregation window for summary and cost queries.
type UsagePeriod string

// Supported aggregation periods.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodWeek  UsagePeriod = "week"
	PeriodMonth UsagePeriod = "month"
)

// ToolUsage represents aggregated calls attributed to a single AI tool.
type ToolUsage struct {
	Tool       string  `json:"tool"`
	Calls      int64   `json:"calls"`
	Tokens     int64   `json:"tokens"`
	Cost       float64 `json:"cost"`
	AvgLatency float64 `json:"avgLatencyMs"`
}

// ModelUsage represents aggregated calls attributed to a single model.
type ModelUsage struct {
	Model  string  `json:"model"`
	Calls  int64   `json:"calls"`
	Tokens int64   `json:"tokens"`
	Cost   float64 `json:"cost"`
}

// UsageSummary represents aggregate AI call statistics for a period.
// It is a server-owned aggregate; the client never mutates it locally.
type UsageSummary struct {
	Period       UsagePeriod  `json:"period"`
	TotalCalls   int64        `json:"totalCalls"`
	TotalTokens  int64        `json:"totalTokens"`
	TotalCost    float64      `json:"totalCost"`
	AvgLatencyMs float64      `json:"avgLatencyMs"`
	SuccessRate  float64      `json:"successRate"`
	TopTools     []ToolUsage  `json:"topTools"`
	TopModels    []ModelUsage `json:"topModels"`
}

// WindowCounters holds rolling counters for a single time window.
type WindowCounters struct {
	Calls  int64   `json:"calls"`
	Tokens int64   `json:"tokens"`
	Cost   float64 `json:"cost"`
}

// ActiveTool is a tool observed in the current rolling window.
type ActiveTool struct {
	Tool     string    `json:"tool"`
	Calls    int64     `json:"calls"`
	LastCall time.Time `json:"lastCall"`
}

// RealtimeUsageStats holds rolling-window counters. Each snapshot
// supersedes the previous one wholesale.
type RealtimeUsageStats struct {
	Last5Minutes WindowCounters `json:"last5Minutes"`
	Last1Hour    WindowCounters `json:"last1Hour"`
	Today        WindowCounters `json:"today"`
	ActiveTools  []ActiveTool   `json:"activeTools"`
}

// UsageTrendPoint is one sample in a usage time series.
type UsageTrendPoint struct {
	Date   time.Time `json:"date"`
	Calls  int64     `json:"calls"`
	Tokens int64     `json:"tokens"`
	Cost   float64   `json:"cost"`
	Errors int64     `json:"errors"`
}
