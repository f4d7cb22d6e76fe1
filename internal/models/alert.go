package models

import "time"

// AlertChannel is the delivery mechanism for alert notifications.
type AlertChannel string

// Supported alert channels.
const (
	ChannelEmail   AlertChannel = "EMAIL"
	ChannelSlack   AlertChannel = "SLACK"
	ChannelWebhook AlertChannel = "WEBHOOK"
)

// AlertRule is a user-configured notification policy. The client holds a
// full list cache invalidated on any rule mutation.
type AlertRule struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Enabled         bool              `json:"enabled"`
	Severities      []AnomalySeverity `json:"severity"`
	Categories      []string          `json:"category"`
	Channel         AlertChannel      `json:"channel"`
	Recipients      []string          `json:"recipients"`
	ThrottleMinutes int               `json:"throttleMinutes"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// AlertHistoryStatus is the delivery outcome of one notification.
type AlertHistoryStatus string

// Delivery outcomes.
const (
	AlertSent    AlertHistoryStatus = "SENT"
	AlertFailed  AlertHistoryStatus = "FAILED"
	AlertPending AlertHistoryStatus = "PENDING"
)

// AlertHistoryEntry records one sent or failed notification. The history
// is append-only from the client's point of view.
type AlertHistoryEntry struct {
	ID        int64              `json:"id"`
	RuleID    int64              `json:"ruleId"`
	RuleName  string             `json:"ruleName,omitempty"`
	AnomalyID int64              `json:"anomalyId"`
	Channel   AlertChannel       `json:"channel"`
	Recipient string             `json:"recipient"`
	Status    AlertHistoryStatus `json:"status"`
	Error     string             `json:"error,omitempty"`
	SentAt    time.Time          `json:"sentAt"`
}

// AlertHistoryFilter narrows alert history queries.
type AlertHistoryFilter struct {
	RuleID int64
	Status AlertHistoryStatus
	Limit  int
}
