package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/opsdeck/opsdeck/internal/models"
)

// UsageSummary fetches aggregate usage statistics for a period.
func (c *Client) UsageSummary(ctx context.Context, period models.UsagePeriod) (*models.UsageSummary, error) {
	q := url.Values{"period": {string(period)}}
	var out models.UsageSummary
	if err := c.get(ctx, "/ai-monitoring/usage/summary", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RealtimeUsage fetches the rolling-window counters.
func (c *Client) RealtimeUsage(ctx context.Context) (*models.RealtimeUsageStats, error) {
	var out models.RealtimeUsageStats
	if err := c.get(ctx, "/ai-monitoring/usage/realtime", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UsageTrends fetches a daily time series over the last days days.
func (c *Client) UsageTrends(ctx context.Context, days int) ([]models.UsageTrendPoint, error) {
	q := url.Values{"days": {strconv.Itoa(days)}}
	var out []models.UsageTrendPoint
	if err := c.get(ctx, "/ai-monitoring/usage/trends", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CostBreakdown fetches cost attribution for a period.
func (c *Client) CostBreakdown(ctx context.Context, period models.UsagePeriod) (*models.CostBreakdown, error) {
	q := url.Values{"period": {string(period)}}
	var out models.CostBreakdown
	if err := c.get(ctx, "/ai-monitoring/costs/breakdown", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GlobalCost fetches the platform-wide spend position for a period.
func (c *Client) GlobalCost(ctx context.Context, period models.UsagePeriod) (*models.GlobalCost, error) {
	q := url.Values{"period": {string(period)}}
	var out models.GlobalCost
	if err := c.get(ctx, "/ai-monitoring/costs/global", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InfrastructureHealth fetches backing-service health checks.
func (c *Client) InfrastructureHealth(ctx context.Context) (*models.InfrastructureHealth, error) {
	var out models.InfrastructureHealth
	if err := c.get(ctx, "/monitoring/infrastructure", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LatencyStats fetches request latency percentiles.
func (c *Client) LatencyStats(ctx context.Context) (*models.LatencyStats, error) {
	var out models.LatencyStats
	if err := c.get(ctx, "/monitoring/infrastructure/latency", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ErrorStats fetches the recent error summary.
func (c *Client) ErrorStats(ctx context.Context) (*models.ErrorStats, error) {
	var out models.ErrorStats
	if err := c.get(ctx, "/monitoring/errors", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SystemMetrics fetches the server's own resource usage.
func (c *Client) SystemMetrics(ctx context.Context) (*models.SystemMetrics, error) {
	var out models.SystemMetrics
	if err := c.get(ctx, "/monitoring/system", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SlowQueries fetches database queries exceeding the slow threshold.
func (c *Client) SlowQueries(ctx context.Context, filter models.SlowQueryFilter) ([]models.SlowQuery, error) {
	q := url.Values{}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.MinDuration > 0 {
		q.Set("minDuration", strconv.FormatFloat(filter.MinDuration, 'f', -1, 64))
	}
	var out []models.SlowQuery
	if err := c.get(ctx, "/monitoring/slow-queries", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
