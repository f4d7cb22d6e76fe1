package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/opsdeck/opsdeck/internal/models"
)

// Anomalies fetches the anomaly list, optionally filtered.
func (c *Client) Anomalies(ctx context.Context, filter models.AnomalyFilter) ([]models.Anomaly, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Severity != "" {
		q.Set("severity", string(filter.Severity))
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.TenantID != 0 {
		q.Set("tenantId", strconv.FormatInt(filter.TenantID, 10))
	}
	var out []models.Anomaly
	if err := c.get(ctx, "/monitoring/anomalies", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AnomalyStats fetches the anomaly population summary.
func (c *Client) AnomalyStats(ctx context.Context) (*models.AnomalyStats, error) {
	var out models.AnomalyStats
	if err := c.get(ctx, "/monitoring/anomalies/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DetectionRules fetches the static detection rule catalog.
func (c *Client) DetectionRules(ctx context.Context) ([]models.DetectionRule, error) {
	var out []models.DetectionRule
	if err := c.get(ctx, "/monitoring/anomalies/rules", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Anomaly fetches one anomaly by id.
func (c *Client) Anomaly(ctx context.Context, id int64) (*models.Anomaly, error) {
	var out models.Anomaly
	if err := c.get(ctx, fmt.Sprintf("/monitoring/anomalies/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcknowledgeAnomaly transitions an anomaly OPEN -> ACKNOWLEDGED. The
// server rejects illegal transitions.
func (c *Client) AcknowledgeAnomaly(ctx context.Context, id int64) (*models.Anomaly, error) {
	var out models.Anomaly
	if err := c.post(ctx, fmt.Sprintf("/monitoring/anomalies/%d/acknowledge", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// resolveRequest carries the optional resolution text.
type resolveRequest struct {
	Resolution string `json:"resolution,omitempty"`
}

// ResolveAnomaly transitions an anomaly ACKNOWLEDGED -> RESOLVED.
func (c *Client) ResolveAnomaly(ctx context.Context, id int64, resolution string) (*models.Anomaly, error) {
	var out models.Anomaly
	body := resolveRequest{Resolution: resolution}
	if err := c.post(ctx, fmt.Sprintf("/monitoring/anomalies/%d/resolve", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAnomalyFalsePositive transitions an anomaly to FALSE_POSITIVE.
func (c *Client) MarkAnomalyFalsePositive(ctx context.Context, id int64) (*models.Anomaly, error) {
	var out models.Anomaly
	if err := c.post(ctx, fmt.Sprintf("/monitoring/anomalies/%d/false-positive", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunDetection triggers a detection run. Created anomalies are not
// returned; the list must be re-fetched to observe them.
func (c *Client) RunDetection(ctx context.Context) error {
	return c.post(ctx, "/monitoring/anomalies/detect", nil, nil)
}
