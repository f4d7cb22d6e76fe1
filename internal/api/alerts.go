package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/opsdeck/opsdeck/internal/models"
)

// AlertRules fetches every configured alert rule.
func (c *Client) AlertRules(ctx context.Context) ([]models.AlertRule, error) {
	var out []models.AlertRule
	if err := c.get(ctx, "/monitoring/alerts/rules", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAlertRule creates a rule and returns the stored copy.
func (c *Client) CreateAlertRule(ctx context.Context, rule models.AlertRule) (*models.AlertRule, error) {
	var out models.AlertRule
	if err := c.post(ctx, "/monitoring/alerts/rules", rule, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAlertRule replaces a rule by id.
func (c *Client) UpdateAlertRule(ctx context.Context, rule models.AlertRule) (*models.AlertRule, error) {
	var out models.AlertRule
	if err := c.put(ctx, fmt.Sprintf("/monitoring/alerts/rules/%d", rule.ID), rule, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAlertRule removes a rule by id.
func (c *Client) DeleteAlertRule(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/monitoring/alerts/rules/%d", id))
}

// TestAlertRule asks the server to send a test notification for a rule.
func (c *Client) TestAlertRule(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/monitoring/alerts/rules/%d/test", id), nil, nil)
}

// AlertHistory fetches sent/failed notifications, newest first.
func (c *Client) AlertHistory(ctx context.Context, filter models.AlertHistoryFilter) ([]models.AlertHistoryEntry, error) {
	q := url.Values{}
	if filter.RuleID != 0 {
		q.Set("ruleId", strconv.FormatInt(filter.RuleID, 10))
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	var out []models.AlertHistoryEntry
	if err := c.get(ctx, "/monitoring/alerts/history", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendDigest asks the server to dispatch the periodic alert digest now.
func (c *Client) SendDigest(ctx context.Context) error {
	return c.post(ctx, "/monitoring/alerts/digest", nil, nil)
}
