// Package alerts manages alert rule configuration and delivery history.
package alerts

import (
	"context"
	"time"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/query"
)

// Cache slot operations.
const (
	opRules   = "alerts.rules"
	opHistory = "alerts.history"
)

// Event represents an alerts service event.
type Event struct {
	Type  EventType
	Error error
	Rule  *models.AlertRule
}

// EventType defines the type of alerts event.
type EventType int

// Alert event types.
const (
	EventRulesChanged EventType = iota
	EventRuleTested
	EventDigestSent
	EventErrorOccurred
)

// Config holds configuration for the alerts service.
type Config struct {
	HistoryStaleAfter time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{HistoryStaleAfter: 30 * time.Second}
}

// Service manages alert rules and their delivery history. The rule list
// is a single full-list cache with no expiry; every rule mutation
// invalidates it, so the list re-reads server state rather than being
// patched locally.
type Service struct {
	api     *api.Client
	queries *query.Client
	config  Config

	create *query.Mutation[models.AlertRule, *models.AlertRule]
	update *query.Mutation[models.AlertRule, *models.AlertRule]
	delete *query.Mutation[int64, struct{}]

	eventChan chan Event
}

// New creates an alerts service.
func New(apiClient *api.Client, queries *query.Client, config Config) *Service {
	if config.HistoryStaleAfter == 0 {
		config = DefaultConfig()
	}

	s := &Service{
		api:       apiClient,
		queries:   queries,
		config:    config,
		eventChan: make(chan Event, 100),
	}

	rulesTarget := func() []query.Key { return []query.Key{query.NewKey(opRules)} }

	s.create = query.NewMutation(queries,
		func(ctx context.Context, rule models.AlertRule) (*models.AlertRule, error) {
			return s.api.CreateAlertRule(ctx, rule)
		},
		func(models.AlertRule, *models.AlertRule) []query.Key { return rulesTarget() })

	s.update = query.NewMutation(queries,
		func(ctx context.Context, rule models.AlertRule) (*models.AlertRule, error) {
			return s.api.UpdateAlertRule(ctx, rule)
		},
		func(models.AlertRule, *models.AlertRule) []query.Key { return rulesTarget() })

	s.delete = query.NewMutation(queries,
		func(ctx context.Context, id int64) (struct{}, error) {
			return struct{}{}, s.api.DeleteAlertRule(ctx, id)
		},
		func(int64, struct{}) []query.Key { return rulesTarget() })

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Rules returns all alert rules. The list never expires on its own; rule
// mutations invalidate it.
func (s *Service) Rules(ctx context.Context) ([]models.AlertRule, error) {
	return query.Fetch(ctx, s.queries, query.NewKey(opRules), 0,
		func(ctx context.Context) ([]models.AlertRule, error) {
			return s.api.AlertRules(ctx)
		})
}

// History returns delivery history matching the filter.
func (s *Service) History(ctx context.Context, filter models.AlertHistoryFilter) ([]models.AlertHistoryEntry, error) {
	key := query.NewKey(opHistory, filter.RuleID, filter.Status, filter.Limit)
	return query.Fetch(ctx, s.queries, key, s.config.HistoryStaleAfter,
		func(ctx context.Context) ([]models.AlertHistoryEntry, error) {
			return s.api.AlertHistory(ctx, filter)
		})
}

// Create adds a new alert rule.
func (s *Service) Create(ctx context.Context, rule models.AlertRule) (*models.AlertRule, error) {
	created, err := s.create.Do(ctx, rule)
	if err != nil {
		return nil, err
	}
	s.sendEvent(Event{Type: EventRulesChanged, Rule: created})
	return created, nil
}

// Update replaces an existing alert rule.
func (s *Service) Update(ctx context.Context, rule models.AlertRule) (*models.AlertRule, error) {
	updated, err := s.update.Do(ctx, rule)
	if err != nil {
		return nil, err
	}
	s.sendEvent(Event{Type: EventRulesChanged, Rule: updated})
	return updated, nil
}

// Delete removes an alert rule.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.delete.Do(ctx, id); err != nil {
		return err
	}
	s.sendEvent(Event{Type: EventRulesChanged})
	return nil
}

// Test sends a test notification through the rule's channel. The
// delivery lands in history, so the history slots are invalidated.
func (s *Service) Test(ctx context.Context, id int64) error {
	if err := s.api.TestAlertRule(ctx, id); err != nil {
		return err
	}
	s.queries.InvalidateOp(opHistory)
	s.sendEvent(Event{Type: EventRuleTested})
	return nil
}

// SendDigest requests an immediate digest email.
func (s *Service) SendDigest(ctx context.Context) error {
	if err := s.api.SendDigest(ctx); err != nil {
		return err
	}
	s.sendEvent(Event{Type: EventDigestSent})
	return nil
}

// MutationPending reports whether any rule mutation is running.
func (s *Service) MutationPending() bool {
	return s.create.Pending() || s.update.Pending() || s.delete.Pending()
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}
