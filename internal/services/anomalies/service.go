// Package anomalies provides anomaly reads and lifecycle mutations.
package anomalies

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/query"
)

// Cache slot operations.
const (
	opList   = "anomalies.list"
	opStats  = "anomalies.stats"
	opRules  = "anomalies.rules"
	opDetail = "anomalies.detail"
)

// Event represents an anomalies service event.
type Event struct {
	Type    EventType
	Error   error
	Anomaly *models.Anomaly
	Stats   *models.AnomalyStats
}

// EventType defines the type of anomalies event.
type EventType int

// Anomaly event types.
const (
	EventListUpdated EventType = iota
	EventStatsUpdated
	EventTransitioned
	EventDetectionStarted
	EventErrorOccurred
)

// Config holds configuration for the anomalies service.
type Config struct {
	PollInterval time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{PollInterval: 60 * time.Second}
}

// Service reads anomalies through the cache and drives lifecycle
// transitions. Every successful transition invalidates the list and
// stats slots; the updated rows are observed by re-fetching, never by
// editing the cached copies.
type Service struct {
	api     *api.Client
	queries *query.Client
	config  Config

	acknowledge   *query.Mutation[int64, *models.Anomaly]
	resolve       *query.Mutation[resolveArgs, *models.Anomaly]
	falsePositive *query.Mutation[int64, *models.Anomaly]
	detect        *query.Mutation[struct{}, struct{}]

	mu           sync.Mutex
	seenCritical map[int64]bool

	eventChan chan Event
	stopChan  chan struct{}
}

type resolveArgs struct {
	id         int64
	resolution string
}

// New creates an anomalies service and starts its polling goroutine.
func New(apiClient *api.Client, queries *query.Client, config Config) *Service {
	if config.PollInterval == 0 {
		config = DefaultConfig()
	}

	s := &Service{
		api:          apiClient,
		queries:      queries,
		config:       config,
		seenCritical: make(map[int64]bool),
		eventChan:    make(chan Event, 100),
		stopChan:     make(chan struct{}),
	}

	s.acknowledge = query.NewMutation(queries,
		func(ctx context.Context, id int64) (*models.Anomaly, error) {
			return s.api.AcknowledgeAnomaly(ctx, id)
		}, transitionTargets[int64])

	s.resolve = query.NewMutation(queries,
		func(ctx context.Context, args resolveArgs) (*models.Anomaly, error) {
			return s.api.ResolveAnomaly(ctx, args.id, args.resolution)
		}, transitionTargets[resolveArgs])

	s.falsePositive = query.NewMutation(queries,
		func(ctx context.Context, id int64) (*models.Anomaly, error) {
			return s.api.MarkAnomalyFalsePositive(ctx, id)
		}, transitionTargets[int64])

	s.detect = query.NewMutation(queries,
		func(ctx context.Context, _ struct{}) (struct{}, error) {
			return struct{}{}, s.api.RunDetection(ctx)
		},
		func(struct{}, struct{}) []query.Key {
			return []query.Key{query.NewKey(opStats)}
		})

	go s.poll()

	return s
}

// transitionTargets declares the slots every status transition invalidates.
// The detail slot is keyed by id; the parameterized list slots are covered
// by an operation-wide invalidation in the mutation wrappers.
func transitionTargets[A any](_ A, result *models.Anomaly) []query.Key {
	targets := []query.Key{query.NewKey(opStats)}
	if result != nil {
		targets = append(targets, query.NewKey(opDetail, result.ID))
	}
	return targets
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// List returns anomalies matching the filter.
func (s *Service) List(ctx context.Context, filter models.AnomalyFilter) ([]models.Anomaly, error) {
	key := listKey(filter)
	return query.Fetch(ctx, s.queries, key, s.config.PollInterval,
		func(ctx context.Context) ([]models.Anomaly, error) {
			return s.api.Anomalies(ctx, filter)
		})
}

// Stats returns the anomaly population summary.
func (s *Service) Stats(ctx context.Context) (*models.AnomalyStats, error) {
	return query.Fetch(ctx, s.queries, query.NewKey(opStats), s.config.PollInterval,
		func(ctx context.Context) (*models.AnomalyStats, error) {
			return s.api.AnomalyStats(ctx)
		})
}

// Rules returns the static detection rule catalog. The catalog never
// expires on its own.
func (s *Service) Rules(ctx context.Context) ([]models.DetectionRule, error) {
	return query.Fetch(ctx, s.queries, query.NewKey(opRules), 0,
		func(ctx context.Context) ([]models.DetectionRule, error) {
			return s.api.DetectionRules(ctx)
		})
}

// Detail returns one anomaly by id. A falsy id issues no request and
// reports an empty, non-loading result.
func (s *Service) Detail(ctx context.Context, id int64) (*models.Anomaly, error) {
	if id == 0 {
		return nil, nil
	}
	return query.Fetch(ctx, s.queries, query.NewKey(opDetail, id), s.config.PollInterval,
		func(ctx context.Context) (*models.Anomaly, error) {
			return s.api.Anomaly(ctx, id)
		})
}

// Acknowledge transitions an anomaly OPEN -> ACKNOWLEDGED.
func (s *Service) Acknowledge(ctx context.Context, id int64) (*models.Anomaly, error) {
	return s.transition(ctx, func(ctx context.Context) (*models.Anomaly, error) {
		return s.acknowledge.Do(ctx, id)
	})
}

// Resolve transitions an anomaly ACKNOWLEDGED -> RESOLVED with optional
// resolution text. The server rejects resolves from any other state.
func (s *Service) Resolve(ctx context.Context, id int64, resolution string) (*models.Anomaly, error) {
	return s.transition(ctx, func(ctx context.Context) (*models.Anomaly, error) {
		return s.resolve.Do(ctx, resolveArgs{id: id, resolution: resolution})
	})
}

// MarkFalsePositive transitions an anomaly to FALSE_POSITIVE.
func (s *Service) MarkFalsePositive(ctx context.Context, id int64) (*models.Anomaly, error) {
	return s.transition(ctx, func(ctx context.Context) (*models.Anomaly, error) {
		return s.falsePositive.Do(ctx, id)
	})
}

// transition runs one lifecycle mutation and widens the invalidation to
// every parameterized list slot.
func (s *Service) transition(ctx context.Context, do func(context.Context) (*models.Anomaly, error)) (*models.Anomaly, error) {
	anomaly, err := do(ctx)
	if err != nil {
		return nil, err
	}
	s.queries.InvalidateOp(opList)
	s.sendEvent(Event{Type: EventTransitioned, Anomaly: anomaly})
	return anomaly, nil
}

// RunDetection triggers a detection run. It is fire-and-forget: the list
// and stats slots are invalidated so the next read observes any created
// anomalies.
func (s *Service) RunDetection(ctx context.Context) error {
	if _, err := s.detect.Do(ctx, struct{}{}); err != nil {
		return err
	}
	s.queries.InvalidateOp(opList)
	s.sendEvent(Event{Type: EventDetectionStarted})
	return nil
}

// TransitionPending reports whether any lifecycle mutation is running.
func (s *Service) TransitionPending() bool {
	return s.acknowledge.Pending() || s.resolve.Pending() || s.falsePositive.Pending()
}

// Refresh force-refetches the unfiltered list and stats and emits events.
func (s *Service) Refresh(ctx context.Context) {
	list, err := query.Refetch(ctx, s.queries, listKey(models.AnomalyFilter{}),
		func(ctx context.Context) ([]models.Anomaly, error) {
			return s.api.Anomalies(ctx, models.AnomalyFilter{})
		})
	if err != nil {
		s.sendEvent(Event{Type: EventErrorOccurred, Error: err})
	} else {
		s.sendEvent(Event{Type: EventListUpdated})
		s.checkCritical(list)
	}

	stats, err := query.Refetch(ctx, s.queries, query.NewKey(opStats),
		func(ctx context.Context) (*models.AnomalyStats, error) {
			return s.api.AnomalyStats(ctx)
		})
	if err != nil {
		s.sendEvent(Event{Type: EventErrorOccurred, Error: err})
		return
	}
	s.sendEvent(Event{Type: EventStatsUpdated, Stats: stats})
}

// checkCritical raises a desktop notification for critical anomalies not
// seen before in this session. Refresh runs from both the poll goroutine
// and manager-driven refreshes, so the seen set is mutex-guarded.
func (s *Service) checkCritical(list []models.Anomaly) {
	var unseen []*models.Anomaly

	s.mu.Lock()
	for i := range list {
		a := &list[i]
		if a.Severity != models.SeverityCritical || a.Status != models.AnomalyOpen {
			continue
		}
		if s.seenCritical[a.ID] {
			continue
		}
		s.seenCritical[a.ID] = true
		unseen = append(unseen, a)
	}
	s.mu.Unlock()

	for _, a := range unseen {
		title := fmt.Sprintf("Critical anomaly: %s", a.Type)
		body := fmt.Sprintf("%s deviated %.1f%% from expected", a.Category, a.Deviation)
		if err := beeep.Notify(title, body, ""); err != nil {
			logger.Warn("desktop notification failed", "error", err)
		}
	}
}

// poll refreshes anomalies on the configured interval.
func (s *Service) poll() {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Refresh(context.Background())
		case <-s.stopChan:
			return
		}
	}
}

// listKey builds the slot key for a filtered list read.
func listKey(filter models.AnomalyFilter) query.Key {
	return query.NewKey(opList, filter.Category, filter.Severity, filter.Status, filter.TenantID)
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

// Close stops the polling goroutine.
func (s *Service) Close() error {
	close(s.stopChan)
	return nil
}
