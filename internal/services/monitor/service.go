// Package monitor provides usage, cost and infrastructure reads with
// interval polling and cached results.
package monitor

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
	opUsageSummary  = "usage.summary"
	opUsageRealtime = "usage.realtime"
	opUsageTrends   = "usage.trends"
	opCostBreakdown = "costs.breakdown"
	opCostGlobal    = "costs.global"
	opInfra         = "monitoring.infrastructure"
	opLatency       = "monitoring.latency"
	opErrors        = "monitoring.errors"
	opSystem        = "monitoring.system"
	opSlowQueries   = "monitoring.slow-queries"
)

// Event represents a monitor service event.
type Event struct {
	Type     EventType
	Error    error
	Realtime *models.RealtimeUsageStats
	Summary  *models.UsageSummary
	Global   *models.GlobalCost
	Band     models.CostBand
}

// EventType defines the type of monitor event.
type EventType int

// Monitor event types.
const (
	EventRealtimeUpdated EventType = iota
	EventSummaryUpdated
	EventCostUpdated
	EventBandChanged
	EventInfraUpdated
	EventErrorOccurred
)

// Config holds configuration for the monitor service.
type Config struct {
	RealtimeInterval   time.Duration
	MonitoringInterval time.Duration
	Thresholds         models.CostThresholds
	TrendDays          int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		RealtimeInterval:   10 * time.Second,
		MonitoringInterval: 30 * time.Second,
		Thresholds:         models.CostThresholds{Warning: 100, Critical: 150},
		TrendDays:          30,
	}
}

// Service polls the monitoring API and serves reads through the cache.
type Service struct {
	api     *api.Client
	queries *query.Client
	config  Config

	mu           sync.RWMutex
	period       models.UsagePeriod
	previousBand models.CostBand
	bandKnown    bool

	eventChan chan Event
	stopChan  chan struct{}
}

// New creates a monitor service and starts its polling goroutines.
func New(apiClient *api.Client, queries *query.Client, config Config) *Service {
	if config.RealtimeInterval == 0 {
		config = DefaultConfig()
	}

	s := &Service{
		api:       apiClient,
		queries:   queries,
		config:    config,
		period:    models.PeriodDay,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	go s.pollRealtime()
	go s.pollMonitoring()

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Period returns the current aggregation period.
func (s *Service) Period() models.UsagePeriod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.period
}

// SetPeriod switches the aggregation period for summary and cost reads.
// Each period has its own cache slots, so no invalidation is needed.
func (s *Service) SetPeriod(p models.UsagePeriod) {
	s.mu.Lock()
	s.period = p
	s.mu.Unlock()
}

// Summary returns the usage summary for the current period.
func (s *Service) Summary(ctx context.Context) (*models.UsageSummary, error) {
	period := s.Period()
	return query.Fetch(ctx, s.queries, query.NewKey(opUsageSummary, period), s.config.MonitoringInterval,
		func(ctx context.Context) (*models.UsageSummary, error) {
			return s.api.UsageSummary(ctx, period)
		})
}

// Realtime returns the rolling-window counters.
func (s *Service) Realtime(ctx context.Context) (*models.RealtimeUsageStats, error) {
	return query.Fetch(ctx, s.queries, query.NewKey(opUsageRealtime), s.config.RealtimeInterval,
		func(ctx context.Context) (*models.RealtimeUsageStats, error) {
			return s.api.RealtimeUsage(ctx)
		})
}

// Trends returns the usage time series over the given number of days.
func (s *Service) Trends(ctx context.Context, days int) ([]models.UsageTrendPoint, error) {
	if days <= 0 {
		days = s.config.TrendDays
	}
	return query.Fetch(ctx, s.queries, query.NewKey(opUsageTrends, days), s.config.MonitoringInterval,
		func(ctx context.Context) ([]models.UsageTrendPoint, error) {
			return s.api.UsageTrends(ctx, days)
		})
}

// Costs returns the cost breakdown for the current period.
func (s *Service) Costs(ctx context.Context) (*models.CostBreakdown, error) {
	period := s.Period()
	return query.Fetch(ctx, s.queries, query.NewKey(opCostBreakdown, period), s.config.MonitoringInterval,
		func(ctx context.Context) (*models.CostBreakdown, error) {
			return s.api.CostBreakdown(ctx, period)
		})
}

// GlobalCost returns the platform-wide spend position for the current period.
func (s *Service) GlobalCost(ctx context.Context) (*models.GlobalCost, error) {
	period := s.Period()
	return query.Fetch(ctx, s.queries, query.NewKey(opCostGlobal, period), s.config.MonitoringInterval,
		func(ctx context.Context) (*models.GlobalCost, error) {
			return s.api.GlobalCost(ctx, period)
		})
}

// Band classifies the given spend against the configured thresholds.
func (s *Service) Band(spend float64) models.CostBand {
	return models.EvaluateCostBand(spend, s.config.Thresholds)
}

// Thresholds returns the configured cost thresholds.
func (s *Service) Thresholds() models.CostThresholds {
	return s.config.Thresholds
}

// Infrastructure returns backing-service health checks.
func (s *Service) Infrastructure(ctx context.Context) (*models.InfrastructureHealth, error) {
	return query.Fetch(ctx, s.queries, query.NewKey(opInfra), s.config.MonitoringInterval,
		func(ctx context.Context) (*models.InfrastructureHealth, error) {
			return s.api.InfrastructureHealth(ctx)
		})
}

// Latency returns request latency percentiles.
func (s *Service) Latency(ctx context.Context) (*models.LatencyStats, error) {
	return query.Fetch(ctx, s.queries, query.NewKey(opLatency), s.config.MonitoringInterval,
		func(ctx context.Context) (*models.LatencyStats, error) {
			return s.api.LatencyStats(ctx)
		})
}

// Errors returns the recent error summary.
func (s *Service) Errors(ctx context.Context) (*models.ErrorStats, error) {
	return query.Fetch(ctx, s.queries, query.NewKey(opErrors), s.config.MonitoringInterval,
		func(ctx context.Context) (*models.ErrorStats, error) {
			return s.api.ErrorStats(ctx)
		})
}

// System returns the server's own resource usage.
func (s *Service) System(ctx context.Context) (*models.SystemMetrics, error) {
	return query.Fetch(ctx, s.queries, query.NewKey(opSystem), s.config.MonitoringInterval,
		func(ctx context.Context) (*models.SystemMetrics, error) {
			return s.api.SystemMetrics(ctx)
		})
}

// SlowQueries returns database queries exceeding the slow threshold.
func (s *Service) SlowQueries(ctx context.Context, filter models.SlowQueryFilter) ([]models.SlowQuery, error) {
	return query.Fetch(ctx, s.queries, query.NewKey(opSlowQueries, filter.Limit, filter.MinDuration), s.config.MonitoringInterval,
		func(ctx context.Context) ([]models.SlowQuery, error) {
			return s.api.SlowQueries(ctx, filter)
		})
}

// RefreshRealtime force-refetches the realtime counters.
func (s *Service) RefreshRealtime(ctx context.Context) (*models.RealtimeUsageStats, error) {
	stats, err := query.Refetch(ctx, s.queries, query.NewKey(opUsageRealtime),
		func(ctx context.Context) (*models.RealtimeUsageStats, error) {
			return s.api.RealtimeUsage(ctx)
		})
	if err != nil {
		s.sendEvent(Event{Type: EventErrorOccurred, Error: err})
		return nil, err
	}
	s.sendEvent(Event{Type: EventRealtimeUpdated, Realtime: stats})
	return stats, nil
}

// RefreshMonitoring force-refetches the period aggregates and checks the
// cost band.
func (s *Service) RefreshMonitoring(ctx context.Context) {
	period := s.Period()

	summary, err := query.Refetch(ctx, s.queries, query.NewKey(opUsageSummary, period),
		func(ctx context.Context) (*models.UsageSummary, error) {
			return s.api.UsageSummary(ctx, period)
		})
	if err != nil {
		s.sendEvent(Event{Type: EventErrorOccurred, Error: err})
	} else {
		s.sendEvent(Event{Type: EventSummaryUpdated, Summary: summary})
	}

	global, err := query.Refetch(ctx, s.queries, query.NewKey(opCostGlobal, period),
		func(ctx context.Context) (*models.GlobalCost, error) {
			return s.api.GlobalCost(ctx, period)
		})
	if err != nil {
		s.sendEvent(Event{Type: EventErrorOccurred, Error: err})
		return
	}

	band := s.Band(global.CurrentSpend)
	s.sendEvent(Event{Type: EventCostUpdated, Global: global, Band: band})
	s.checkBandEscalation(global, band)

	if _, err := query.Refetch(ctx, s.queries, query.NewKey(opInfra),
		func(ctx context.Context) (*models.InfrastructureHealth, error) {
			return s.api.InfrastructureHealth(ctx)
		}); err != nil {
		s.sendEvent(Event{Type: EventErrorOccurred, Error: err})
	} else {
		s.sendEvent(Event{Type: EventInfraUpdated})
	}
}

// checkBandEscalation notifies when the cost band crosses into CRITICAL.
func (s *Service) checkBandEscalation(global *models.GlobalCost, band models.CostBand) {
	s.mu.Lock()
	previous := s.previousBand
	known := s.bandKnown
	s.previousBand = band
	s.bandKnown = true
	s.mu.Unlock()

	if !known || band == previous {
		return
	}

	s.sendEvent(Event{Type: EventBandChanged, Global: global, Band: band})

	if band == models.CostBandCritical {
		title := "Critical AI spend"
		body := fmt.Sprintf("Current spend %.2f crossed the critical threshold %.2f",
			global.CurrentSpend, s.config.Thresholds.Critical)
		if err := beeep.Notify(title, body, ""); err != nil {
			logger.Warn("desktop notification failed", "error", err)
		}
	}
}

// pollRealtime refreshes the rolling counters on the realtime interval.
func (s *Service) pollRealtime() {
	ticker := time.NewTicker(s.config.RealtimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RefreshRealtime(context.Background()); err != nil {
				logger.Debug("realtime refresh failed", "error", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// pollMonitoring refreshes the period aggregates on the monitoring interval.
func (s *Service) pollMonitoring() {
	ticker := time.NewTicker(s.config.MonitoringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RefreshMonitoring(context.Background())
		case <-s.stopChan:
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
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

// Close stops the polling goroutines.
func (s *Service) Close() error {
	close(s.stopChan)
	return nil
}
