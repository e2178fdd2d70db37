// Package scheduler provides automated drug database refresh scheduling and
// health monitoring. It runs a daily freshness check that rebuilds the
// database once it passes the staleness limit, and logs a warning when the
// data ages past that limit between checks.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/fdatools/openfda-mcp/interfaces"
	"github.com/fdatools/openfda-mcp/logging"
)

// Compile-time check to ensure Scheduler implements the Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler triggers database refreshes using dependency injection
type Scheduler struct {
	query            interfaces.DrugQuery
	maxStalenessDays int
	prefetchOnStart  bool
	scheduler        *gocron.Scheduler
	stopMonitor      chan struct{}
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(query interfaces.DrugQuery, maxStalenessDays int, prefetchOnStart bool) *Scheduler {
	return &Scheduler{
		query:            query,
		maxStalenessDays: maxStalenessDays,
		prefetchOnStart:  prefetchOnStart,
		scheduler:        gocron.NewScheduler(time.Local),
		stopMonitor:      make(chan struct{}),
	}
}

// Start begins the daily freshness check and health monitoring. With prefetch
// enabled it warms the database first so the first tool call does not pay for
// the download.
func (s *Scheduler) Start() error {
	if s.prefetchOnStart {
		logging.Info("Prefetching drug database")
		if err := s.query.EnsureReady(context.Background()); err != nil {
			// Not fatal: the next query retries the whole pipeline.
			logging.Error("Database prefetch failed", "error", err)
		}
	}

	_, err := s.scheduler.Every(1).Day().At("03:00").Do(func() {
		s.refreshIfStale()
	})
	if err != nil {
		logging.Error("Failed to schedule database refresh", "error", err)
		return fmt.Errorf("failed to schedule database refresh: %w", err)
	}

	s.scheduler.StartAsync()

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler and the health monitor
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	close(s.stopMonitor)
}

// refreshIfStale delegates to the query service's readiness check, which
// rebuilds only when the database file is missing or past the staleness
// limit.
func (s *Scheduler) refreshIfStale() {
	logging.Info("Running scheduled database freshness check")
	if err := s.query.EnsureReady(context.Background()); err != nil {
		logging.Error("Scheduled database refresh failed", "error", err)
		return
	}
	logging.Info("Scheduled database freshness check completed")
}

// startHealthMonitoring warns when the database ages past the staleness
// limit between scheduled checks
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		maxAge := time.Duration(s.maxStalenessDays) * 24 * time.Hour
		for {
			select {
			case <-ticker.C:
				age, err := s.query.StoreAge()
				if err != nil {
					continue
				}
				if age > maxAge {
					logging.Warn("Drug database is past its staleness limit",
						"age_days", int(age.Hours()/24),
						"limit_days", s.maxStalenessDays)
				}
			case <-s.stopMonitor:
				return
			}
		}
	}()
}
