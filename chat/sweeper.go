package chat

import (
	"context"
	"time"

	"codeberg.org/parley/server/internal/logger"
)

const (
	// how often the sweeper scans for evictable sessions
	DefaultSweepInterval = 1 * time.Hour

	// closed sessions older than this are evicted
	DefaultRetention = 24 * time.Hour
)

// Sweeper periodically evicts closed sessions that have been inactive
// longer than the retention window. It only removes terminal sessions and
// never mutates live ones.
type Sweeper struct {
	registry      *Registry
	checkInterval time.Duration
	retention     time.Duration
}

// creates a new sweeper; non-positive durations fall back to defaults
func NewSweeper(registry *Registry, checkInterval, retention time.Duration) *Sweeper {
	if checkInterval <= 0 {
		checkInterval = DefaultSweepInterval
	}

	if retention <= 0 {
		retention = DefaultRetention
	}

	return &Sweeper{
		registry:      registry,
		checkInterval: checkInterval,
		retention:     retention,
	}
}

// begins the sweeper background loop; canceling ctx stops future sweeps
func (s *Sweeper) Start(ctx context.Context) {
	logger.Info("starting chat eviction sweeper",
		"check_interval", s.checkInterval,
		"retention", s.retention,
	)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("chat eviction sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// runs one eviction pass; safe to run arbitrarily often
func (s *Sweeper) Sweep() int {
	evicted := s.registry.EvictStale(s.retention)

	if evicted > 0 {
		logger.Info("evicted stale closed sessions",
			"count", evicted,
			"remaining", s.registry.Len(),
		)
	}

	return evicted
}
