package storage

import (
	"sync"
	"sync/atomic"
	"time"
)

// cleanupCadence runs expired-entry sweeps at most once per interval.
type cleanupCadence struct {
	mu       sync.Mutex
	last     atomic.Int64
	interval time.Duration
}

func newCleanupCadence(interval time.Duration, now time.Time) *cleanupCadence {
	c := &cleanupCadence{interval: interval}
	c.last.Store(now.Unix())
	return c
}

func (c *cleanupCadence) due(now time.Time) bool {
	return now.Sub(time.Unix(c.last.Load(), 0)) >= c.interval
}

// run calls sweep when the interval has elapsed since the last successful
// sweep. Concurrent callers share a single sweep.
func (c *cleanupCadence) run(now time.Time, sweep func(now time.Time) error) error {
	if !c.due(now) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.due(now) {
		return nil
	}
	if err := sweep(now); err != nil {
		return err
	}
	c.last.Store(now.Unix())
	return nil
}
