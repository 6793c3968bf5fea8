package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// DefaultGCInterval is how often expired in-memory entries are dropped.
const DefaultGCInterval = 10 * time.Minute

// Collector drops the entries that expired before now and returns how many it removed.
type Collector interface {
	Collect(now time.Time) int
}

// GarbageCollector periodically sweeps in-process state that expires on its own
// clock, such as revoked session IDs when no Redis is configured.
type GarbageCollector struct {
	targets  map[string]Collector
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(log logger.Logger, interval time.Duration) *GarbageCollector {
	if interval <= 0 {
		interval = DefaultGCInterval
	}

	return &GarbageCollector{
		targets:  make(map[string]Collector),
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Add registers a collector under name. Call it before Start.
func (gc *GarbageCollector) Add(name string, c Collector) {
	gc.targets[name] = c
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Start periodic collection
	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect()
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	gc.stopOnce.Do(func() { close(gc.stopCh) })
}

// Collect runs every collector once and returns the number of entries removed per target.
func (gc *GarbageCollector) Collect() map[string]int {
	now := gc.now()

	names := make([]string, 0, len(gc.targets))
	for name := range gc.targets {
		names = append(names, name)
	}
	sort.Strings(names)

	removed := make(map[string]int, len(names))
	total := 0
	for _, name := range names {
		n := gc.targets[name].Collect(now)
		removed[name] = n
		total += n
	}

	if total > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int("total_deleted", total))
	} else {
		gc.logger.Debug("no items to garbage collect")
	}

	return removed
}
