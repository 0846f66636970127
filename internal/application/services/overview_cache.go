package services

import (
	"sync"
	"sync/atomic"

	"github.com/attendly/core/internal/domain/entities"
)

// OverviewCache holds computed monthly rollups. Every attendance or holiday
// write bumps the generation; a computation that started before a bump is
// discarded instead of stored, so the cache never serves a rollup older than
// the data that produced it. Entries also remember the date they were computed
// under, so a rollup clamped to yesterday's window expires at midnight even
// when nothing was written. One instance is shared by every service that
// writes data feeding the rollups.
type OverviewCache struct {
	gen     atomic.Uint64
	mu      sync.Mutex
	entries map[entities.Month]overviewEntry
}

type overviewEntry struct {
	gen     uint64
	today   entities.Date
	summary entities.MonthlySummary
}

// NewOverviewCache creates the shared rollup cache
func NewOverviewCache() *OverviewCache {
	return &OverviewCache{entries: make(map[entities.Month]overviewEntry)}
}

// Invalidate marks every cached rollup stale.
func (c *OverviewCache) Invalidate() {
	c.gen.Add(1)
}

// begin returns the generation a computation is based on.
func (c *OverviewCache) begin() uint64 {
	return c.gen.Load()
}

// lookup returns the cached rollup for month if it is still current: same
// generation and computed under the same date. The counts map is copied so
// callers cannot reach back into the cached entry.
func (c *OverviewCache) lookup(month entities.Month, today entities.Date) (entities.MonthlySummary, bool) {
	gen := c.gen.Load()
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[month]
	if !ok || entry.gen != gen || entry.today != today {
		return entities.MonthlySummary{}, false
	}

	summary := entry.summary
	summary.PresentCount = make(map[string]int, len(entry.summary.PresentCount))
	for userID, count := range entry.summary.PresentCount {
		summary.PresentCount[userID] = count
	}
	return summary, true
}

// store keeps summary only if no write landed since gen was observed.
func (c *OverviewCache) store(month entities.Month, gen uint64, today entities.Date, summary entities.MonthlySummary) {
	if c.gen.Load() != gen {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[month] = overviewEntry{gen: gen, today: today, summary: summary}
}
