// Package stats keeps a periodically refreshed statistics snapshot so
// the stats endpoint does not recompute aggregates on every request.
package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/akalem0808/memori/server/engine"
	"github.com/akalem0808/memori/store"
)

// RefreshInterval is how often the cached summary is recomputed.
const RefreshInterval = 5 * time.Minute

// Snapshot is the cached summary plus collector-side counters.
type Snapshot struct {
	Summary       engine.Summary `json:"summary"`
	TotalSearches int64          `json:"totalSearches"`
	SearchesToday int64          `json:"searchesToday"`
	LastUpdated   time.Time      `json:"lastUpdated"`
}

// Collector refreshes the aggregate summary on a ticker and counts
// search traffic in between.
type Collector struct {
	store *store.Store

	mu            sync.RWMutex
	summary       engine.Summary
	totalSearches int64
	searchesToday int64
	searchDay     string
	lastUpdated   time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewCollector(st *store.Store) *Collector {
	return &Collector{
		store: st,
		stop:  make(chan struct{}),
	}
}

// Start runs an initial collection and begins periodic refresh.
func (c *Collector) Start(ctx context.Context) {
	c.Collect(ctx)

	go func() {
		ticker := time.NewTicker(RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Collect(ctx)
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			}
		}
	}()
}

func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Collect recomputes the summary from the full record collection.
func (c *Collector) Collect(ctx context.Context) {
	records, err := c.store.ListMemoryRecords(ctx, &store.FindMemoryRecord{})
	if err != nil {
		slog.Warn("stats collection failed", "error", err)
		return
	}
	summary := engine.Aggregate(records, engine.DefaultRecentEmotionBound)

	c.mu.Lock()
	c.summary = summary
	c.lastUpdated = time.Now()
	c.mu.Unlock()
}

// RecordSearch counts one search request. The daily counter resets when
// the calendar day changes.
func (c *Collector) RecordSearch() {
	day := time.Now().UTC().Format("2006-01-02")

	c.mu.Lock()
	defer c.mu.Unlock()
	if day != c.searchDay {
		c.searchDay = day
		c.searchesToday = 0
	}
	c.totalSearches++
	c.searchesToday++
}

// GetSnapshot returns a copy of the cached state.
func (c *Collector) GetSnapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Summary:       c.summary,
		TotalSearches: c.totalSearches,
		SearchesToday: c.searchesToday,
		LastUpdated:   c.lastUpdated,
	}
}
