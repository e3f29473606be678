package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects request counters per route for the health endpoint.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	routeMetrics map[string]*RouteMetrics
}

// RouteMetrics holds counters for a single route.
type RouteMetrics struct {
	requestCount  atomic.Int64
	errorCount    atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		routeMetrics: make(map[string]*RouteMetrics),
	}
}

var globalMetrics = NewMetrics()

// GlobalMetrics returns the process-wide metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records a handled request.
func (m *Metrics) RecordRequest(route string) {
	m.requestTotal.Add(1)
	m.getRouteMetrics(route).requestCount.Add(1)
}

// RecordFailure records a failed request.
func (m *Metrics) RecordFailure(route string) {
	m.requestFailed.Add(1)
	m.getRouteMetrics(route).errorCount.Add(1)
}

// RecordDuration records a request duration.
func (m *Metrics) RecordDuration(route string, duration time.Duration) {
	m.getRouteMetrics(route).totalDuration.Add(duration.Milliseconds())
}

// Snapshot returns current counters keyed by route.
func (m *Metrics) Snapshot() map[string]RouteSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]RouteSnapshot, len(m.routeMetrics))
	for route, rm := range m.routeMetrics {
		count := rm.requestCount.Load()
		snap := RouteSnapshot{
			Requests: count,
			Errors:   rm.errorCount.Load(),
		}
		if count > 0 {
			snap.AvgDurationMs = rm.totalDuration.Load() / count
		}
		out[route] = snap
	}
	return out
}

// RouteSnapshot is a read-only view of one route's counters.
type RouteSnapshot struct {
	Requests      int64 `json:"requests"`
	Errors        int64 `json:"errors"`
	AvgDurationMs int64 `json:"avg_duration_ms"`
}

// TotalRequests returns the total request count.
func (m *Metrics) TotalRequests() int64 {
	return m.requestTotal.Load()
}

// TotalFailures returns the total failed request count.
func (m *Metrics) TotalFailures() int64 {
	return m.requestFailed.Load()
}

func (m *Metrics) getRouteMetrics(route string) *RouteMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rm, ok := m.routeMetrics[route]; ok {
		return rm
	}
	rm := &RouteMetrics{}
	m.routeMetrics[route] = rm
	return rm
}
