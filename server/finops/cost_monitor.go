// Package finops tracks spend on the paid AI endpoints. A journal that
// transcribes every entry burns real money; the monitor makes the burn
// visible per operation without a billing export.
package finops

import (
	"sort"
	"sync"
	"time"
)

// Operation identifies a billable AI call.
type Operation string

const (
	OperationTranscribe Operation = "transcribe"
	OperationEmotion    Operation = "emotion"
	OperationEmbed      Operation = "embed"
)

// Rough per-unit prices in USD. Transcription is billed per minute of
// audio, the others per 1K tokens.
const (
	transcribePricePerMinute = 0.006
	emotionPricePer1KTokens  = 0.00015
	embedPricePer1KTokens    = 0.00002
)

// OperationStats accumulates counters for one operation.
type OperationStats struct {
	Calls        int64   `json:"calls"`
	Failures     int64   `json:"failures"`
	Units        float64 `json:"units"`
	CostUSD      float64 `json:"costUsd"`
	TotalMs      int64   `json:"totalMs"`
	LastCalledAt int64   `json:"lastCalledAt,omitempty"`
}

// Report is a read-only view of all counters.
type Report struct {
	Since        time.Time                     `json:"since"`
	TotalCostUSD float64                       `json:"totalCostUsd"`
	Operations   map[Operation]*OperationStats `json:"operations"`
}

// CostMonitor accumulates AI usage in memory. Counters reset on restart.
type CostMonitor struct {
	mu    sync.Mutex
	since time.Time
	stats map[Operation]*OperationStats
}

func NewCostMonitor() *CostMonitor {
	return &CostMonitor{
		since: time.Now().UTC(),
		stats: make(map[Operation]*OperationStats),
	}
}

// RecordTranscription records a transcription call billed by audio
// duration.
func (m *CostMonitor) RecordTranscription(audioDuration, latency time.Duration, err error) {
	minutes := audioDuration.Minutes()
	m.record(OperationTranscribe, minutes, minutes*transcribePricePerMinute, latency, err)
}

// RecordEmotion records an emotion classification call.
func (m *CostMonitor) RecordEmotion(tokens int, latency time.Duration, err error) {
	m.record(OperationEmotion, float64(tokens), float64(tokens)/1000*emotionPricePer1KTokens, latency, err)
}

// RecordEmbedding records an embedding call.
func (m *CostMonitor) RecordEmbedding(tokens int, latency time.Duration, err error) {
	m.record(OperationEmbed, float64(tokens), float64(tokens)/1000*embedPricePer1KTokens, latency, err)
}

func (m *CostMonitor) record(op Operation, units, cost float64, latency time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[op]
	if !ok {
		s = &OperationStats{}
		m.stats[op] = s
	}
	s.Calls++
	s.TotalMs += latency.Milliseconds()
	s.LastCalledAt = time.Now().Unix()
	if err != nil {
		s.Failures++
		return
	}
	s.Units += units
	s.CostUSD += cost
}

// GetReport returns a copy of the accumulated counters.
func (m *CostMonitor) GetReport() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := Report{
		Since:      m.since,
		Operations: make(map[Operation]*OperationStats, len(m.stats)),
	}
	for op, s := range m.stats {
		copied := *s
		report.Operations[op] = &copied
		report.TotalCostUSD += s.CostUSD
	}
	return report
}

// TopOperations returns operations sorted by cost, highest first.
// Equal costs sort by name so the order is stable.
func (m *CostMonitor) TopOperations() []Operation {
	report := m.GetReport()
	ops := make([]Operation, 0, len(report.Operations))
	for op := range report.Operations {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		a, b := report.Operations[ops[i]], report.Operations[ops[j]]
		if a.CostUSD != b.CostUSD {
			return a.CostUSD > b.CostUSD
		}
		return ops[i] < ops[j]
	})
	return ops
}

// EstimateTokens approximates token count from text length. Close
// enough for cost tracking; the API does not return usage for every
// endpoint.
func EstimateTokens(text string) int {
	tokens := len(text) / 4
	if tokens == 0 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}
