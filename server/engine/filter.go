// Package engine implements the memory filtering and aggregation core:
// predicate building, stable collection filtering, statistics aggregation
// and free-text matching. Everything here is a pure function over the
// records it is handed; callers own all state and supply "now" explicitly.
package engine

import (
	"strings"
	"time"

	"github.com/akalem0808/memori/store"
)

// DateRange is a relative lower bound on capture time.
type DateRange string

const (
	DateRangeToday DateRange = "today"
	DateRangeWeek  DateRange = "week"
	DateRangeMonth DateRange = "month"
	DateRangeYear  DateRange = "year"
	DateRangeAll   DateRange = "all"
)

// ParseDateRange maps a raw query value to a DateRange. Unknown values
// degrade to DateRangeAll; the second return reports whether degradation
// happened so the caller can log it.
func ParseDateRange(raw string) (DateRange, bool) {
	switch DateRange(strings.ToLower(strings.TrimSpace(raw))) {
	case DateRangeToday:
		return DateRangeToday, false
	case DateRangeWeek:
		return DateRangeWeek, false
	case DateRangeMonth:
		return DateRangeMonth, false
	case DateRangeYear:
		return DateRangeYear, false
	case DateRangeAll, "":
		return DateRangeAll, false
	default:
		return DateRangeAll, true
	}
}

// Start returns the inclusive lower bound for the range relative to now,
// and whether a bound applies at all.
func (r DateRange) Start(now time.Time) (time.Time, bool) {
	switch r {
	case DateRangeToday:
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location()), true
	case DateRangeWeek:
		return now.AddDate(0, 0, -7), true
	case DateRangeMonth:
		return now.AddDate(0, -1, 0), true
	case DateRangeYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// FilterConfig is one user-supplied set of selection criteria. A zero
// value matches every record; each absent dimension matches all.
type FilterConfig struct {
	Emotion   string
	Topic     string
	DateRange DateRange
	Search    string
}

// Predicate compiles the configuration into a per-record test. The result
// is the AND of the four dimensions. The date bound is computed once here,
// not per record, so a predicate is deterministic for a given now.
func (c FilterConfig) Predicate(now time.Time) func(*store.MemoryRecord) bool {
	emotion := strings.ToLower(strings.TrimSpace(c.Emotion))
	topic := strings.TrimSpace(c.Topic)
	start, bounded := c.DateRange.Start(now)
	startTs := start.Unix()

	return func(record *store.MemoryRecord) bool {
		if emotion != "" && strings.ToLower(record.Emotion) != emotion {
			return false
		}
		if topic != "" && !containsTopic(record.Topics, topic) {
			return false
		}
		if bounded {
			// Records with unknown capture time fail every bound.
			if record.CreatedTs == 0 || record.CreatedTs < startTs {
				return false
			}
		}
		if !MatchesSearch(record, c.Search) {
			return false
		}
		return true
	}
}

func containsTopic(topics []string, topic string) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Filter returns the ordered subsequence of records satisfying the
// configuration: a single stable pass that never mutates its input.
// Empty input yields an empty, non-nil slice.
func Filter(records []*store.MemoryRecord, cfg FilterConfig, now time.Time) []*store.MemoryRecord {
	match := cfg.Predicate(now)
	filtered := make([]*store.MemoryRecord, 0, len(records))
	for _, record := range records {
		if match(record) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}
