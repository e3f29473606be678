package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordSearch(t *testing.T) {
	collector := NewCollector(nil)

	initial := collector.GetSnapshot()
	assert.Zero(t, initial.TotalSearches)

	collector.RecordSearch()
	collector.RecordSearch()

	snapshot := collector.GetSnapshot()
	assert.Equal(t, int64(2), snapshot.TotalSearches)
	assert.Equal(t, int64(2), snapshot.SearchesToday)
}

func TestStopIsIdempotent(t *testing.T) {
	collector := NewCollector(nil)
	collector.Stop()
	collector.Stop()
}
