package engine

import (
	"strings"

	"github.com/akalem0808/memori/store"
)

// MatchesSearch reports whether the record matches a free-text query.
// Both sides are case-folded; the query must be a substring of the text,
// a tag, or a topic. A blank query matches everything. This is a literal
// substring test, deliberately simpler than semantic search.
func MatchesSearch(record *store.MemoryRecord, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(record.Text), query) {
		return true
	}
	for _, tag := range record.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	for _, topic := range record.Topics {
		if strings.Contains(strings.ToLower(topic), query) {
			return true
		}
	}
	return false
}
