package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akalem0808/memori/store"
)

func TestTokenize(t *testing.T) {
	assert.Nil(t, tokenize(""))
	assert.Nil(t, tokenize("   "))
	assert.Equal(t, []string{"morning", "coffee"}, tokenize("Morning, Coffee!"))
	assert.Equal(t, []string{"walk"}, tokenize("walk walk WALK"))
}

func TestFindMatchesCaseInsensitive(t *testing.T) {
	matches := findMatches("Morning coffee, more coffee", []string{"coffee"})
	require.Len(t, matches, 2)
	assert.Equal(t, 8, matches[0].Start)
	assert.Equal(t, "coffee", matches[0].MatchedText)
}

func TestFindMatchesRemovesOverlaps(t *testing.T) {
	matches := findMatches("aaaa", []string{"aa"})
	// Occurrences at 0,1,2 overlap; only 0 and 2 survive.
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, 2, matches[1].Start)
}

func TestExtractSnippetCentersOnMatch(t *testing.T) {
	text := strings.Repeat("padding ", 20) + "needle" + strings.Repeat(" trailing", 20)
	matches := findMatches(text, []string{"needle"})
	require.NotEmpty(t, matches)

	snippet, highlights := extractSnippet(text, matches, 30)
	assert.Contains(t, snippet, "needle")
	assert.True(t, strings.HasPrefix(snippet, "..."))
	require.NotEmpty(t, highlights)

	// Remapped positions point at the match inside the snippet.
	h := highlights[0]
	assert.Equal(t, "needle", string([]rune(snippet)[h.Start:h.End]))
}

func TestExtractSnippetNoMatches(t *testing.T) {
	text := "a short entry"
	snippet, highlights := extractSnippet(text, nil, 50)
	assert.Equal(t, text, snippet)
	assert.Empty(t, highlights)
}

func TestHighlightRecords(t *testing.T) {
	records := []*store.MemoryRecord{
		{UID: "one", Text: "Coffee with an old friend", CreatedTs: 100},
		{UID: "two", Text: "Nothing matching here", CreatedTs: 200},
	}

	results := NewHighlighter().HighlightRecords(records, "coffee")
	require.Len(t, results, 2)

	assert.Equal(t, "one", results[0].UID)
	assert.NotEmpty(t, results[0].Highlights)

	assert.Equal(t, "two", results[1].UID)
	assert.Empty(t, results[1].Highlights)
	assert.NotEmpty(t, results[1].Snippet)
}
