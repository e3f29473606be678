package memory

import (
	"sort"
	"strings"

	"github.com/akalem0808/memori/store"
)

// Highlight marks one matched span inside a snippet, in rune offsets.
type Highlight struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	MatchedText string `json:"matchedText"`
}

// SearchResult is one record annotated with its snippet and highlights.
type SearchResult struct {
	UID        string      `json:"uid"`
	Snippet    string      `json:"snippet"`
	Highlights []Highlight `json:"highlights"`
	CreatedTs  int64       `json:"createdTs"`
}

// Highlighter computes snippets and match positions for search output.
type Highlighter struct {
	contextChars int
}

func NewHighlighter() *Highlighter {
	return &Highlighter{contextChars: defaultContextChars}
}

// HighlightRecords annotates each record with a snippet centered on the
// query matches. Records stay in their given order; a record without a
// text match still gets a head-of-text snippet.
func (h *Highlighter) HighlightRecords(records []*store.MemoryRecord, query string) []SearchResult {
	tokens := tokenize(query)

	results := make([]SearchResult, 0, len(records))
	for _, record := range records {
		matches := findMatches(record.Text, tokens)
		snippet, highlights := extractSnippet(record.Text, matches, h.contextChars)
		results = append(results, SearchResult{
			UID:        record.UID,
			Snippet:    snippet,
			Highlights: highlights,
			CreatedTs:  record.CreatedTs,
		})
	}
	return results
}

// findMatches locates every token occurrence in text, case-insensitive,
// as rune offsets. Overlapping spans collapse to the earliest one.
func findMatches(text string, tokens []string) []Highlight {
	if len(tokens) == 0 {
		return nil
	}

	runes := []rune(text)
	var matches []Highlight
	for _, token := range tokens {
		tokenRunes := []rune(token)
		if len(tokenRunes) == 0 {
			continue
		}
		for i := 0; i+len(tokenRunes) <= len(runes); i++ {
			window := string(runes[i : i+len(tokenRunes)])
			if strings.ToLower(window) == token {
				matches = append(matches, Highlight{
					Start:       i,
					End:         i + len(tokenRunes),
					MatchedText: window,
				})
			}
		}
	}

	sort.Slice(matches, func(a, b int) bool {
		return matches[a].Start < matches[b].Start
	})
	return removeOverlaps(matches)
}

func removeOverlaps(matches []Highlight) []Highlight {
	if len(matches) <= 1 {
		return matches
	}
	result := make([]Highlight, 0, len(matches))
	result = append(result, matches[0])
	for _, m := range matches[1:] {
		if m.Start >= result[len(result)-1].End {
			result = append(result, m)
		}
	}
	return result
}
