package memory

import (
	"strings"
	"unicode"
)

const (
	defaultContextChars = 50
	maxContextChars     = 200
	boundaryScanLimit   = 10
)

// extractSnippet cuts a window of the text around the first highlight,
// snapped to word boundaries, and remaps the highlight positions into
// the snippet. Without highlights it returns the head of the text.
func extractSnippet(text string, highlights []Highlight, contextChars int) (string, []Highlight) {
	if contextChars <= 0 {
		contextChars = defaultContextChars
	}
	if contextChars > maxContextChars {
		contextChars = maxContextChars
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return "", nil
	}

	if len(highlights) == 0 {
		return headSnippet(runes, contextChars*2), nil
	}

	start, end := snippetWindow(highlights[0].Start, len(runes), contextChars)
	start = snapToBoundary(runes, start, false)
	end = snapToBoundary(runes, end, true)

	var builder strings.Builder
	prefixLen := 0
	if start > 0 {
		builder.WriteString("...")
		prefixLen = 3
	}
	builder.WriteString(string(runes[start:end]))
	if end < len(runes) {
		builder.WriteString("...")
	}

	remapped := make([]Highlight, 0, len(highlights))
	for _, h := range highlights {
		if h.Start >= start && h.End <= end {
			remapped = append(remapped, Highlight{
				Start:       h.Start - start + prefixLen,
				End:         h.End - start + prefixLen,
				MatchedText: h.MatchedText,
			})
		}
	}

	return builder.String(), remapped
}

func headSnippet(runes []rune, maxLen int) string {
	end := maxLen
	if end > len(runes) {
		end = len(runes)
	}
	end = snapToBoundary(runes, end, true)

	snippet := string(runes[:end])
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

// snippetWindow centers a window of 2*contextChars on the match,
// shifting it inward at the text edges.
func snippetWindow(center, length, contextChars int) (int, int) {
	start := center - contextChars
	end := center + contextChars
	if start < 0 {
		end += -start
		start = 0
	}
	if end > length {
		start -= end - length
		end = length
	}
	if start < 0 {
		start = 0
	}
	return start, end
}

// snapToBoundary nudges pos to the nearest separator within a short
// scan distance so snippets do not cut words in half.
func snapToBoundary(runes []rune, pos int, forward bool) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(runes) {
		return len(runes)
	}

	if forward {
		for i := pos; i < len(runes) && i < pos+boundaryScanLimit; i++ {
			if isSeparator(runes[i]) {
				return i
			}
		}
	} else {
		for i := pos - 1; i >= 0 && i >= pos-boundaryScanLimit; i-- {
			if isSeparator(runes[i]) {
				return i + 1
			}
		}
	}
	return pos
}

func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ',', '!', '?', ';', ':', '。', '，', '、', '！', '？':
		return true
	}
	return false
}
