// Package memory turns filtered memory records into display-ready search
// results: query tokenization, match highlighting and context snippets.
package memory

import (
	"strings"
	"unicode"
)

// tokenize splits a query into lowercase search tokens, deduplicated in
// first-seen order. CJK characters each become their own token; runs of
// letters and digits form word tokens.
func tokenize(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var tokens []string
	seen := map[string]bool{}
	appendToken := func(token string) {
		if token != "" && !seen[token] {
			tokens = append(tokens, token)
			seen[token] = true
		}
	}

	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			appendToken(strings.ToLower(word.String()))
			word.Reset()
		}
	}

	for _, r := range query {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			appendToken(string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}
