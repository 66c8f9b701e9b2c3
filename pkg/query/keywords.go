package query

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"who": {}, "what": {}, "where": {}, "when": {}, "why": {}, "how": {},
	"is": {}, "are": {}, "was": {}, "were": {},
	"the": {}, "a": {}, "an": {},
}

// ExtractKeywords lowercases question, strips leading and trailing
// punctuation from each word, drops stop words and joins the rest with
// single spaces. A question made only of stop words is returned as it was
// given.
func ExtractKeywords(question string) string {
	words := strings.Fields(strings.ToLower(question))
	kept := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimFunc(w, unicode.IsPunct)
		if w == "" {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return strings.TrimSpace(question)
	}
	return strings.Join(kept, " ")
}
