package enrich

import (
	"sort"
	"strings"
)

// stopwords are skipped during frequency analysis: common English function
// words plus web navigation noise.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {},
	"and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"been": {}, "before": {}, "but": {}, "by": {}, "can": {}, "do": {},
	"does": {}, "each": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"how": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "may": {}, "more": {}, "must": {}, "no": {}, "not": {},
	"of": {}, "on": {}, "or": {}, "other": {}, "our": {}, "out": {},
	"per": {}, "see": {}, "shall": {}, "should": {}, "so": {}, "such": {},
	"than": {}, "that": {}, "the": {}, "their": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"to": {}, "under": {}, "up": {}, "upon": {}, "use": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "who": {}, "will": {}, "with": {}, "would": {},
	"you": {}, "your": {},

	// Navigation noise
	"click": {}, "home": {}, "link": {}, "menu": {}, "page": {},
	"search": {}, "site": {}, "website": {},
}

// WordFrequency counts non-stopword tokens in text, lowercased and
// stripped of surrounding punctuation.
func WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return ('a' > r || r > 'z') && ('0' > r || r > '9')
		})
		if word == "" {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		frequencies[word]++
	}

	return frequencies
}

// TopKeywords returns the n most frequent words, ties broken
// alphabetically so output is deterministic.
func TopKeywords(frequencies map[string]int, n int) []string {
	type wordCount struct {
		word  string
		count int
	}

	counts := make([]wordCount, 0, len(frequencies))
	for word, count := range frequencies {
		counts = append(counts, wordCount{word, count})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].word < counts[j].word
	})

	if n > len(counts) {
		n = len(counts)
	}
	top := make([]string, n)
	for i := 0; i < n; i++ {
		top[i] = counts[i].word
	}
	return top
}
