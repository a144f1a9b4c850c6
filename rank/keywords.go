package rank

import (
	"strings"
	"unicode"
)

// KeywordOverlap is the fraction of a signal's keyword words present in the
// query word set. A signal without keywords scores 0.
func KeywordOverlap(queryWords map[string]struct{}, keywords []string) float64 {
	keywordWords := make(map[string]struct{})
	for _, k := range keywords {
		for w := range wordSet(k) {
			keywordWords[w] = struct{}{}
		}
	}
	if len(keywordWords) == 0 {
		return 0
	}

	matched := 0
	for w := range keywordWords {
		if _, ok := queryWords[w]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(keywordWords))
}

// Filler words never count toward keyword overlap.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "we": true, "our": true,
}

// wordSet lowercases s, splits it on anything that is not a letter or digit,
// and drops stop words.
func wordSet(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if !stopWords[w] {
			set[w] = struct{}{}
		}
	}
	return set
}
