// Package similarity scores how alike two headlines are.
package similarity

import "strings"

// minTokenLen: tokens this short are discarded before comparison. Filters
// articles, prepositions and other glue words without a stop list.
const minTokenLen = 4

// Titles computes the Jaccard similarity of two headlines over their sets of
// qualifying tokens. Result is in [0,1], symmetric, and 0 when neither title
// contributes a qualifying token (the empty-union case is guarded, not
// undefined).
func Titles(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// tokenSet lowercases, splits on whitespace, and keeps unique tokens of
// qualifying length.
func tokenSet(title string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(title)) {
		if len(tok) >= minTokenLen {
			set[tok] = struct{}{}
		}
	}
	return set
}
