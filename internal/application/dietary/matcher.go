package dietary

import "strings"

// Matcher decides whether a guideline pattern refers to a recipe
// ingredient. It is a strategy so a stricter matcher can replace the
// default without touching the analyzer.
type Matcher interface {
	Matches(pattern, ingredient string) bool
}

// FuzzyMatcher matches by bidirectional substring plus word-level
// substring overlap. The word-overlap rule is a known heuristic with false
// positives ("pea" matches "peanut"); tests pin this behavior.
type FuzzyMatcher struct{}

// Matches implements Matcher. Both inputs are expected lowercased.
func (FuzzyMatcher) Matches(pattern, ingredient string) bool {
	if pattern == ingredient {
		return true
	}
	if strings.Contains(ingredient, pattern) || strings.Contains(pattern, ingredient) {
		return true
	}

	for _, pw := range strings.Fields(pattern) {
		for _, iw := range strings.Fields(ingredient) {
			if strings.Contains(iw, pw) || strings.Contains(pw, iw) {
				return true
			}
		}
	}
	return false
}
