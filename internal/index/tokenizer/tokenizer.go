// Package tokenizer turns raw document text into term occurrence
// counts. It replaces punctuation with spaces, lower-cases, splits on
// whitespace runs, and counts the resulting tokens. No stemming,
// stop-word removal, or locale-aware casing is applied: the counts
// accumulated in the store must stay stable across re-tokenization of
// the same text.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Counts tokenizes each block and merges the per-term occurrence
// counts across all blocks of one document.
//
// A block consisting only of delimiters yields the empty-string token,
// which is counted like any other term. Callers that care should
// filter upstream; the index stores it as-is.
func Counts(blocks ...string) map[string]int {
	counts := make(map[string]int)
	for _, block := range blocks {
		countBlock(block, counts)
	}
	return counts
}

func countBlock(text string, counts map[string]int) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return ' '
		}
		return r
	}, text)
	cleaned = strings.ToLower(cleaned)

	for _, term := range splitTerms(cleaned) {
		counts[term]++
	}
}

// splitTerms splits on whitespace runs the way a \s+ regexp split
// does: a leading run produces an empty leading field, a trailing run
// does not produce a trailing one.
func splitTerms(text string) []string {
	if text == "" {
		return []string{""}
	}
	fields := strings.FieldsFunc(text, unicode.IsSpace)
	if first, _ := utf8.DecodeRuneInString(text); unicode.IsSpace(first) {
		fields = append([]string{""}, fields...)
	}
	if len(fields) == 0 {
		return []string{""}
	}
	return fields
}
