// Package tokenize provides the single normaliser shared by indexing and querying.
package tokenize

import "strings"

// Tokenize splits input on ASCII whitespace and normalises each word into zero or
// more lowercase alphabetic terms. A word is lowercased, then scanned character by
// character: the accumulated buffer is emitted and reset whenever a non-alphabetic
// character is seen, and any trailing buffer is emitted at the end. This means
// punctuation inside a word splits it rather than being stripped, e.g. "it's"
// becomes "it" and "s" as separate terms. Output preserves input order and includes
// repeats; empty strings are never emitted.
func Tokenize(input string) []string {
	var terms []string
	for _, word := range strings.Fields(input) {
		var buf strings.Builder
		for _, r := range word {
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			if r >= 'a' && r <= 'z' {
				buf.WriteRune(r)
				continue
			}
			if buf.Len() > 0 {
				terms = append(terms, buf.String())
				buf.Reset()
			}
		}
		if buf.Len() > 0 {
			terms = append(terms, buf.String())
		}
	}
	return terms
}
