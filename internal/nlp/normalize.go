// Package nlp provides the deterministic text cleanup shared by every
// classifier: lowercasing, punctuation stripping, and stopword removal.
package nlp

import (
	"strings"
)

// stopWords are dropped during normalization. The set is intentionally
// small: only polite boilerplate that carries no intent signal.
var stopWords = map[string]struct{}{
	"please": {}, "can": {}, "you": {}, "tell": {}, "me": {}, "the": {},
	"a": {}, "an": {}, "is": {}, "my": {}, "what": {}, "about": {},
}

// Normalize lowercases text, strips everything outside [a-z0-9 and
// whitespace], removes stopwords, and rejoins with single spaces.
// It is pure and total: any input yields a (possibly empty) string.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if _, skip := stopWords[w]; !skip {
			kept = append(kept, w)
		}
	}

	return strings.Join(kept, " ")
}

// Tokens returns the normalized text split into words.
func Tokens(text string) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, " ")
}
