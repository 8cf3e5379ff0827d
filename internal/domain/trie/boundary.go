package trie

import "unicode"

// BoundaryFunc classifies a code point as a word boundary.
type BoundaryFunc func(r rune) bool

// IsWordBoundary is the default classification: letters, digits and
// combining marks are word characters, everything else separates words.
func IsWordBoundary(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r))
}
