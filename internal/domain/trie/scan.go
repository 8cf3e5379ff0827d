package trie

import "unicode/utf8"

// Stepper is the incremental scan primitive ScanText drives. *Scanner
// implements it; so does the controller's session wrapper.
type Stepper interface {
	Reset()
	PushChar(r rune)
	CurrentMatches(exclude string) []Candidate
}

// ScanOptions configures ScanText.
type ScanOptions struct {
	// WholeWords drops matches that are not bounded by word boundaries on
	// both sides. Without it such matches are kept and flagged SubWord.
	WholeWords bool
	// Boundary classifies word boundaries; nil means IsWordBoundary.
	Boundary BoundaryFunc
	// Exclude suppresses matches for this entry ID (the document's own note).
	Exclude string
}

// boundaryRune stands in for input the scanner cannot use as text: a byte
// that does not decode as UTF-8.
const boundaryRune = ' '

// endOfText is appended after the last code point so that a match ending
// at the end of the span is reported.
const endOfText = '\n'

// ScanText resets s and feeds it text one code point at a time, collecting
// every candidate. Results are in discovery order: by end offset, then by
// start offset, then by catalog order.
func ScanText(s Stepper, text string, opts ScanOptions) []Candidate {
	isBoundary := opts.Boundary
	if isBoundary == nil {
		isBoundary = IsWordBoundary
	}

	s.Reset()
	var out []Candidate
	for i := 0; i <= len(text); {
		r, size := rune(endOfText), 1
		if i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if r == utf8.RuneError && size <= 1 {
				r, size = boundaryRune, 1
			}
		}

		endsWord := isBoundary(r)
		if !opts.WholeWords || endsWord {
			for _, c := range s.CurrentMatches(opts.Exclude) {
				c.SubWord = !endsWord || !startsWord(text, c.Start, isBoundary)
				if opts.WholeWords && c.SubWord {
					continue
				}
				out = append(out, c)
			}
		}

		s.PushChar(r)
		i += size
	}
	return out
}

// startsWord reports whether offset is at the start of text or preceded by
// a boundary.
func startsWord(text string, offset int, isBoundary BoundaryFunc) bool {
	if offset <= 0 || offset > len(text) {
		return true
	}
	r, size := utf8.DecodeLastRuneInString(text[:offset])
	if r == utf8.RuneError && size <= 1 {
		return true
	}
	return isBoundary(r)
}
