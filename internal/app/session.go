package app

import "github.com/corey/vlink/internal/domain/trie"

// Session is the scan-local state of one span: a scanner bound to the
// snapshot it was created from. Sessions are cheap; create one per span and
// drop it when the span is resolved.
type Session struct {
	snap    *Snapshot
	scanner *trie.Scanner
}

// NewSession starts a session over s.
func (s *Snapshot) NewSession() *Session {
	return &Session{snap: s, scanner: trie.NewScanner(s.Trie)}
}

// Reset clears the traversal state.
func (s *Session) Reset() { s.scanner.Reset() }

// PushChar consumes one code point.
func (s *Session) PushChar(r rune) { s.scanner.PushChar(r) }

// CurrentMatches returns the matches ending at the current offset, skipping
// entry exclude.
func (s *Session) CurrentMatches(exclude string) []trie.Candidate {
	return s.scanner.CurrentMatches(exclude)
}

// Generation is the catalog generation the session scans against.
func (s *Session) Generation() uint64 { return s.snap.Generation }

// Snapshot returns the snapshot the session is bound to.
func (s *Session) Snapshot() *Snapshot { return s.snap }

// Stale reports whether c has installed a newer generation since the session
// started. Callers holding results across calls re-scan when it is true.
func (s *Session) Stale(c *Cache) bool {
	return c.Generation() != s.snap.Generation
}

// Scan runs a fresh session over text. Spans the prefilter rules out are not
// scanned at all.
func (s *Snapshot) Scan(text string, opts trie.ScanOptions) []trie.Candidate {
	if !s.Prefilter.MayMatch(text) {
		return nil
	}
	return trie.ScanText(s.NewSession(), text, opts)
}
