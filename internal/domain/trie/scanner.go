package trie

// Candidate is a raw match reported by a Scanner: some surface of EntryID
// ends at End. Offsets are byte offsets into the scanned text, End exclusive.
type Candidate struct {
	Start   int
	End     int
	EntryID string
	Name    string
	Surface string
	IsAlias bool
	SubWord bool // not bounded by word boundaries on both sides
}

// branch is one live traversal: a trie position plus the offset it started at.
type branch struct {
	node  *Node
	start int
	exact bool // reached through exact-case edges only
}

// Scanner is the active traversal set for one scan over one Trie. It is not
// safe for concurrent use; create one Scanner per concurrent scan.
type Scanner struct {
	trie     *Trie
	branches []branch
	spare    []branch
	pos      int
}

// NewScanner returns a scanner positioned at offset 0 of a new span.
func NewScanner(t *Trie) *Scanner {
	if t == nil {
		t = Empty()
	}
	return &Scanner{trie: t}
}

// Trie returns the tree this scanner walks.
func (s *Scanner) Trie() *Trie { return s.trie }

// Reset clears all open branches and rewinds the offset to 0. Call it at the
// start of every independent text span.
func (s *Scanner) Reset() {
	s.branches = s.branches[:0]
	s.spare = s.spare[:0]
	s.pos = 0
}

// Offset is the byte offset just past the last consumed code point.
func (s *Scanner) Offset() int { return s.pos }

// width is the number of open branches.
func (s *Scanner) width() int { return len(s.branches) }

// PushChar consumes one code point. Every open branch, plus a fresh branch
// from the root, follows the edge labelled r and, when folding changes r, the
// folded edge as well. Branches with no such edge are dropped.
func (s *Scanner) PushChar(r rune) {
	s.branches = append(s.branches, branch{node: s.trie.root, start: s.pos, exact: true})

	folded := foldRune(r)
	next := s.spare[:0]
	for _, b := range s.branches {
		if c := b.node.Child(r); c != nil {
			next = append(next, branch{node: c, start: b.start, exact: b.exact})
		}
		if folded != r {
			if c := b.node.Child(folded); c != nil {
				next = append(next, branch{node: c, start: b.start})
			}
		}
	}
	s.spare = s.branches[:0]
	s.branches = next

	s.pos += runeWidth(r)
}

// CurrentMatches returns every terminal match ending at the current offset.
// Terminals of entry exclude are skipped (own-note suppression); pass "" to
// keep all. Terminals that require case are only reported on exact branches.
func (s *Scanner) CurrentMatches(exclude string) []Candidate {
	var out []Candidate
	for _, b := range s.branches {
		for _, t := range b.node.terminals {
			if t.RequiresCase && !b.exact {
				continue
			}
			if exclude != "" && t.EntryID == exclude {
				continue
			}
			out = append(out, Candidate{
				Start:   b.start,
				End:     s.pos,
				EntryID: t.EntryID,
				Name:    t.Name,
				Surface: t.Surface,
				IsAlias: t.IsAlias,
			})
		}
	}
	return out
}
