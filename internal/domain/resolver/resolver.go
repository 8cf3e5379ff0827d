// Package resolver turns the raw candidate list of one scanned span into the
// final set of annotations: sorted, de-duplicated, clear of exclusion regions,
// free of overlaps and filtered around the cursor.
//
// Resolve is a pure function of its Input. It never fails; bad input degrades
// to fewer annotations.
package resolver

import "github.com/corey/vlink/internal/domain/trie"

// Input is everything one resolution depends on.
type Input struct {
	// Candidates of one span, in any order, in the same coordinate space as
	// Exclusions and Cursor.
	Candidates []trie.Candidate
	// Exclusions are regions that must never be annotated.
	Exclusions []Interval
	// ExplicitlyLinked holds targets already linked by real links.
	ExplicitlyLinked map[string]bool
	// AlreadyLinked holds targets accepted in earlier spans of the same view.
	AlreadyLinked map[string]bool
	Policy        Policy
	// Cursor is nil when there is no caret (static rendering).
	Cursor *Cursor
}

// Annotation is one accepted, non-overlapping span.
type Annotation struct {
	From      int    `json:"from"`
	To        int    `json:"to"`
	EntryID   string `json:"entry_id"`
	Name      string `json:"name"`
	IsAlias   bool   `json:"is_alias"`
	IsSubWord bool   `json:"is_sub_word"`
}

// Interval returns the span of a.
func (a Annotation) Interval() Interval { return Interval{From: a.From, To: a.To} }

// Result is the outcome of Resolve.
type Result struct {
	// Annotations to render, ordered by From.
	Annotations []Annotation
	// Linked lists the targets accepted by the sweep before the cursor
	// filters ran, in acceptance order. Callers carry them into
	// AlreadyLinked for the next span.
	Linked []string
}

// Resolve runs the pipeline: sort, drop unwanted targets, sweep for overlaps
// and exclusions, then filter around the cursor.
func Resolve(in Input) Result {
	cands := Sorted(in.Candidates)
	pol := in.Policy
	excl := newIntervals(in.Exclusions)

	deleted := make([]bool, len(cands))
	for i, c := range cands {
		if pol.MatchOnlyWholeWords && c.SubWord {
			deleted[i] = true
		}
		if pol.ExcludeLinksToRealLinkedFiles && in.ExplicitlyLinked[c.EntryID] {
			deleted[i] = true
		}
		if pol.OnlyLinkOnce && in.AlreadyLinked[c.EntryID] {
			deleted[i] = true
		}
	}

	for i, c := range cands {
		if deleted[i] {
			continue
		}
		if excl.hits(Interval{From: c.Start, To: c.End}) {
			deleted[i] = true
			continue
		}
		for j := i + 1; j < len(cands) && cands[j].Start < c.End; j++ {
			deleted[j] = true
		}
		if pol.OnlyLinkOnce {
			for j := i + 1; j < len(cands); j++ {
				if cands[j].EntryID == c.EntryID {
					deleted[j] = true
				}
			}
		}
	}

	var res Result
	accepted := make([]Annotation, 0, len(cands))
	for i, c := range cands {
		if deleted[i] {
			continue
		}
		accepted = append(accepted, Annotation{
			From:      c.Start,
			To:        c.End,
			EntryID:   c.EntryID,
			Name:      c.Name,
			IsAlias:   c.IsAlias,
			IsSubWord: c.SubWord,
		})
		res.Linked = append(res.Linked, c.EntryID)
	}

	if in.Cursor == nil {
		res.Annotations = accepted
		return res
	}
	for _, a := range accepted {
		if !suppressed(a, in.Cursor, pol) {
			res.Annotations = append(res.Annotations, a)
		}
	}
	return res
}

// suppressed applies the cursor post-filter to one accepted annotation.
func suppressed(a Annotation, cur *Cursor, pol Policy) bool {
	if cur.Offset >= a.From && cur.Offset <= a.To {
		return true
	}
	if !cur.Active {
		return false
	}

	onLine := a.From >= cur.LineStart && a.To <= cur.LineEnd
	if pol.ExcludeLinksInCurrentLine && onLine {
		return true
	}
	if pol.FixIMEProblem && onLine && cur.Offset > a.To {
		return MayBeComposing(cur.lineSlice(cur.LineStart, a.From), cur.lineSlice(a.To, cur.Offset))
	}
	return false
}
