package resolver

import (
	"sort"

	"github.com/corey/vlink/internal/domain/trie"
)

// Interval is a half-open byte range [From, To).
type Interval struct {
	From int
	To   int
}

// overlaps reports whether a and b share at least one byte.
func overlaps(a, b Interval) bool {
	return a.From < b.To && b.From < a.To
}

// intervals is a sorted, non-merged exclusion list searched by binary search.
type intervals []Interval

func newIntervals(in []Interval) intervals {
	out := make(intervals, 0, len(in))
	for _, iv := range in {
		if iv.To > iv.From {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From == out[j].From {
			return out[i].To > out[j].To
		}
		return out[i].From < out[j].From
	})
	return out
}

// hits reports whether q overlaps any interval.
func (s intervals) hits(q Interval) bool {
	// Every interval starting at or after q.To is disjoint from q.
	n := sort.Search(len(s), func(i int) bool { return s[i].From >= q.To })
	for i := 0; i < n; i++ {
		if overlaps(s[i], q) {
			return true
		}
	}
	return false
}

// Sorted returns a copy of cands ordered by start ascending, then end
// descending, with ties kept in discovery order.
func Sorted(cands []trie.Candidate) []trie.Candidate {
	out := make([]trie.Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start == out[j].Start {
			return out[i].End > out[j].End
		}
		return out[i].Start < out[j].Start
	})
	return out
}
