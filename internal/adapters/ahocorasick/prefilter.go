// Package ahocorasick provides the span prefilter: one Aho-Corasick automaton
// over every catalog surface form, used to skip spans that cannot contain a
// match before the incremental scanner walks them code point by code point.
// It wraps the petar-dambovaliev/aho-corasick library.
package ahocorasick

import (
	"strings"

	aho "github.com/petar-dambovaliev/aho-corasick"
)

// Prefilter implements ports.Prefilter. Patterns and text are lower-cased, so
// the answer is a superset of what the case-aware scanner will report.
// Immutable after construction; safe for concurrent use.
type Prefilter struct {
	automaton aho.AhoCorasick
	patterns  []string
}

// NewPrefilter compiles the automaton from the given surfaces. Blank and
// duplicate surfaces are dropped.
func NewPrefilter(surfaces []string) *Prefilter {
	seen := make(map[string]bool, len(surfaces))
	p := make([]string, 0, len(surfaces))
	for _, s := range surfaces {
		s = strings.ToLower(s)
		if strings.TrimSpace(s) == "" || seen[s] {
			continue
		}
		seen[s] = true
		p = append(p, s)
	}

	f := &Prefilter{patterns: p}
	if len(p) > 0 {
		builder := aho.NewAhoCorasickBuilder(aho.Opts{
			DFA: true,
		})
		f.automaton = builder.Build(p)
	}
	return f
}

// MayMatch reports whether any surface occurs in text.
func (f *Prefilter) MayMatch(text string) bool {
	if f == nil || len(f.patterns) == 0 || text == "" {
		return false
	}
	return len(f.automaton.FindAll(strings.ToLower(text))) > 0
}
