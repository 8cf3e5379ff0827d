package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/corey/vlink/internal/domain/trie"
)

// SurfaceForms lists every string the matcher must find for this catalog:
// each entry's name and, when aliases are included, its aliases. Each is
// added in composed and decomposed Unicode form so that "Zürich" typed either
// way is found.
func (c *Catalog) SurfaceForms() []Surface {
	var out []Surface
	for _, e := range c.entries {
		add := func(text string, alias bool) {
			text = strings.TrimSpace(text)
			if text == "" {
				return
			}
			t := trie.Terminal{
				EntryID:      e.ID,
				Name:         e.Name,
				Surface:      text,
				IsAlias:      alias,
				RequiresCase: c.requiresCase(text, e.CaseSensitive, e.IgnoreCase),
			}
			seen := map[string]bool{}
			for _, v := range []string{text, norm.NFC.String(text), norm.NFD.String(text)} {
				if seen[v] {
					continue
				}
				seen[v] = true
				t.Surface = v
				out = append(out, Surface{Text: v, Terminal: t})
			}
		}

		add(e.Name, false)
		if c.scope.IncludeAliases {
			for _, a := range e.Aliases {
				add(a, true)
			}
		}
	}
	return out
}

// requiresCase decides whether surface only matches with its exact case.
func (c *Catalog) requiresCase(surface string, caseSensitive, ignoreCase bool) bool {
	if c.scope.MatchCaseSensitive || caseSensitive {
		return true
	}
	if ignoreCase || c.scope.CapitalProportion <= 0 {
		return false
	}
	return CapitalShare(surface) >= c.scope.CapitalProportion
}

// CapitalShare is the fraction of letters in s that are upper case. Surfaces
// with fewer than two letters report 0.
func CapitalShare(s string) float64 {
	var letters, upper int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters < 2 {
		return 0
	}
	return float64(upper) / float64(letters)
}
