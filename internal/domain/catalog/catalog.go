// Package catalog turns the raw entry list of a catalog source into the set of
// linkable targets for one configuration: it applies directory scoping and
// per-entry exclusion, expands every entry into the surface forms the matcher
// looks for, decides which of them require exact case, and resolves explicit
// link text back to entries.
package catalog

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/corey/vlink/internal/domain/trie"
	"github.com/corey/vlink/internal/ports"
)

// Scope is the configuration that decides which entries are linkable and how
// they are matched.
type Scope struct {
	// IncludeAllFiles makes every entry linkable. Otherwise only entries below
	// one of LinkerDirectories are.
	IncludeAllFiles   bool
	LinkerDirectories []string
	// ExcludedDirectories are never part of the catalog.
	ExcludedDirectories []string
	IncludeAliases      bool
	// MatchCaseSensitive makes every surface require exact case.
	MatchCaseSensitive bool
	// CapitalProportion is the share of upper-case letters from which a
	// surface automatically requires exact case ("API", "NASA"). 0 disables
	// the rule.
	CapitalProportion float64
}

// Surface is one string the matcher looks for, with the terminal it reports.
type Surface struct {
	Text     string
	Terminal trie.Terminal
}

// Catalog is an immutable, scoped view of the entries of one source.
type Catalog struct {
	scope   Scope
	entries []ports.Entry // sorted by ID
	byID    map[string]int
	byBase  map[string][]int // folded basename (no extension) -> entry indexes
}

// Build scopes entries and returns the catalog. Later duplicates of an ID are
// ignored.
func Build(entries []ports.Entry, scope Scope) *Catalog {
	var dirPattern *regexp.Regexp
	if !scope.IncludeAllFiles {
		dirPattern = dirRegexp(scope.LinkerDirectories)
	}

	c := &Catalog{
		scope:  scope,
		byID:   make(map[string]int, len(entries)),
		byBase: make(map[string][]int),
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.ID == "" || seen[e.ID] || e.Excluded {
			continue
		}
		if InDirs(e.ID, scope.ExcludedDirectories) {
			continue
		}
		if dirPattern != nil && !dirPattern.MatchString(e.ID) {
			continue
		}
		seen[e.ID] = true
		if e.Name == "" {
			e.Name = baseName(e.ID)
		}
		c.entries = append(c.entries, e)
	}
	sort.Slice(c.entries, func(i, j int) bool { return c.entries[i].ID < c.entries[j].ID })
	for i, e := range c.entries {
		c.byID[e.ID] = i
		base := trie.Fold(baseName(e.ID))
		c.byBase[base] = append(c.byBase[base], i)
	}
	return c
}

// dirRegexp matches paths that have one of dirs as a path component prefix,
// i.e. (^|/)(dir1|dir2)/. It returns nil when dirs is empty (no scoping).
func dirRegexp(dirs []string) *regexp.Regexp {
	var alts []string
	for _, d := range dirs {
		d = strings.Trim(d, "/")
		if d != "" {
			alts = append(alts, regexp.QuoteMeta(d))
		}
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(^|/)(` + strings.Join(alts, "|") + `)/`)
}

// Scope returns the scope the catalog was built with.
func (c *Catalog) Scope() Scope { return c.scope }

// Len returns the number of linkable entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns the linkable entries sorted by ID. The slice must not be
// modified.
func (c *Catalog) Entries() []ports.Entry { return c.entries }

// Entry looks up an entry by ID.
func (c *Catalog) Entry(id string) (ports.Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return ports.Entry{}, false
	}
	return c.entries[i], true
}

// Has reports whether id is a linkable entry.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Trie builds the matcher tree over every surface form.
func (c *Catalog) Trie() *trie.Trie {
	b := trie.NewBuilder()
	for _, s := range c.SurfaceForms() {
		b.Add(s.Text, s.Terminal)
	}
	return b.Build()
}

// InDirs reports whether p lies inside one of dirs (at any depth).
// Directory names are vault-relative; surrounding slashes are ignored.
func InDirs(p string, dirs []string) bool {
	dir := path.Dir(strings.TrimPrefix(p, "/"))
	if dir == "." {
		dir = ""
	}
	for _, d := range dirs {
		d = strings.Trim(d, "/")
		if d == "" {
			if dir == "" {
				return true
			}
			continue
		}
		if dir == d || strings.HasPrefix(dir, d+"/") {
			return true
		}
	}
	return false
}

// baseName is the file name of p without directory and extension.
func baseName(p string) string {
	b := path.Base(p)
	return strings.TrimSuffix(b, path.Ext(b))
}
