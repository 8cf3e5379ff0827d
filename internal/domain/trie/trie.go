// Package trie implements the incremental multi-pattern matcher behind virtual
// links: an immutable prefix tree over every catalog surface form (names,
// aliases and their variants), and a Scanner that holds the per-scan set of
// live trie positions.
//
// The tree is never mutated after Build, so any number of Scanners may walk
// the same Trie concurrently. A catalog change produces a new Trie; scans that
// started on the old one finish against it unaffected.
package trie

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Terminal describes one catalog entry completed at a node.
type Terminal struct {
	EntryID      string // identity of the target (vault-relative path)
	Name         string // display name of the target
	Surface      string // the name or alias as written in the catalog
	IsAlias      bool
	RequiresCase bool // only reported when the text matched the surface's exact case
}

// Node is one prefix of some set of surface strings.
type Node struct {
	children  map[rune]*Node
	terminals []Terminal
	depth     int // prefix length in code points
}

// Child returns the node reached by r, or nil.
func (n *Node) Child(r rune) *Node {
	if n.children == nil {
		return nil
	}
	return n.children[r]
}

// Terminals returns the entries completed exactly at this node. The slice
// must not be modified.
func (n *Node) Terminals() []Terminal { return n.terminals }

// IsTerminal reports whether any surface ends at this node.
func (n *Node) IsTerminal() bool { return len(n.terminals) > 0 }

// Depth is the number of code points from the root to n.
func (n *Node) Depth() int { return n.depth }

// Trie is the frozen prefix tree. Safe for concurrent read-only use.
type Trie struct {
	root     *Node
	surfaces int
}

// Root returns the root node.
func (t *Trie) Root() *Node { return t.root }

// Len returns the number of distinct (surface, entry) terminals.
func (t *Trie) Len() int { return t.surfaces }

// Empty returns a trie with no surfaces. Scanning it never matches.
func Empty() *Trie {
	return &Trie{root: &Node{}}
}

// Builder accumulates surfaces. Insertion order only affects the order of
// terminals sharing a node, never which matches are found.
type Builder struct {
	root     *Node
	surfaces int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{root: &Node{}}
}

// Add inserts surface for t. Case-insensitive surfaces are stored folded so
// that a scanner can reach them through the folded edge of any input rune.
// Empty surfaces and exact duplicates of an existing terminal are ignored.
func (b *Builder) Add(surface string, t Terminal) {
	if strings.TrimSpace(surface) == "" {
		return
	}
	if t.Surface == "" {
		t.Surface = surface
	}
	key := surface
	if !t.RequiresCase {
		key = Fold(surface)
	}

	n := b.root
	for _, r := range key {
		child := n.Child(r)
		if child == nil {
			if n.children == nil {
				n.children = make(map[rune]*Node, 1)
			}
			child = &Node{depth: n.depth + 1}
			n.children[r] = child
		}
		n = child
	}

	for _, existing := range n.terminals {
		if existing == t {
			return
		}
	}
	n.terminals = append(n.terminals, t)
	b.surfaces++
}

// Build freezes the accumulated surfaces. The builder must not be used
// afterwards.
func (b *Builder) Build() *Trie {
	t := &Trie{root: b.root, surfaces: b.surfaces}
	b.root = nil
	return t
}

// Fold maps s to the form case-insensitive surfaces are stored in.
func Fold(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// foldRune is the per-code-point counterpart of Fold.
func foldRune(r rune) rune {
	return unicode.ToLower(r)
}

// runeWidth is the UTF-8 width of r, with invalid runes counted as one byte
// (the scanner is fed a substitute for each undecodable byte).
func runeWidth(r rune) int {
	if w := utf8.RuneLen(r); w > 0 {
		return w
	}
	return 1
}
