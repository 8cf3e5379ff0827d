package catalog

import (
	"net/url"
	"path"
	"strings"

	"github.com/corey/vlink/internal/domain/trie"
)

// LinkTarget extracts the link path from the source text of an explicit
// link: "[[Target|shown]]", "[[Target#Heading]]", "[shown](Target.md)",
// "<Target.md>" or a bare path. Percent-encoding is decoded.
func LinkTarget(linkText string) string {
	s := strings.TrimSpace(linkText)

	if i := strings.Index(s, "]("); i >= 0 && strings.HasSuffix(s, ")") {
		s = s[i+2 : len(s)-1]
		// [x](target "title")
		if j := strings.Index(s, ` "`); j >= 0 {
			s = s[:j]
		}
	}
	s = strings.TrimPrefix(s, "!")
	s = strings.TrimPrefix(s, "[[")
	s = strings.TrimSuffix(s, "]]")
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")

	if i := strings.Index(s, "|"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "#"); i >= 0 {
		s = s[:i]
	}
	if dec, err := url.PathUnescape(s); err == nil {
		s = dec
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "./")
	return strings.TrimPrefix(s, "/")
}

// ResolveLink maps the source text of an explicit link, written in the
// document at sourcePath, to the entry it points at. Lookup order: exact ID,
// ID with ".md" appended, then entries whose path ends with the link path
// (basename match for plain names). Among several, the one sharing the
// longest directory prefix with sourcePath wins; ties go to the smallest ID.
func (c *Catalog) ResolveLink(linkText, sourcePath string) (string, bool) {
	target := LinkTarget(linkText)
	if target == "" {
		return "", false
	}
	if _, ok := c.byID[target]; ok {
		return target, true
	}
	if _, ok := c.byID[target+".md"]; ok {
		return target + ".md", true
	}

	stem := strings.TrimSuffix(target, ".md")
	base := trie.Fold(path.Base(stem))
	suffix := ""
	if strings.Contains(stem, "/") {
		suffix = "/" + trie.Fold(stem)
	}

	best, bestScore := "", -1
	srcDir := path.Dir(sourcePath)
	for _, i := range c.byBase[base] {
		id := c.entries[i].ID
		if suffix != "" && !strings.HasSuffix("/"+trie.Fold(strings.TrimSuffix(id, path.Ext(id))), suffix) {
			continue
		}
		score := commonDirDepth(srcDir, path.Dir(id))
		if score > bestScore || (score == bestScore && id < best) {
			best, bestScore = id, score
		}
	}
	return best, best != ""
}

// commonDirDepth counts the leading directory components a and b share.
func commonDirDepth(a, b string) int {
	if a == "." || b == "." {
		return 0
	}
	as, bs := strings.Split(a, "/"), strings.Split(b, "/")
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return n
}
