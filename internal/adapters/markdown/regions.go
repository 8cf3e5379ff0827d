// Package markdown provides the syntax introspection the live linker needs
// from a markdown document: the regions that must not be annotated (code,
// links, URLs, tags, optionally headings) tagged with editor-style type names,
// and line bounds for cursor filtering.
//
// Type names are underscore-joined token lists. A region whose tokens include
// "internal-link", or both "string" and "url", carries the text of an explicit
// link.
package markdown

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/corey/vlink/internal/ports"
)

// Region type names.
const (
	TypeFrontmatter  = "hmd-frontmatter"
	TypeCodeBlock    = "hmd-codeblock"
	TypeInlineCode   = "inline-code"
	TypeInternalLink = "hmd-internal-link_internal-link"
	TypeLinkText     = "link"
	TypeLinkURL      = "string_url"
	TypeURL          = "url"
	TypeHashtag      = "hashtag"
	typeHeaderPrefix = "header_header-"
)

var (
	frontmatterRE = regexp.MustCompile(`(?s)^---\r?\n.*?\r?\n---[ \t]*(\r?\n|$)`)
	wikiLinkRE    = regexp.MustCompile(`!?\[\[[^\[\]\n]+\]\]`)
	mdLinkRE      = regexp.MustCompile(`!?\[([^\[\]\n]*)\]\(([^()\s]+(?:\s+"[^"\n]*")?)\)`)
	bareURLRE     = regexp.MustCompile(`\b(?:https?|ftp)://[^\s<>()\[\]]+`)
	hashtagRE     = regexp.MustCompile(`(?:^|[\s(])(#[\p{L}\p{N}_/-]*[\p{L}_/-][\p{L}\p{N}_/-]*)`)
)

var parser = goldmark.New().Parser()

type span [2]int

// HeaderType returns the region type of a heading of the given level.
func HeaderType(level int) string {
	return typeHeaderPrefix + strconv.Itoa(level)
}

// Regions returns the syntax regions of doc ordered by From, then To
// descending. Block structure and code spans come from the CommonMark
// parser; wiki links, tags and bare URLs are found in the prose outside code.
func Regions(doc string) []ports.Region {
	var out []ports.Region
	add := func(from, to int, typ string) {
		if to > from {
			out = append(out, ports.Region{From: from, To: to, Type: typ})
		}
	}

	base := 0
	if loc := frontmatterRE.FindStringIndex(doc); loc != nil {
		add(0, loc[1], TypeFrontmatter)
		base = loc[1]
	}

	blocks, spans := walk(doc, base, add)

	pos := base
	for pos < len(doc) {
		next := len(doc)
		if i := strings.IndexByte(doc[pos:], '\n'); i >= 0 {
			next = pos + i + 1
		}
		if !covered(blocks, pos) {
			line := strings.TrimRight(doc[pos:next], "\r\n")
			out = append(out, inlineRegions(line, pos, spans)...)
		}
		pos = next
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].From == out[j].From {
			return out[i].To > out[j].To
		}
		return out[i].From < out[j].From
	})
	return out
}

// walk parses the body after the frontmatter and reports code blocks and
// headings through add. It returns the code block and code span extents in
// document offsets.
func walk(doc string, base int, add func(from, to int, typ string)) (blocks, spans []span) {
	src := []byte(doc[base:])
	root := parser.Parse(text.NewReader(src))

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.FencedCodeBlock:
			if s, ok := fencedExtent(doc, base, n); ok {
				blocks = append(blocks, s)
				add(s[0], s[1], TypeCodeBlock)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			if s, ok := linesExtent(doc, base, n.Lines()); ok {
				blocks = append(blocks, s)
				add(s[0], s[1], TypeCodeBlock)
			}
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			if s, ok := linesExtent(doc, base, n.Lines()); ok {
				add(s[0], s[1], HeaderType(n.Level))
			}
		case *ast.CodeSpan:
			if s, ok := codeSpanExtent(src, n); ok {
				s = span{s[0] + base, s[1] + base}
				spans = append(spans, s)
				add(s[0], s[1], TypeInlineCode)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return blocks, spans
}

// linesExtent covers whole source lines from the first to the last segment,
// line terminator excluded.
func linesExtent(doc string, base int, lines *text.Segments) (span, bool) {
	if lines == nil || lines.Len() == 0 {
		return span{}, false
	}
	first, last := lines.At(0), lines.At(lines.Len()-1)
	from, _ := LineBounds(doc, base+first.Start)
	stop := base + last.Stop
	if stop > base+last.Start {
		stop--
	}
	_, to := LineBounds(doc, stop)
	return span{from, to}, true
}

// fencedExtent covers the opening fence, the content and the closing fence
// when there is one. An unclosed fence runs to the end of the document.
func fencedExtent(doc string, base int, n *ast.FencedCodeBlock) (span, bool) {
	lines := n.Lines()
	var from, to int
	switch {
	case lines.Len() > 0:
		// The opening fence is the line above the first content line.
		first, _ := LineBounds(doc, base+lines.At(0).Start)
		from, _ = LineBounds(doc, first-1)
		to = base + lines.At(lines.Len()-1).Stop
	case n.Info != nil:
		var end int
		from, end = LineBounds(doc, base+n.Info.Segment.Start)
		to = end
		if to < len(doc) {
			to = strings.IndexByte(doc[end:], '\n') + end + 1
		}
	default:
		return span{}, false
	}
	// to now starts the line after the content.
	if to < len(doc) {
		if cs, ce := LineBounds(doc, to); cs == to && isFence(doc[cs:ce]) {
			return span{from, ce}, true
		}
	}
	for to > from && (doc[to-1] == '\n' || doc[to-1] == '\r') {
		to--
	}
	return span{from, to}, true
}

// isFence reports whether line is a bare fence run, quote markers aside.
func isFence(line string) bool {
	t := strings.TrimSpace(strings.TrimLeft(line, " \t>"))
	if len(t) < 3 {
		return false
	}
	c := t[0]
	if c != '`' && c != '~' {
		return false
	}
	return strings.Trim(t, string(c)) == ""
}

// codeSpanExtent widens the span's content to its backtick delimiters.
func codeSpanExtent(src []byte, n *ast.CodeSpan) (span, bool) {
	first, ok1 := n.FirstChild().(*ast.Text)
	last, ok2 := n.LastChild().(*ast.Text)
	if !ok1 || !ok2 {
		return span{}, false
	}
	from, to := first.Segment.Start, last.Segment.Stop
	if from > 0 && src[from-1] != '`' {
		from--
	}
	for from > 0 && src[from-1] == '`' {
		from--
	}
	if to < len(src) && src[to] != '`' {
		to++
	}
	for to < len(src) && src[to] == '`' {
		to++
	}
	return span{from, to}, true
}

func covered(blocks []span, offset int) bool {
	for _, b := range blocks {
		if offset >= b[0] && offset < b[1] {
			return true
		}
	}
	return false
}

// inlineRegions finds links, URLs and tags on one line. base is the line's
// offset in the document. Code spans hide everything inside them.
func inlineRegions(line string, base int, code []span) []ports.Region {
	var out []ports.Region
	inCode := func(from, to int) bool {
		for _, c := range code {
			if base+from < c[1] && c[0] < base+to {
				return true
			}
		}
		return false
	}

	var links []span
	for _, m := range wikiLinkRE.FindAllStringIndex(line, -1) {
		if inCode(m[0], m[1]) {
			continue
		}
		links = append(links, span{m[0], m[1]})
		out = append(out, ports.Region{From: base + m[0], To: base + m[1], Type: TypeInternalLink})
	}
	inLink := func(from, to int) bool {
		for _, l := range links {
			if from < l[1] && l[0] < to {
				return true
			}
		}
		return false
	}

	for _, m := range mdLinkRE.FindAllStringSubmatchIndex(line, -1) {
		if inCode(m[0], m[1]) || inLink(m[0], m[1]) {
			continue
		}
		links = append(links, span{m[0], m[1]})
		// [text] and (target) are separate tokens in the editor.
		out = append(out,
			ports.Region{From: base + m[0], To: base + m[3] + 1, Type: TypeLinkText},
			ports.Region{From: base + m[4], To: base + m[5], Type: TypeLinkURL},
		)
	}

	for _, m := range bareURLRE.FindAllStringIndex(line, -1) {
		m[1] = m[0] + len(strings.TrimRight(line[m[0]:m[1]], ".,;:!?'\""))
		if inCode(m[0], m[1]) || inLink(m[0], m[1]) {
			continue
		}
		links = append(links, span{m[0], m[1]})
		out = append(out, ports.Region{From: base + m[0], To: base + m[1], Type: TypeURL})
	}

	for _, m := range hashtagRE.FindAllStringSubmatchIndex(line, -1) {
		if inCode(m[2], m[3]) || inLink(m[2], m[3]) {
			continue
		}
		out = append(out, ports.Region{From: base + m[2], To: base + m[3], Type: TypeHashtag})
	}
	return out
}

// LineBounds returns the start and end offsets of the line containing
// offset. end excludes the line terminator.
func LineBounds(text string, offset int) (start, end int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	start = strings.LastIndexByte(text[:offset], '\n') + 1
	end = len(text)
	if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
		end = offset + i
	}
	if end > start && text[end-1] == '\r' {
		end--
	}
	return start, end
}
