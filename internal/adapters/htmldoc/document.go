// Package htmldoc is the text source and sink of static rendering. It parses
// an HTML fragment into a container element, collects the text nodes the
// linker may annotate, replaces them with annotated segments and renders the
// result. It builds on golang.org/x/net/html and github.com/go-shiori/dom.
package htmldoc

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// BaseTags are the elements whose direct text children are annotated.
var BaseTags = []string{"p", "li", "td", "th", "span", "em", "strong"}

// Elements whose subtree is never annotated.
var skipAncestors = map[string]bool{
	"a":      true,
	"code":   true,
	"pre":    true,
	"script": true,
	"style":  true,
}

// Parse parses fragment into a detached <div> container.
func Parse(fragment string) *html.Node {
	container := dom.CreateElement("div")
	dom.SetInnerHTML(container, fragment)
	return container
}

// Render serialises the children of container.
func Render(container *html.Node) string {
	return dom.InnerHTML(container)
}

// TextTargets returns the non-empty direct text children of every element
// named in tags, followed by those of root itself, in tag order then document
// order. Text below a, code or pre is skipped; each node appears once.
func TextTargets(root *html.Node, tags []string) []*html.Node {
	seen := make(map[*html.Node]bool)
	var out []*html.Node
	collect := func(el *html.Node) {
		for _, child := range dom.ChildNodes(el) {
			if child.Type != html.TextNode || child.Data == "" || seen[child] {
				continue
			}
			if underSkipped(child, root) {
				continue
			}
			seen[child] = true
			out = append(out, child)
		}
	}

	for _, tag := range tags {
		for _, el := range dom.GetElementsByTagName(root, tag) {
			collect(el)
		}
	}
	collect(root)
	return out
}

// underSkipped reports whether n has a skipped element between itself and
// root.
func underSkipped(n, root *html.Node) bool {
	for p := n.Parent; p != nil && p != root; p = p.Parent {
		if p.Type == html.ElementNode && skipAncestors[p.Data] {
			return true
		}
	}
	return false
}

// Link describes the element that replaces one annotated span.
type Link struct {
	Text    string
	Href    string
	Classes []string // classes of the wrapping span
	Suffix  string   // rendered in a <sup>; empty for none
}

// Segment is a piece of replacement content: plain text or a link.
type Segment struct {
	Text string
	Link *Link
}

// ReplaceText replaces the text node n with segments. Empty text segments are
// dropped.
func ReplaceText(n *html.Node, segments []Segment) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for _, seg := range segments {
		var node *html.Node
		switch {
		case seg.Link != nil:
			node = linkNode(seg.Link)
		case seg.Text != "":
			node = dom.CreateTextNode(seg.Text)
		default:
			continue
		}
		parent.InsertBefore(node, n)
	}
	parent.RemoveChild(n)
}

// linkNode builds
//
//	<span class="…"><a class="internal-link virtual-link-a" …>text</a><sup class="linker-suffix-icon">suffix</sup></span>
func linkNode(l *Link) *html.Node {
	span := dom.CreateElement("span")
	dom.SetAttribute(span, "class", strings.Join(l.Classes, " "))

	a := dom.CreateElement("a")
	dom.SetAttribute(a, "href", l.Href)
	dom.SetAttribute(a, "data-href", l.Href)
	dom.SetAttribute(a, "class", "internal-link virtual-link-a")
	dom.SetAttribute(a, "target", "_blank")
	dom.SetAttribute(a, "rel", "noopener")
	dom.AppendChild(a, dom.CreateTextNode(l.Text))
	dom.AppendChild(span, a)

	if l.Suffix != "" {
		sup := dom.CreateElement("sup")
		dom.SetAttribute(sup, "class", "linker-suffix-icon")
		dom.AppendChild(sup, dom.CreateTextNode(l.Suffix))
		dom.AppendChild(span, sup)
	}
	return span
}

// LinkTargets returns the targets of the real links in root: data-href when
// present, else href. Virtual links inserted by ReplaceText are skipped.
func LinkTargets(root *html.Node) []string {
	var out []string
	for _, a := range dom.GetElementsByTagName(root, "a") {
		if strings.Contains(dom.ClassName(a), "virtual-link-a") {
			continue
		}
		target := dom.GetAttribute(a, "data-href")
		if target == "" {
			target = dom.GetAttribute(a, "href")
		}
		if target != "" {
			out = append(out, target)
		}
	}
	return out
}
