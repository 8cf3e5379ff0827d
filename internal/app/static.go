package app

import (
	"errors"

	"github.com/corey/vlink/internal/adapters/htmldoc"
	"github.com/corey/vlink/internal/config"
	"github.com/corey/vlink/internal/domain/resolver"
	"github.com/corey/vlink/internal/domain/trie"
)

// ErrNoSnapshot is returned by a StaticLinker created without a catalog.
var ErrNoSnapshot = errors.New("static linker: no catalog snapshot")

// Stats summarises one static render.
type Stats struct {
	TextNodes int // text nodes examined
	Links     int // virtual links inserted
}

// StaticLinker annotates rendered output. It works on one snapshot for its
// whole life and never touches the live cache, so a render and a live
// session can run side by side on different generations.
type StaticLinker struct {
	snap     *Snapshot
	settings config.Settings
}

// NewStaticLinker creates a static linker over snap.
func NewStaticLinker(snap *Snapshot, settings config.Settings) *StaticLinker {
	return &StaticLinker{snap: snap, settings: settings}
}

// Generation is the catalog generation the linker renders with.
func (s *StaticLinker) Generation() uint64 {
	if s.snap == nil {
		return 0
	}
	return s.snap.Generation
}

// RenderHTML inserts virtual links into an HTML fragment rendered from the
// document at sourcePath. Only direct text children of paragraph-level and
// inline elements (plus headings when included) are annotated; text inside
// links and code is left alone.
func (s *StaticLinker) RenderHTML(sourcePath, fragment string) (string, Stats, error) {
	var stats Stats
	if s.snap == nil {
		return "", stats, ErrNoSnapshot
	}
	if !s.settings.LinkerActivated {
		return fragment, stats, nil
	}

	root := htmldoc.Parse(fragment)

	explicit := make(map[string]bool)
	for _, target := range htmldoc.LinkTargets(root) {
		if id, ok := s.snap.Catalog.ResolveLink(target, sourcePath); ok {
			explicit[id] = true
		}
	}
	already := make(map[string]bool)

	tags := append(append([]string(nil), htmldoc.BaseTags...), s.settings.HeadingTags()...)
	for _, node := range htmldoc.TextTargets(root, tags) {
		stats.TextNodes++
		text := node.Data
		res := s.resolve(sourcePath, text, explicit, already)
		if len(res.Annotations) == 0 {
			continue
		}
		for _, id := range res.Linked {
			already[id] = true
		}
		htmldoc.ReplaceText(node, s.segments(text, res.Annotations))
		stats.Links += len(res.Annotations)
	}
	return htmldoc.Render(root), stats, nil
}

// AnnotateText resolves the annotations of a plain text span written in the
// document at sourcePath.
func (s *StaticLinker) AnnotateText(sourcePath, text string) []resolver.Annotation {
	if s.snap == nil || !s.settings.LinkerActivated {
		return nil
	}
	return s.resolve(sourcePath, text, nil, nil).Annotations
}

func (s *StaticLinker) resolve(sourcePath, text string, explicit, already map[string]bool) resolver.Result {
	pol := s.settings.Policy()
	// Scoped glossaries never link a glossary note to itself.
	exclude := ""
	if pol.ExcludeLinksToOwnNote || !s.settings.IncludeAllFiles {
		exclude = sourcePath
	}
	cands := s.snap.Scan(text, trie.ScanOptions{
		WholeWords: pol.MatchOnlyWholeWords,
		Exclude:    exclude,
	})
	return resolver.Resolve(resolver.Input{
		Candidates:       cands,
		ExplicitlyLinked: explicit,
		AlreadyLinked:    already,
		Policy:           pol,
	})
}

// segments splits text around anns, which are ordered and non-overlapping.
func (s *StaticLinker) segments(text string, anns []resolver.Annotation) []htmldoc.Segment {
	segs := make([]htmldoc.Segment, 0, 2*len(anns)+1)
	last := 0
	for _, a := range anns {
		if a.From > last {
			segs = append(segs, htmldoc.Segment{Text: text[last:a.From]})
		}
		req := NewLinkRequest(a, text, s.settings)
		segs = append(segs, htmldoc.Segment{Link: &htmldoc.Link{
			Text:    req.Text,
			Href:    req.Target,
			Classes: req.Classes,
			Suffix:  req.Suffix,
		}})
		last = a.To
	}
	if last < len(text) {
		segs = append(segs, htmldoc.Segment{Text: text[last:]})
	}
	return segs
}
