package app

import (
	"sort"
	"strings"

	"github.com/corey/vlink/internal/adapters/markdown"
	"github.com/corey/vlink/internal/config"
	"github.com/corey/vlink/internal/domain/catalog"
	"github.com/corey/vlink/internal/domain/resolver"
	"github.com/corey/vlink/internal/domain/trie"
	"github.com/corey/vlink/internal/ports"
)

// frontmatterType is excluded in addition to the configured types: the
// metadata block is never prose.
const frontmatterType = "frontmatter"

// LiveRequest is one editor view to annotate.
type LiveRequest struct {
	DocPath string        // vault-relative path of the document
	Text    string        // full document text
	Visible []ports.Range // empty = whole document
	Cursor  *int          // byte offset of the caret; nil = no caret
	Active  bool          // the view has focus
	Regions []ports.Region
	// Regions are the syntax regions of Text. Nil means they are computed
	// with the markdown scanner.
}

// LiveResult holds the link requests of one view, in document order.
type LiveResult struct {
	Generation uint64
	Links      []ports.LinkRequest
}

// LiveLinker annotates markdown documents the way the editor draws them:
// per visible range, skipping code, links, URLs, hashtags and (optionally)
// headings, and honouring the cursor.
type LiveLinker struct {
	cache    *Cache
	settings config.Settings
}

// NewLiveLinker creates a live linker over cache.
func NewLiveLinker(cache *Cache, settings config.Settings) *LiveLinker {
	return &LiveLinker{cache: cache, settings: settings}
}

// Annotate computes the link requests for req. It never fails; anything it
// cannot use yields fewer links.
func (l *LiveLinker) Annotate(req LiveRequest) LiveResult {
	snap := l.cache.Snapshot()
	result := LiveResult{Generation: snap.Generation, Links: []ports.LinkRequest{}}

	if !l.settings.LinkerActivated {
		return result
	}
	if dirs := l.settings.ExcludedDirectoriesForLinking; len(dirs) > 0 && catalog.InDirs(req.DocPath, dirs) {
		return result
	}

	text := req.Text
	regions := req.Regions
	if regions == nil {
		regions = markdown.Regions(text)
	}
	excludedTypes := append(l.settings.ExcludedTypes(), frontmatterType)

	pol := l.settings.Policy()
	exclude := ""
	if pol.ExcludeLinksToOwnNote {
		exclude = req.DocPath
	}
	cur := cursorAt(text, req.Cursor, req.Active)

	explicit := make(map[string]bool)
	already := make(map[string]bool)

	for _, r := range visibleRanges(req.Visible, len(text)) {
		var exclusions []resolver.Interval
		for _, reg := range regions {
			if reg.To < r.From || reg.From > r.To {
				continue
			}
			if !typeExcluded(reg.Type, excludedTypes) {
				continue
			}
			exclusions = append(exclusions, resolver.Interval{From: reg.From, To: reg.To})
			if isLinkType(reg.Type) && reg.From >= 0 && reg.To <= len(text) {
				if id, ok := snap.Catalog.ResolveLink(text[reg.From:reg.To], req.DocPath); ok {
					explicit[id] = true
				}
			}
		}

		cands := snap.Scan(text[r.From:r.To], trie.ScanOptions{
			WholeWords: pol.MatchOnlyWholeWords,
			Exclude:    exclude,
		})
		for i := range cands {
			cands[i].Start += r.From
			cands[i].End += r.From
		}

		res := resolver.Resolve(resolver.Input{
			Candidates:       cands,
			Exclusions:       exclusions,
			ExplicitlyLinked: explicit,
			AlreadyLinked:    already,
			Policy:           pol,
			Cursor:           cur,
		})
		for _, id := range res.Linked {
			already[id] = true
		}

		latest := l.cache.Snapshot()
		for _, a := range res.Annotations {
			// A rebuild finished mid-scan: drop links to entries that are gone.
			if latest != snap && !latest.Catalog.Has(a.EntryID) {
				continue
			}
			result.Links = append(result.Links, NewLinkRequest(a, text, l.settings))
		}
	}
	return result
}

// visibleRanges clamps ranges to [0, n], drops empty ones and merges those
// that overlap or touch, so no byte is scanned twice. No ranges means the
// whole text.
func visibleRanges(in []ports.Range, n int) []ports.Range {
	if len(in) == 0 {
		if n == 0 {
			return nil
		}
		return []ports.Range{{From: 0, To: n}}
	}
	out := make([]ports.Range, 0, len(in))
	for _, r := range in {
		if r.From < 0 {
			r.From = 0
		}
		if r.To > n {
			r.To = n
		}
		if r.From < r.To {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })

	merged := out[:0]
	for _, r := range out {
		if last := len(merged) - 1; last >= 0 && r.From <= merged[last].To {
			if r.To > merged[last].To {
				merged[last].To = r.To
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// cursorAt builds the resolver cursor for a caret offset.
func cursorAt(text string, offset *int, active bool) *resolver.Cursor {
	if offset == nil {
		return nil
	}
	off := *offset
	if off < 0 {
		off = 0
	}
	if off > len(text) {
		off = len(text)
	}
	start, end := markdown.LineBounds(text, off)
	return &resolver.Cursor{
		Offset:    off,
		LineStart: start,
		LineEnd:   end,
		Line:      text[start:end],
		Active:    active,
	}
}

// typeExcluded reports whether a region type contains any excluded fragment.
func typeExcluded(typ string, excluded []string) bool {
	for _, e := range excluded {
		if strings.Contains(typ, e) {
			return true
		}
	}
	return false
}

// isLinkType reports whether a region holds an explicit link target: an
// internal link, or a token list containing both "string" and "url".
func isLinkType(typ string) bool {
	tokens := strings.Split(typ, "_")
	var str, url bool
	for _, t := range tokens {
		switch t {
		case "hmd-internal-link", "internal-link":
			return true
		case "string":
			str = true
		case "url":
			url = true
		}
	}
	return str && url
}
