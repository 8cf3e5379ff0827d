package resolver

// Policy is the set of switches that shape resolution. It is a plain value:
// callers derive it once per settings change and pass it into every Resolve.
type Policy struct {
	MatchOnlyWholeWords           bool
	ExcludeLinksToOwnNote         bool
	ExcludeLinksToRealLinkedFiles bool
	OnlyLinkOnce                  bool
	ExcludeLinksInCurrentLine     bool
	FixIMEProblem                 bool
}

// Cursor locates the caret in the coordinate space of the candidates.
// Line is the text of the caret's line, which starts at LineStart.
type Cursor struct {
	Offset    int
	LineStart int
	LineEnd   int
	Line      string
	// Active marks the focused view. The current-line and IME filters only
	// apply to the focused view; cursor proximity applies to every view.
	Active bool
}

// lineSlice returns the part of the cursor line between absolute offsets
// from and to, clamped to the line.
func (c *Cursor) lineSlice(from, to int) string {
	from -= c.LineStart
	to -= c.LineStart
	if from < 0 {
		from = 0
	}
	if to > len(c.Line) {
		to = len(c.Line)
	}
	if from >= to {
		return ""
	}
	return c.Line[from:to]
}
