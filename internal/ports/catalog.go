package ports

import (
	"context"
	"errors"
)

// ErrCatalogUnavailable is returned by a CatalogSource that cannot enumerate
// entries right now (vault root missing, permissions). Callers keep their
// previous catalog.
var ErrCatalogUnavailable = errors.New("catalog source unavailable")

// ErrNotFound is returned when a requested document or entry does not exist.
var ErrNotFound = errors.New("not found")

// Entry is one linkable target. ID is the stable identity of the backing
// resource (a vault-relative path such as "Glossary/Paris.md"); Name is the
// display name the text is matched against.
//
// Names and aliases need not be unique across entries. The same surface string
// may resolve to several entries and every one of them is reported.
type Entry struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Aliases       []string `json:"aliases,omitempty"`
	CaseSensitive bool     `json:"case_sensitive,omitempty"`
	IgnoreCase    bool     `json:"ignore_case,omitempty"` // overrides automatic match-case
	Excluded      bool     `json:"excluded,omitempty"`    // never linkable
}

// CatalogSource enumerates the current linkable entries from the host's
// metadata (for the filesystem vault: markdown files + frontmatter).
type CatalogSource interface {
	// Entries returns every entry known to the source. The returned slice is
	// owned by the caller.
	Entries(ctx context.Context) ([]Entry, error)
}

// Region is a sub-range of a text span tagged with a syntax type name, as
// produced by the editor's syntax introspection. Types are underscore-joined
// token lists, e.g. "hmd-internal-link_internal-link" or "string_url".
type Region struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	Type string `json:"type"`
}

// Prefilter answers "could any catalog surface occur in this text" cheaply.
// A false answer is authoritative; true means the span must be scanned.
type Prefilter interface {
	MayMatch(text string) bool
}
