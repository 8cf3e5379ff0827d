// Package vault implements ports.CatalogSource over a directory of markdown
// notes. Every note is an entry named after its file; frontmatter contributes
// aliases and per-note match flags.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corey/vlink/internal/ports"
)

// Directories never walked.
var ignoreDirs = map[string]bool{
	".git":         true,
	".obsidian":    true,
	".trash":       true,
	".vlink":       true,
	"node_modules": true,
}

// NoteExt is the extension of documents that become entries.
const NoteExt = ".md"

// Source implements ports.CatalogSource.
type Source struct {
	root string
}

// NewSource returns a source rooted at root. The directory is not checked
// until the first call.
func NewSource(root string) *Source {
	return &Source{root: root}
}

// Root returns the vault directory.
func (s *Source) Root() string { return s.root }

// Documents lists the vault-relative, slash-separated paths of every note,
// sorted.
func (s *Source) Documents(ctx context.Context) ([]string, error) {
	info, err := os.Stat(s.root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ports.ErrCatalogUnavailable, s.root)
	}

	var docs []string
	err = filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != s.root && ignoreDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), NoteExt) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return nil
		}
		docs = append(docs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}
	sort.Strings(docs)
	return docs, nil
}

// Entries implements ports.CatalogSource. A note whose frontmatter cannot be
// parsed is still an entry, just without aliases or flags.
func (s *Source) Entries(ctx context.Context) ([]ports.Entry, error) {
	docs, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]ports.Entry, 0, len(docs))
	for _, rel := range docs {
		e := ports.Entry{ID: rel, Name: strings.TrimSuffix(path.Base(rel), path.Ext(rel))}
		content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
		if err == nil {
			if fm, _, err := ParseFrontmatter(content); err == nil {
				e.Aliases = fm.AllAliases()
				e.CaseSensitive = fm.MatchCase
				e.IgnoreCase = fm.IgnoreCase
				e.Excluded = fm.Exclude
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReadDocument returns the content of a vault-relative note. Paths escaping
// the vault are rejected.
func (s *Source) ReadDocument(rel string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(rel))[1:]
	if clean == "" {
		return "", fmt.Errorf("%w: %q", ports.ErrNotFound, rel)
	}
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(clean)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ports.ErrNotFound, clean)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", clean, err)
	}
	return string(data), nil
}

// Rel converts an absolute path inside the vault to the slash-separated
// vault-relative form used as entry ID. ok is false for paths outside.
func (s *Source) Rel(abs string) (string, bool) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
