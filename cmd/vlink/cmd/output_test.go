package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolterrors "go.etcd.io/bbolt/errors"

	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/corey/vlink/internal/app"
	"github.com/corey/vlink/internal/ports"
)

func TestFormatAnnotate(t *testing.T) {
	out := formatAnnotate(&socket.AnnotateResult{
		Path:       "Notes/trip.md",
		Generation: 3,
		ElapsedUs:  41,
		Links: []ports.LinkRequest{
			{From: 0, To: 5, Text: "Paris", Target: "Glossary/Paris.md"},
			{From: 16, To: 31, Text: "French Republic", Target: "Glossary/France.md", IsAlias: true},
		},
	})
	assert.Contains(t, out, "⚡ 2 links")
	assert.Contains(t, out, "gen 3")
	assert.Contains(t, out, "Glossary/Paris.md")
	assert.Contains(t, out, "alias")
}

func TestFormatCatalog(t *testing.T) {
	out := formatCatalog(&socket.CatalogResult{
		Generation:   2,
		SurfaceCount: 3,
		Entries: []ports.Entry{
			{ID: "Glossary/France.md", Name: "France", Aliases: []string{"French Republic"}},
			{ID: "Glossary/API.md", Name: "API", CaseSensitive: true},
		},
	})
	assert.Contains(t, out, "⚡ 2 entries")
	assert.Contains(t, out, "French Republic")
	assert.Contains(t, out, "match-case")
}

func TestFormatMentions(t *testing.T) {
	out := formatMentions(&socket.MentionsResult{
		Target:   "Glossary/Paris.md",
		Count:    1,
		Mentions: []ports.Mention{{Source: "Notes/trip.md", From: 0, To: 5, Text: "Paris"}},
	})
	assert.Contains(t, out, "⚡ 1 mentions")
	assert.Contains(t, out, "Notes/trip.md")
	assert.Contains(t, out, ":0-5")
}

func TestFormatIndexStats(t *testing.T) {
	out := formatIndexStats(app.IndexStats{Documents: 4, Mentions: 9, Pruned: 1, Elapsed: 12 * time.Millisecond})
	assert.Equal(t, "⚡ vlink indexed 4 documents, 9 mentions (12ms), pruned 1\n", out)

	out = formatIndexStats(app.IndexStats{Documents: 2, Failed: 1})
	assert.Contains(t, out, "1 failed")
}

func TestVaultRel(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "Notes/trip.md", vaultRel(root, filepath.Join(root, "Notes", "trip.md")))
	assert.Equal(t, "Notes/trip.md", vaultRel(root, "./Notes/trip.md"))
	assert.Equal(t, "Notes/trip.md", vaultRel(root, "Notes/trip.md"))
}

func TestLockedStore(t *testing.T) {
	assert.Empty(t, lockedStore(nil))
	assert.Empty(t, lockedStore(errors.New("permission denied")))
	assert.Empty(t, lockedStore(errors.New("timeout")), "matched by identity, not by text")

	bolt := fmt.Errorf("open store: bbolt open: %w", bolterrors.ErrTimeout)
	assert.Contains(t, lockedStore(bolt), "vlink.db")

	busy := fmt.Errorf("open mention index: %w", sqlite3.Error{Code: sqlite3.ErrBusy})
	assert.Contains(t, lockedStore(busy), "mentions.db")
	assert.Empty(t, lockedStore(sqlite3.Error{Code: sqlite3.ErrConstraint}))
}

func TestOpenError(t *testing.T) {
	root := t.TempDir()
	plain := errors.New("boom")
	assert.Same(t, plain, openError(root, plain))

	err := openError(root, bolterrors.ErrTimeout)
	assert.Contains(t, err.Error(), "another vlink command")

	paths := app.NewPaths(root)
	require.NoError(t, paths.EnsureDirs())
	require.NoError(t, os.WriteFile(paths.PIDFile, []byte("4242\n"), 0644))
	err = openError(root, bolterrors.ErrTimeout)
	assert.Contains(t, err.Error(), "unresponsive daemon (pid 4242)")
	assert.Contains(t, err.Error(), "kill 4242")
}
