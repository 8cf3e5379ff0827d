package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corey/vlink/internal/config"
	"github.com/corey/vlink/internal/ports"
)

// fakeSource is an in-memory catalog source whose content and failure mode
// can change between rebuilds.
type fakeSource struct {
	mu      sync.Mutex
	entries []ports.Entry
	err     error
	calls   atomic.Int64
}

func (f *fakeSource) Entries(ctx context.Context) ([]ports.Entry, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]ports.Entry(nil), f.entries...), nil
}

func (f *fakeSource) set(entries []ports.Entry, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries, f.err = entries, err
}

// glossary is the catalog most tests run against.
func glossary() []ports.Entry {
	return []ports.Entry{
		{ID: "Glossary/Paris.md", Name: "Paris"},
		{ID: "Glossary/France.md", Name: "France", Aliases: []string{"French Republic"}},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestCache returns a cache over entries with the first generation built.
func newTestCache(t *testing.T, entries []ports.Entry, s config.Settings) (*Cache, *fakeSource) {
	t.Helper()
	src := &fakeSource{entries: entries}
	c := NewCache(src, CacheOptions{Scope: s.Scope(), Logger: quietLogger()})
	t.Cleanup(c.Close)
	require.NoError(t, c.Rebuild(context.Background()))
	return c, src
}

// writeVault lays out files (vault-relative path -> content) below a fresh
// temporary directory and returns its root.
func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

// targets lists the link targets in order.
func targets(links []ports.LinkRequest) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Target)
	}
	return out
}
