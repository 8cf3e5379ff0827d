package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/vlink/internal/adapters/bbolt"
	"github.com/corey/vlink/internal/config"
	"github.com/corey/vlink/internal/domain/trie"
	"github.com/corey/vlink/internal/ports"
)

// =============================================================================
// Catalog cache — generations, failure isolation, persistence, debounce
// Expectation: every installed snapshot bumps the generation by one, a failed
// rebuild leaves the current snapshot serving, and readers never see a
// partially built snapshot.
// =============================================================================

func TestCache_StartsEmpty(t *testing.T) {
	c := NewCache(&fakeSource{}, CacheOptions{Logger: quietLogger()})
	defer c.Close()

	snap := c.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(0), snap.Generation)
	assert.Equal(t, 0, snap.Catalog.Len())
	assert.Equal(t, 0, snap.Trie.Len())
	assert.Nil(t, snap.Scan("Paris", trie.ScanOptions{}))
}

func TestCache_RebuildIncrementsGeneration(t *testing.T) {
	c, src := newTestCache(t, glossary(), config.Default())
	assert.Equal(t, uint64(1), c.Generation())
	assert.Equal(t, 2, c.Snapshot().Catalog.Len())

	src.set(append(glossary(), ports.Entry{ID: "Glossary/Lyon.md", Name: "Lyon"}), nil)
	require.NoError(t, c.Rebuild(context.Background()))
	assert.Equal(t, uint64(2), c.Generation())
	assert.Equal(t, 3, c.Snapshot().Catalog.Len())
	assert.False(t, c.Snapshot().BuiltAt.IsZero())
}

func TestCache_FailedRebuildKeepsSnapshot(t *testing.T) {
	c, src := newTestCache(t, glossary(), config.Default())
	before := c.Snapshot()

	src.set(nil, ports.ErrCatalogUnavailable)
	err := c.Rebuild(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrCatalogUnavailable))

	assert.Same(t, before, c.Snapshot())
	assert.Equal(t, uint64(1), c.Generation())
}

func TestCache_OnInstallSeesEachGeneration(t *testing.T) {
	src := &fakeSource{}
	src.set(glossary(), nil)

	var seen [][2]uint64
	c := NewCache(src, CacheOptions{
		Logger: quietLogger(),
		OnInstall: func(prev, next *Snapshot) {
			seen = append(seen, [2]uint64{prev.Generation, next.Generation})
		},
	})
	defer c.Close()

	require.NoError(t, c.Rebuild(context.Background()))
	require.NoError(t, c.Rebuild(context.Background()))
	src.set(nil, ports.ErrCatalogUnavailable)
	require.Error(t, c.Rebuild(context.Background()))

	assert.Equal(t, [][2]uint64{{0, 1}, {1, 2}}, seen, "failed rebuilds install nothing")
}

func TestCache_SnapshotIsImmutable(t *testing.T) {
	c, src := newTestCache(t, glossary(), config.Default())
	held := c.Snapshot()

	src.set([]ports.Entry{{ID: "Glossary/Lyon.md", Name: "Lyon"}}, nil)
	require.NoError(t, c.Rebuild(context.Background()))

	assert.True(t, held.Catalog.Has("Glossary/Paris.md"))
	assert.False(t, held.Catalog.Has("Glossary/Lyon.md"))
	assert.Len(t, held.Scan("Paris", trie.ScanOptions{WholeWords: true}), 1)

	cur := c.Snapshot()
	assert.False(t, cur.Catalog.Has("Glossary/Paris.md"))
	assert.Empty(t, cur.Scan("Paris", trie.ScanOptions{WholeWords: true}))
}

func TestCache_PersistAndRestore(t *testing.T) {
	store, err := bbolt.NewStore(filepath.Join(t.TempDir(), "vlink.db"))
	require.NoError(t, err)
	defer store.Close()

	src := &fakeSource{entries: glossary()}
	c := NewCache(src, CacheOptions{Store: store, VaultID: "v1", Logger: quietLogger()})
	defer c.Close()
	require.NoError(t, c.Rebuild(context.Background()))

	// A fresh process whose vault cannot be scanned.
	down := &fakeSource{err: ports.ErrCatalogUnavailable}
	restored := NewCache(down, CacheOptions{Store: store, VaultID: "v1", Logger: quietLogger()})
	defer restored.Close()
	require.Error(t, restored.Rebuild(context.Background()))

	ok, err := restored.LoadPersisted()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), restored.Generation())
	assert.True(t, restored.Snapshot().Catalog.Has("Glossary/France.md"))

	other := NewCache(down, CacheOptions{Store: store, VaultID: "v2", Logger: quietLogger()})
	defer other.Close()
	ok, err = other.LoadPersisted()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), other.Generation())
}

func TestCache_LoadPersistedWithoutStore(t *testing.T) {
	c := NewCache(&fakeSource{}, CacheOptions{Logger: quietLogger()})
	defer c.Close()
	ok, err := c.LoadPersisted()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_InvalidateIsDebounced(t *testing.T) {
	src := &fakeSource{entries: glossary()}
	c := NewCache(src, CacheOptions{Debounce: 20 * time.Millisecond, Logger: quietLogger()})
	defer c.Close()

	for i := 0; i < 10; i++ {
		c.Invalidate()
	}
	assert.Eventually(t, func() bool { return c.Generation() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, uint64(1), c.Generation())
	assert.Equal(t, int64(1), src.calls.Load())
}

func TestCache_FlushRunsPendingRebuild(t *testing.T) {
	src := &fakeSource{entries: glossary()}
	c := NewCache(src, CacheOptions{Debounce: time.Hour, Logger: quietLogger()})
	defer c.Close()

	c.Flush()
	assert.Equal(t, uint64(0), c.Generation(), "nothing pending")

	c.Invalidate()
	c.Flush()
	assert.Equal(t, uint64(1), c.Generation())
}

func TestCache_CloseCancelsPending(t *testing.T) {
	src := &fakeSource{entries: glossary()}
	c := NewCache(src, CacheOptions{Debounce: 10 * time.Millisecond, Logger: quietLogger()})

	c.Invalidate()
	c.Close()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, uint64(0), c.Generation())
}

func TestCache_ConcurrentReadersDuringRebuild(t *testing.T) {
	c, _ := newTestCache(t, glossary(), config.Default())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := c.Snapshot()
				cands := snap.Scan("Paris is in France", trie.ScanOptions{WholeWords: true})
				assert.Len(t, cands, 2)
			}
		}()
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, c.Rebuild(context.Background()))
	}
	close(stop)
	wg.Wait()
	assert.Equal(t, uint64(21), c.Generation())
}

// =============================================================================
// Sessions — scan-local state bound to one snapshot
// =============================================================================

func TestSession_PushCharReportsMatches(t *testing.T) {
	c, _ := newTestCache(t, glossary(), config.Default())
	s := c.Snapshot().NewSession()

	for _, r := range "Paris" {
		s.PushChar(r)
	}
	matches := s.CurrentMatches("")
	require.Len(t, matches, 1)
	assert.Equal(t, "Glossary/Paris.md", matches[0].EntryID)
	assert.Empty(t, s.CurrentMatches("Glossary/Paris.md"))

	s.Reset()
	assert.Empty(t, s.CurrentMatches(""))
}

func TestSession_StaleAfterRebuild(t *testing.T) {
	c, _ := newTestCache(t, glossary(), config.Default())
	s := c.Snapshot().NewSession()
	assert.Equal(t, uint64(1), s.Generation())
	assert.False(t, s.Stale(c))

	require.NoError(t, c.Rebuild(context.Background()))
	assert.True(t, s.Stale(c))
	assert.Equal(t, uint64(1), s.Snapshot().Generation)
}

func TestSnapshot_ScanSkipsPrefilteredText(t *testing.T) {
	c, _ := newTestCache(t, glossary(), config.Default())
	snap := c.Snapshot()

	assert.Nil(t, snap.Scan("nothing to see here", trie.ScanOptions{}))
	cands := snap.Scan("PARIS", trie.ScanOptions{WholeWords: true})
	require.Len(t, cands, 1)
	assert.Equal(t, 0, cands[0].Start)
	assert.Equal(t, 5, cands[0].End)
}
