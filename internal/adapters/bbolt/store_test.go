package bbolt

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/corey/vlink/internal/ports"
)

// =============================================================================
// bbolt Snapshot Store — last good catalog per vault
// Expectation: snapshots survive restarts, are vault-scoped, and a locked file
// fails fast instead of hanging.
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func makeTestSnapshot() *ports.CatalogSnapshot {
	return &ports.CatalogSnapshot{
		Generation: 7,
		BuiltAt:    1700000000,
		Entries: []ports.Entry{
			{ID: "Glossary/Paris.md", Name: "Paris"},
			{ID: "Glossary/France.md", Name: "France", Aliases: []string{"French Republic"}},
			{ID: "Glossary/API.md", Name: "API", CaseSensitive: true},
		},
	}
}

func TestStore_SaveLoadCatalog_Roundtrip(t *testing.T) {
	store, _ := newTestStore(t)

	snap := makeTestSnapshot()
	require.NoError(t, store.SaveCatalog("vault-1", snap))

	got, err := store.LoadCatalog("vault-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap, got)
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.LoadCatalog("fresh")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SaveNil(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveCatalog("v", nil))
}

func TestStore_Overwrite(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveCatalog("v", makeTestSnapshot()))

	next := &ports.CatalogSnapshot{Generation: 8, Entries: []ports.Entry{{ID: "a.md", Name: "a"}}}
	require.NoError(t, store.SaveCatalog("v", next))

	got, err := store.LoadCatalog("v")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), got.Generation)
	assert.Len(t, got.Entries, 1)
}

func TestStore_VaultScoped(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveCatalog("a", makeTestSnapshot()))
	require.NoError(t, store.SaveCatalog("b", &ports.CatalogSnapshot{Generation: 1}))

	a, err := store.LoadCatalog("a")
	require.NoError(t, err)
	b, err := store.LoadCatalog("b")
	require.NoError(t, err)
	assert.Len(t, a.Entries, 3)
	assert.Empty(t, b.Entries)
}

func TestStore_DeleteVault(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveCatalog("v", makeTestSnapshot()))
	require.NoError(t, store.DeleteVault("v"))

	got, err := store.LoadCatalog("v")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, store.DeleteVault("v"), "idempotent")
	assert.NoError(t, store.DeleteVault("never-existed"))
}

func TestStore_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restart.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveCatalog("v", makeTestSnapshot()))
	require.NoError(t, store.Close())

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.LoadCatalog("v")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(7), got.Generation)
}

func TestStore_ReadsJSONBlob(t *testing.T) {
	store, _ := newTestStore(t)
	raw := []byte(`{"generation":3,"built_at":5,"entries":[{"id":"x.md","name":"x"}]}`)
	require.NoError(t, store.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte("legacy"))
		if err != nil {
			return err
		}
		return b.Put(keyCatalog, raw)
	}))

	got, err := store.LoadCatalog("legacy")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.Generation)
	assert.Equal(t, "x.md", got.Entries[0].ID)
}

func TestStore_CorruptBlob(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte("bad"))
		if err != nil {
			return err
		}
		return b.Put(keyCatalog, []byte{0x7f, 0x00})
	}))

	_, err := store.LoadCatalog("bad")
	assert.Error(t, err)
}

func TestStore_ConcurrentReads(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveCatalog("v", makeTestSnapshot()))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.LoadCatalog("v")
			assert.NoError(t, err)
			assert.NotNil(t, got)
		}()
	}
	wg.Wait()
}

// =============================================================================
// Lock contention — the 1s timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2)
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout")
	assert.Less(t, elapsed, 3*time.Second)
}
