package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corey/vlink/internal/adapters/ahocorasick"
	"github.com/corey/vlink/internal/domain/catalog"
	"github.com/corey/vlink/internal/domain/trie"
	"github.com/corey/vlink/internal/ports"
)

// DefaultDebounce is the quiet period between the last invalidation and the
// rebuild it triggers.
const DefaultDebounce = 300 * time.Millisecond

// rebuildTimeout bounds a debounced background rebuild.
const rebuildTimeout = 30 * time.Second

// Snapshot is one immutable catalog generation: the catalog, the trie built
// from it and the prefilter over the same surfaces. Scans hold a Snapshot for
// their whole duration, so a rebuild never changes what an in-flight scan sees.
type Snapshot struct {
	Generation uint64
	BuiltAt    time.Time
	Catalog    *catalog.Catalog
	Trie       *trie.Trie
	Prefilter  ports.Prefilter
}

// newSnapshot builds every derived structure for entries.
func newSnapshot(gen uint64, builtAt time.Time, entries []ports.Entry, scope catalog.Scope) *Snapshot {
	cat := catalog.Build(entries, scope)
	forms := cat.SurfaceForms()

	surfaces := make([]string, 0, len(forms))
	for _, f := range forms {
		surfaces = append(surfaces, f.Text)
	}

	return &Snapshot{
		Generation: gen,
		BuiltAt:    builtAt,
		Catalog:    cat,
		Trie:       cat.Trie(),
		Prefilter:  ahocorasick.NewPrefilter(surfaces),
	}
}

// CacheOptions configures a Cache.
type CacheOptions struct {
	Scope    catalog.Scope
	Store    ports.SnapshotStore // optional: persists each good build
	VaultID  string              // namespace in Store
	Debounce time.Duration       // 0 = DefaultDebounce
	Logger   *slog.Logger        // nil = slog.Default()

	// OnInstall runs after each new generation is swapped in, with the
	// generation it replaced. It runs under the rebuild lock: it must not
	// block or call back into Rebuild.
	OnInstall func(prev, next *Snapshot)
}

// Cache is the single source of truth for the current catalog snapshot of one
// configuration. Rebuilds are serialized and swap the snapshot atomically;
// the generation counter increases by one per installed snapshot.
type Cache struct {
	source  ports.CatalogSource
	opts    CacheOptions
	log     *slog.Logger
	current atomic.Pointer[Snapshot]

	rebuildMu sync.Mutex
	debouncer *Debouncer
}

// NewCache creates a cache holding the empty generation 0. Call Rebuild (or
// LoadPersisted) to install a catalog.
func NewCache(source ports.CatalogSource, opts CacheOptions) *Cache {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Cache{source: source, opts: opts, log: log}
	c.current.Store(newSnapshot(0, time.Time{}, nil, opts.Scope))
	c.debouncer = NewDebouncer(opts.Debounce, c.rebuildInBackground)
	return c
}

// Snapshot returns the current snapshot. Never nil.
func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Generation returns the current generation id.
func (c *Cache) Generation() uint64 {
	return c.current.Load().Generation
}

// Scope returns the catalog scope the cache builds with.
func (c *Cache) Scope() catalog.Scope {
	return c.opts.Scope
}

// Rebuild reads the catalog source and installs a new snapshot. On failure
// the previous snapshot stays current and the error is returned.
func (c *Cache) Rebuild(ctx context.Context) error {
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	start := time.Now()
	entries, err := c.source.Entries(ctx)
	if err != nil {
		c.log.Warn("catalog rebuild failed, keeping previous generation",
			"generation", c.Generation(), "err", err)
		return fmt.Errorf("rebuild catalog: %w", err)
	}

	snap := c.install(entries, time.Now())
	c.log.Info("catalog rebuilt",
		"generation", snap.Generation,
		"entries", snap.Catalog.Len(),
		"surfaces", snap.Trie.Len(),
		"duration", time.Since(start).Round(time.Microsecond))

	if c.opts.Store != nil {
		persisted := &ports.CatalogSnapshot{
			Generation: snap.Generation,
			BuiltAt:    snap.BuiltAt.Unix(),
			Entries:    entries,
		}
		if err := c.opts.Store.SaveCatalog(c.opts.VaultID, persisted); err != nil {
			c.log.Warn("persist catalog snapshot", "err", err)
		}
	}
	return nil
}

// LoadPersisted installs the last snapshot saved in the store, if any.
// It reports whether a snapshot was installed.
func (c *Cache) LoadPersisted() (bool, error) {
	if c.opts.Store == nil {
		return false, nil
	}
	persisted, err := c.opts.Store.LoadCatalog(c.opts.VaultID)
	if err != nil {
		return false, fmt.Errorf("load catalog snapshot: %w", err)
	}
	if persisted == nil {
		return false, nil
	}

	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()
	snap := c.install(persisted.Entries, time.Unix(persisted.BuiltAt, 0))
	c.log.Info("catalog restored from snapshot",
		"generation", snap.Generation,
		"entries", snap.Catalog.Len(),
		"built_at", snap.BuiltAt)
	return true, nil
}

// install builds and swaps in the next generation. Caller holds rebuildMu.
func (c *Cache) install(entries []ports.Entry, builtAt time.Time) *Snapshot {
	prev := c.current.Load()
	snap := newSnapshot(prev.Generation+1, builtAt, entries, c.opts.Scope)
	c.current.Store(snap)
	if c.opts.OnInstall != nil {
		c.opts.OnInstall(prev, snap)
	}
	return snap
}

// Invalidate schedules a debounced rebuild. Bursts of invalidations cause at
// most one rebuild per quiet period.
func (c *Cache) Invalidate() {
	c.debouncer.Call()
}

// Flush runs a pending debounced rebuild now.
func (c *Cache) Flush() {
	c.debouncer.Flush()
}

// Close cancels any pending rebuild.
func (c *Cache) Close() {
	c.debouncer.Cancel()
}

func (c *Cache) rebuildInBackground() {
	ctx, cancel := context.WithTimeout(context.Background(), rebuildTimeout)
	defer cancel()
	// Failure is logged by Rebuild; the previous generation keeps serving.
	_ = c.Rebuild(ctx)
}
