// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the vlink daemon: create, start, stop.
package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corey/vlink/internal/adapters/bbolt"
	fsw "github.com/corey/vlink/internal/adapters/fsnotify"
	"github.com/corey/vlink/internal/adapters/htmldoc"
	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/corey/vlink/internal/adapters/sqlite"
	"github.com/corey/vlink/internal/adapters/vault"
	"github.com/corey/vlink/internal/adapters/web"
	"github.com/corey/vlink/internal/config"
	"github.com/corey/vlink/internal/ports"
)

// startupTimeout bounds the initial catalog build.
const startupTimeout = 30 * time.Second

// App is the vlink daemon (or a one-shot local instance of it).
type App struct {
	VaultRoot string
	VaultID   string
	Paths     *Paths
	Settings  config.Settings

	Source       *vault.Source
	Cache        *Cache
	Live         *LiveLinker
	Indexer      *MentionIndexer
	Store        *bbolt.Store
	MentionStore *sqlite.Store
	Watcher      ports.Watcher
	Server       *socket.Server
	WebServer    *web.Server

	log      *slog.Logger
	httpPort int
	started  time.Time
	running  atomic.Bool

	// Background full mention passes. A request that arrives while a pass
	// runs folds into one follow-up pass.
	indexMu     sync.Mutex
	indexing    bool
	indexAgain  bool
	indexCtx    context.Context
	indexCancel context.CancelFunc
	indexWG     sync.WaitGroup
}

// Config holds initialization parameters for the App.
type Config struct {
	VaultRoot string
	VaultID   string           // default: hash of the absolute vault root
	Settings  *config.Settings // nil = load .vlink/config.yaml
	HTTPPort  int              // preferred HTTP port (default: computed from vault root)
	Debounce  time.Duration    // catalog rebuild quiet period (default 300ms)
	Workers   int              // mention indexing workers (default GOMAXPROCS)
	Logger    *slog.Logger     // nil = slog.Default()
}

// New creates an App with all dependencies wired and the catalog loaded.
// Does not start the servers or the watcher.
func New(cfg Config) (*App, error) {
	if cfg.VaultRoot == "" {
		return nil, fmt.Errorf("vault root required")
	}
	root, err := filepath.Abs(cfg.VaultRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	if cfg.VaultID == "" {
		cfg.VaultID = VaultID(root)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	paths := NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create %s: %w", paths.Root, err)
	}

	var settings config.Settings
	if cfg.Settings != nil {
		settings = *cfg.Settings
	} else {
		settings, err = config.Load(paths.Config)
		if err != nil {
			return nil, err
		}
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	mentions, err := sqlite.NewStore(paths.MentionsDB)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open mention index: %w", err)
	}

	watcher, err := fsw.NewWatcher()
	if err != nil {
		store.Close()
		mentions.Close()
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	a := &App{
		VaultRoot:    root,
		VaultID:      cfg.VaultID,
		Paths:        paths,
		Settings:     settings,
		Source:       vault.NewSource(root),
		Store:        store,
		MentionStore: mentions,
		Watcher:      watcher,
		log:          log,
		httpPort:     cfg.HTTPPort,
		started:      time.Now(),
	}
	a.indexCtx, a.indexCancel = context.WithCancel(context.Background())

	a.Cache = NewCache(a.Source, CacheOptions{
		Scope:     settings.Scope(),
		Store:     store,
		VaultID:   cfg.VaultID,
		Debounce:  cfg.Debounce,
		Logger:    log,
		OnInstall: a.onCatalogInstalled,
	})
	a.Live = NewLiveLinker(a.Cache, settings)
	a.Indexer = NewMentionIndexer(a.Source, a.Live, mentions, cfg.Workers, log)

	a.Server = socket.NewServer(a, socket.SocketPath(root))
	a.WebServer = web.NewServer(a, paths.PortFile)

	a.loadCatalog()
	return a, nil
}

// VaultID derives the snapshot namespace of a vault from its absolute root.
func VaultID(root string) string {
	h := sha256.Sum256([]byte(root))
	return fmt.Sprintf("%x", h[:8])
}

// loadCatalog builds the first generation. When the vault cannot be scanned
// the last persisted snapshot serves instead; with neither, the catalog stays
// empty and links simply do not appear.
func (a *App) loadCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	err := a.Cache.Rebuild(ctx)
	if err == nil {
		return
	}
	restored, perr := a.Cache.LoadPersisted()
	if perr != nil {
		a.log.Warn("no usable catalog snapshot", "err", perr)
		return
	}
	if !restored {
		a.log.Warn("starting with an empty catalog", "err", err)
	}
}

// Start begins the daemon (socket server + HTTP server + vault watcher) and
// a first full mention pass in the background.
func (a *App) Start() error {
	a.started = time.Now()
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	httpPort := a.httpPort
	if httpPort == 0 {
		httpPort = web.DefaultPort(a.VaultRoot)
	}
	if err := a.WebServer.Start(httpPort); err != nil {
		a.log.Warn("HTTP API unavailable", "err", err)
	}
	if err := a.Watcher.Watch(a.VaultRoot, a.onFileChanged); err != nil {
		a.log.Warn("vault watcher unavailable", "err", err)
	}
	a.running.Store(true)
	a.scheduleIndex()
	a.log.Info("daemon started", "vault", a.VaultRoot, "socket", a.Server.Addr(), "generation", a.Cache.Generation())
	return nil
}

// Stop shuts down all services and releases the stores.
func (a *App) Stop() error {
	a.Watcher.Stop()
	a.WebServer.Stop()
	a.Server.Stop()
	a.log.Info("daemon stopped", "vault", a.VaultRoot)
	return a.Close()
}

// Close releases the stores without touching the servers. Used by one-shot
// local commands. A running mention pass is cancelled and waited for first.
func (a *App) Close() error {
	a.running.Store(false)
	a.Cache.Close()
	a.stopIndexing()
	a.Watcher.Stop()
	err := a.MentionStore.Close()
	if serr := a.Store.Close(); err == nil {
		err = serr
	}
	return err
}

// onCatalogInstalled re-indexes every document when a new generation changes
// the set of entries: notes that never changed may now mention a new entry,
// or stop mentioning a removed one.
func (a *App) onCatalogInstalled(prev, next *Snapshot) {
	if !a.running.Load() {
		return
	}
	if reflect.DeepEqual(prev.Catalog.Entries(), next.Catalog.Entries()) {
		return
	}
	a.scheduleIndex()
}

// scheduleIndex starts a full mention pass in the background unless one is
// already running, in which case one more pass follows it.
func (a *App) scheduleIndex() {
	a.indexMu.Lock()
	defer a.indexMu.Unlock()
	if a.indexCtx.Err() != nil {
		return
	}
	if a.indexing {
		a.indexAgain = true
		return
	}
	a.indexing = true
	a.indexWG.Add(1)
	go a.runIndex()
}

func (a *App) runIndex() {
	defer a.indexWG.Done()
	for {
		if _, err := a.Indexer.IndexAll(a.indexCtx); err != nil && a.indexCtx.Err() == nil {
			a.log.Warn("mention index", "err", err)
		}

		a.indexMu.Lock()
		if !a.indexAgain || a.indexCtx.Err() != nil {
			a.indexing = false
			a.indexMu.Unlock()
			return
		}
		a.indexAgain = false
		a.indexMu.Unlock()
	}
}

// stopIndexing cancels the background pass and waits for it to return.
func (a *App) stopIndexing() {
	a.indexMu.Lock()
	a.indexCancel()
	a.indexMu.Unlock()
	a.indexWG.Wait()
}

// onFileChanged handles a note create/modify/delete/rename from the watcher:
// the catalog is invalidated (debounced) and the note's mentions re-indexed.
func (a *App) onFileChanged(absPath string) {
	rel, ok := a.Source.Rel(absPath)
	if !ok {
		return
	}
	a.log.Debug("vault changed", "path", rel)
	a.Cache.Invalidate()

	if filepath.Ext(rel) != vault.NoteExt {
		return
	}
	if _, err := a.Indexer.IndexDocument(rel); err != nil {
		a.log.Warn("re-index mentions", "path", rel, "err", err)
	}
}

// Annotate implements socket.AppQueries.
func (a *App) Annotate(p socket.AnnotateParams) (*socket.AnnotateResult, error) {
	start := time.Now()
	var text string
	if p.Text != nil {
		text = *p.Text
	} else {
		doc, err := a.Source.ReadDocument(p.Path)
		if err != nil {
			return nil, err
		}
		text = doc
	}

	res := a.Live.Annotate(LiveRequest{
		DocPath: p.Path,
		Text:    text,
		Visible: p.Visible,
		Cursor:  p.Cursor,
		Active:  p.Active,
	})
	return &socket.AnnotateResult{
		Path:       p.Path,
		Generation: res.Generation,
		Links:      res.Links,
		ElapsedUs:  time.Since(start).Microseconds(),
	}, nil
}

// Render implements socket.AppQueries.
func (a *App) Render(p socket.RenderParams) (*socket.RenderResult, error) {
	fragment := p.HTML
	var title string
	if p.Readable {
		article, err := htmldoc.Readable(p.HTML, p.URL)
		if err != nil {
			return nil, err
		}
		fragment, title = article.Content, article.Title
	}

	static := NewStaticLinker(a.Cache.Snapshot(), a.Settings)
	out, stats, err := static.RenderHTML(p.Path, fragment)
	if err != nil {
		return nil, err
	}
	return &socket.RenderResult{
		HTML:       out,
		Title:      title,
		Links:      stats.Links,
		Generation: static.Generation(),
	}, nil
}

// CatalogInfo implements socket.AppQueries.
func (a *App) CatalogInfo() *socket.CatalogResult {
	snap := a.Cache.Snapshot()
	var builtAt int64
	if !snap.BuiltAt.IsZero() {
		builtAt = snap.BuiltAt.Unix()
	}
	return &socket.CatalogResult{
		Generation:   snap.Generation,
		BuiltAt:      builtAt,
		SurfaceCount: snap.Trie.Len(),
		Entries:      append([]ports.Entry{}, snap.Catalog.Entries()...),
	}
}

// Rebuild implements socket.AppQueries.
func (a *App) Rebuild() (*socket.RebuildResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	start := time.Now()
	if err := a.Cache.Rebuild(ctx); err != nil {
		return nil, err
	}
	snap := a.Cache.Snapshot()
	return &socket.RebuildResult{
		Generation: snap.Generation,
		EntryCount: snap.Catalog.Len(),
		ElapsedMs:  time.Since(start).Milliseconds(),
	}, nil
}

// Mentions implements socket.AppQueries. target may be an entry ID or any
// link text that resolves to one ("Paris", "[[Paris]]").
func (a *App) Mentions(target string) (*socket.MentionsResult, error) {
	if id, ok := a.Cache.Snapshot().Catalog.ResolveLink(target, ""); ok {
		target = id
	}
	rows, err := a.MentionStore.MentionsOf(target)
	if err != nil {
		return nil, err
	}
	return &socket.MentionsResult{Target: target, Mentions: rows, Count: len(rows)}, nil
}

// Health implements socket.AppQueries.
func (a *App) Health() *socket.HealthResult {
	snap := a.Cache.Snapshot()
	return &socket.HealthResult{
		Status:     "ok",
		Vault:      a.VaultRoot,
		Generation: snap.Generation,
		EntryCount: snap.Catalog.Len(),
		Uptime:     time.Since(a.started).Round(time.Second).String(),
	}
}

// IndexMentions rebuilds the whole mention index.
func (a *App) IndexMentions(ctx context.Context) (IndexStats, error) {
	return a.Indexer.IndexAll(ctx)
}

// IsNotFound reports whether err means a missing document or entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ports.ErrNotFound)
}
