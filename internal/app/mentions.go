package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corey/vlink/internal/ports"
)

// DocumentSource lists and reads the markdown documents of a vault.
type DocumentSource interface {
	Documents(ctx context.Context) ([]string, error)
	ReadDocument(rel string) (string, error)
}

// pruner is implemented by mention stores that can drop vanished sources.
type pruner interface {
	Prune(keep map[string]bool) (int, error)
}

// IndexStats summarises one full mention indexing pass.
type IndexStats struct {
	Documents int
	Mentions  int
	Failed    int
	Pruned    int
	Elapsed   time.Duration
}

// MentionIndexer records, for every document of the vault, the virtual links
// the live linker would draw in it (without a cursor). The result answers
// "where is this entry mentioned but not linked".
type MentionIndexer struct {
	docs    DocumentSource
	linker  *LiveLinker
	store   ports.MentionStore
	workers int
	log     *slog.Logger
}

// NewMentionIndexer creates an indexer. workers <= 0 means GOMAXPROCS.
func NewMentionIndexer(docs DocumentSource, linker *LiveLinker, store ports.MentionStore, workers int, log *slog.Logger) *MentionIndexer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.Default()
	}
	return &MentionIndexer{docs: docs, linker: linker, store: store, workers: workers, log: log}
}

// IndexAll re-indexes every document and prunes rows of documents that no
// longer exist. Per-document failures are counted, logged and skipped.
func (m *MentionIndexer) IndexAll(ctx context.Context) (IndexStats, error) {
	start := time.Now()
	docs, err := m.docs.Documents(ctx)
	if err != nil {
		return IndexStats{}, fmt.Errorf("list documents: %w", err)
	}

	var mentions, failed atomic.Int64
	var firstErr error
	var errOnce sync.Once

	pool := NewWorkerPool(m.workers, 0, func(err error) {
		failed.Add(1)
		errOnce.Do(func() { firstErr = err })
		m.log.Warn("index document", "err", err)
	})
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pool.Start(poolCtx)

	for _, rel := range docs {
		rel := rel
		if err := pool.Submit(poolCtx, func(ctx context.Context) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			n, err := m.IndexDocument(rel)
			mentions.Add(int64(n))
			return err
		}); err != nil {
			break
		}
	}
	pool.Close()

	if ctx.Err() != nil {
		return IndexStats{}, ctx.Err()
	}

	stats := IndexStats{
		Documents: len(docs),
		Mentions:  int(mentions.Load()),
		Failed:    int(failed.Load()),
	}

	if p, ok := m.store.(pruner); ok {
		keep := make(map[string]bool, len(docs))
		for _, d := range docs {
			keep[d] = true
		}
		pruned, err := p.Prune(keep)
		if err != nil {
			return stats, fmt.Errorf("prune mentions: %w", err)
		}
		stats.Pruned = pruned
	}

	stats.Elapsed = time.Since(start)
	m.log.Info("mention index built",
		"documents", stats.Documents,
		"mentions", stats.Mentions,
		"failed", stats.Failed,
		"pruned", stats.Pruned,
		"duration", stats.Elapsed.Round(time.Millisecond))

	if stats.Failed == len(docs) && firstErr != nil {
		return stats, fmt.Errorf("every document failed: %w", firstErr)
	}
	return stats, nil
}

// IndexDocument re-indexes one document. A document that no longer exists has
// its rows removed.
func (m *MentionIndexer) IndexDocument(rel string) (int, error) {
	text, err := m.docs.ReadDocument(rel)
	if errors.Is(err, ports.ErrNotFound) {
		return 0, m.store.ReplaceMentions(rel, nil)
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rel, err)
	}

	res := m.linker.Annotate(LiveRequest{DocPath: rel, Text: text})
	rows := make([]ports.Mention, 0, len(res.Links))
	for _, l := range res.Links {
		rows = append(rows, ports.Mention{
			Source:    rel,
			Target:    l.Target,
			From:      l.From,
			To:        l.To,
			Text:      l.Text,
			IsAlias:   l.IsAlias,
			IsSubWord: l.IsSubWord,
		})
	}
	if err := m.store.ReplaceMentions(rel, rows); err != nil {
		return 0, fmt.Errorf("store mentions of %s: %w", rel, err)
	}
	return len(rows), nil
}
