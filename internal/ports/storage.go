// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// SnapshotStore persists the last successfully built catalog so a restart can
// serve stale-but-valid links when the vault cannot be scanned.
// The backing store (bbolt) is vault-scoped: each vaultID gets its own
// namespace. Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: SaveCatalog must be transactional. A crash mid-write must not
// corrupt the previously committed snapshot.
type SnapshotStore interface {
	// SaveCatalog persists the snapshot for a vault, overwriting any prior one.
	SaveCatalog(vaultID string, snap *CatalogSnapshot) error

	// LoadCatalog retrieves the snapshot for a vault.
	// Returns nil, nil if no snapshot exists (fresh vault).
	LoadCatalog(vaultID string) (*CatalogSnapshot, error)

	// DeleteVault removes all data for a vault.
	// Idempotent: deleting a nonexistent vault is not an error.
	DeleteVault(vaultID string) error
}

// CatalogSnapshot is the persisted form of a built catalog.
type CatalogSnapshot struct {
	Generation uint64  `json:"generation"`
	BuiltAt    int64   `json:"built_at"` // unix seconds
	Entries    []Entry `json:"entries"`
}

// MentionStore records where entries are mentioned (virtually linked) across
// the vault. Rows are replaced per source document.
type MentionStore interface {
	// ReplaceMentions atomically replaces every mention recorded for source.
	ReplaceMentions(source string, mentions []Mention) error

	// MentionsOf returns every mention of target ordered by source, then offset.
	MentionsOf(target string) ([]Mention, error)

	// Close releases the underlying database.
	Close() error
}

// Mention is one resolved annotation persisted by the mention index.
type Mention struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Text      string `json:"text"`
	IsAlias   bool   `json:"is_alias,omitempty"`
	IsSubWord bool   `json:"is_sub_word,omitempty"`
}
