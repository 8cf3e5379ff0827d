// Package sqlite persists the vault-wide mention index in a SQLite database.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/corey/vlink/internal/ports"
)

//go:embed schema.sql
var schemaSQL string

// Store implements ports.MentionStore.
type Store struct {
	db *sql.DB
}

// Compile-time check.
var _ ports.MentionStore = (*Store)(nil)

// NewStore opens (or creates) the mention database at path and runs the schema.
// ":memory:" gives a private in-memory database.
func NewStore(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_busy_timeout=1000&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One connection: writes are serialized and ":memory:" stays one database.
	db.SetMaxOpenConns(1)
	if err := initDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// initDB runs the embedded schema statements.
func initDB(db *sql.DB) error {
	for _, s := range strings.Split(schemaSQL, ";") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceMentions deletes every row of source and inserts mentions in one
// transaction. Rows whose Source differs from source are rejected.
func (s *Store) ReplaceMentions(source string, mentions []ports.Mention) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("source must be non-empty")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM mentions WHERE source = ?`, source); err != nil {
		return fmt.Errorf("delete mentions of %s: %w", source, err)
	}

	if len(mentions) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO mentions (source, target, from_off, to_off, text, is_alias, is_sub_word)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, m := range mentions {
			if m.Source != source {
				return fmt.Errorf("mention source %q does not match %q", m.Source, source)
			}
			if _, err := stmt.Exec(source, m.Target, m.From, m.To, m.Text, m.IsAlias, m.IsSubWord); err != nil {
				return fmt.Errorf("insert mention: %w", err)
			}
		}
	}

	return tx.Commit()
}

// MentionsOf returns every mention of target ordered by source, then offset.
func (s *Store) MentionsOf(target string) ([]ports.Mention, error) {
	rows, err := s.db.Query(`SELECT source, target, from_off, to_off, text, is_alias, is_sub_word
		FROM mentions WHERE target = ? ORDER BY source, from_off, to_off`, target)
	if err != nil {
		return nil, fmt.Errorf("query mentions: %w", err)
	}
	defer rows.Close()

	out := []ports.Mention{}
	for rows.Next() {
		var m ports.Mention
		if err := rows.Scan(&m.Source, &m.Target, &m.From, &m.To, &m.Text, &m.IsAlias, &m.IsSubWord); err != nil {
			return nil, fmt.Errorf("scan mention: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Counts returns the number of mentions per target, for the catalog view.
func (s *Store) Counts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT target, COUNT(*) FROM mentions GROUP BY target`)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var target string
		var n int
		if err := rows.Scan(&target, &n); err != nil {
			return nil, err
		}
		counts[target] = n
	}
	return counts, rows.Err()
}

// Prune drops the rows of sources not in keep (deleted or renamed documents).
func (s *Store) Prune(keep map[string]bool) (int, error) {
	rows, err := s.db.Query(`SELECT DISTINCT source FROM mentions`)
	if err != nil {
		return 0, fmt.Errorf("query sources: %w", err)
	}
	var stale []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			rows.Close()
			return 0, err
		}
		if !keep[src] {
			stale = append(stale, src)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, src := range stale {
		if _, err := s.db.Exec(`DELETE FROM mentions WHERE source = ?`, src); err != nil {
			return 0, fmt.Errorf("prune %s: %w", src, err)
		}
	}
	return len(stale), nil
}
