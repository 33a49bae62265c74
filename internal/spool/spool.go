// Package spool persists timeline entries evicted from the in-memory
// window. Records are opaque bytes in eviction order; the feed layer owns
// encoding so the spool stays free of entry types.
package spool

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is an append-mostly overflow store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a spool at path. An empty path opens an
// in-memory spool, used by the demo and by tests.
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open spool: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure spool: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure spool: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS weft_spool (
			seq    INTEGER PRIMARY KEY AUTOINCREMENT,
			record TEXT NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create spool table: %w", err)
	}
	return &Store{db: db}, nil
}

// Append stores one evicted record. Callers append oldest first, so seq
// order is timeline order.
func (s *Store) Append(record []byte) error {
	_, err := s.db.Exec("INSERT INTO weft_spool (record) VALUES (?)", string(record))
	if err != nil {
		return fmt.Errorf("append spool record: %w", err)
	}
	return nil
}

// Count returns the number of spooled records.
func (s *Store) Count() (int, error) {
	row := s.db.QueryRow("SELECT COUNT(*) FROM weft_spool")
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count spool records: %w", err)
	}
	return n, nil
}

// TakeNewest removes and returns up to n of the most recently spooled
// records in timeline order. These are the entries adjacent to the visible
// window, so they come back first when history is expanded.
func (s *Store) TakeNewest(n int) ([][]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("take spool records: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query("SELECT seq, record FROM weft_spool ORDER BY seq DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("take spool records: %w", err)
	}
	var seqs []int64
	var records [][]byte
	for rows.Next() {
		var seq int64
		var record string
		if err := rows.Scan(&seq, &record); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan spool record: %w", err)
		}
		seqs = append(seqs, seq)
		records = append(records, []byte(record))
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("take spool records: %w", err)
	}
	_ = rows.Close()

	for _, seq := range seqs {
		if _, err := tx.Exec("DELETE FROM weft_spool WHERE seq = ?", seq); err != nil {
			return nil, fmt.Errorf("delete spool record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("take spool records: %w", err)
	}

	// Selected newest-first; flip back to timeline order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Clear removes every spooled record. Used when the stream switches to a
// new session.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM weft_spool"); err != nil {
		return fmt.Errorf("clear spool: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
