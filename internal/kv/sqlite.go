package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	k TEXT PRIMARY KEY,
	v TEXT NOT NULL
) WITHOUT ROWID;
`

// SQLiteStore persists records in a single-table SQLite database. The
// pure-Go driver keeps the binary cgo-free; WAL mode lets concurrent
// readers proceed while a writer commits.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and prepares the
// records table.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the value for key, or ErrNotFound.
func (s *SQLiteStore) Get(key string) (string, error) {
	var v string
	err := s.db.QueryRow("SELECT v FROM records WHERE k = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return v, nil
}

// Put stores value under key, overwriting any previous value.
func (s *SQLiteStore) Put(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO records (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v",
		key, value)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// PutIfAbsent stores value under key only if the key is unused. The
// conditional insert is a single statement, so concurrent callers racing
// for the same key see exactly one winner.
func (s *SQLiteStore) PutIfAbsent(key, value string) error {
	res, err := s.db.Exec(
		"INSERT INTO records (k, v) VALUES (?, ?) ON CONFLICT(k) DO NOTHING",
		key, value)
	if err != nil {
		return fmt.Errorf("put if absent %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("put if absent %q: %w", key, err)
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Delete removes key, or returns ErrNotFound if it was never stored.
func (s *SQLiteStore) Delete(key string) error {
	res, err := s.db.Exec("DELETE FROM records WHERE k = ?", key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ScanPrefix returns all entries whose key starts with prefix, in
// ascending key order.
func (s *SQLiteStore) ScanPrefix(prefix string) ([]Entry, error) {
	rows, err := s.db.Query(
		"SELECT k, v FROM records WHERE k LIKE ? ESCAPE '\\' ORDER BY k",
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", prefix, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scan %q: %w", prefix, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan %q: %w", prefix, err)
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// escapeLike escapes the LIKE wildcards in a literal prefix.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
