package storage

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/halcyon-systems/idshift/internal/errs"
	"github.com/halcyon-systems/idshift/internal/identity"
)

// ItemTable is the application's key/value table. The schema is theirs,
// not ours: never add columns or indexes here.
const createItemTable = `
CREATE TABLE IF NOT EXISTS ItemTable (
    key TEXT PRIMARY KEY,
    value TEXT
)`

// open returns a connection to the state database. A single connection is
// enough: SQLite allows one writer and the tool is strictly sequential.
func (s *Store) open() (*sql.DB, error) {
	if _, err := os.Stat(s.dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NotFound("%s", s.dbPath)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", s.dbPath, err)
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", s.dbPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// UpsertDB writes every pair into ItemTable inside a single transaction.
// Either all entries land or none do; a failed upsert rolls the whole
// set back so a partial identity can never be observed.
func (s *Store) UpsertDB(pairs []identity.Pair) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(createItemTable); err != nil {
		return fmt.Errorf("failed to ensure ItemTable: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, p := range pairs {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO ItemTable (key, value) VALUES (?, ?)`, p.Key, p.Value); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert %s: %w", p.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit identity upserts: %w", err)
	}
	return nil
}

// ReadDB returns the values of keys present in ItemTable. Missing keys
// are omitted. A database without an ItemTable yields an empty map, not
// an error: a fresh install simply has no identity rows yet.
func (s *Store) ReadDB(keys []string) (map[string]string, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	values := make(map[string]string, len(keys))
	for _, key := range keys {
		var value string
		err := db.QueryRow(`SELECT value FROM ItemTable WHERE key = ?`, key).Scan(&value)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			if strings.Contains(err.Error(), "no such table") {
				return values, nil
			}
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		values[key] = value
	}
	return values, nil
}
