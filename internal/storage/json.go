// Package storage commits an identity set into the application's three
// storage substrates: the storage.json document, the ItemTable of the
// embedded state database, and the machineId marker file.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/halcyon-systems/idshift/internal/backup"
	"github.com/halcyon-systems/idshift/internal/errs"
	"github.com/halcyon-systems/idshift/internal/identity"
)

// Store addresses one installation's persisted identity state.
type Store struct {
	jsonPath string
	dbPath   string
}

// New returns a Store over the given storage.json and state database.
func New(jsonPath, dbPath string) *Store {
	return &Store{jsonPath: jsonPath, dbPath: dbPath}
}

// Commit persists pairs into storage.json and then the state database.
// The JSON document is backed up before it is touched; if the JSON update
// fails the database is not attempted. Returns the JSON backup path.
func (s *Store) Commit(pairs []identity.Pair, backups *backup.Manager) (string, error) {
	backupPath, err := s.MergeJSON(pairs, backups)
	if err != nil {
		return "", err
	}
	if err := s.UpsertDB(pairs); err != nil {
		return backupPath, err
	}
	return backupPath, nil
}

// MergeJSON shallow-merges pairs into the storage.json document, leaving
// every other key untouched, and writes it back with stable indentation.
// A timestamped backup is taken before the in-place update starts.
func (s *Store) MergeJSON(pairs []identity.Pair, backups *backup.Manager) (string, error) {
	info, err := os.Stat(s.jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errs.NotFound("%s", s.jsonPath)
		}
		return "", fmt.Errorf("failed to stat %s: %w", s.jsonPath, err)
	}

	data, err := os.ReadFile(s.jsonPath)
	if err != nil {
		if os.IsPermission(err) {
			return "", errs.Permission("%s", s.jsonPath)
		}
		return "", fmt.Errorf("failed to read %s: %w", s.jsonPath, err)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", errs.InvalidFormat("%s is not a JSON object: %v", s.jsonPath, err)
	}

	rec, err := backups.Create(s.jsonPath)
	if err != nil {
		return "", err
	}

	for _, p := range pairs {
		doc[p.Key] = p.Value
	}

	out, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", s.jsonPath, err)
	}
	if err := os.WriteFile(s.jsonPath, out, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", s.jsonPath, err)
	}
	return rec.Path, nil
}

// ReadJSON returns the values of keys present in the storage.json
// document. Missing keys and non-string values are omitted.
func (s *Store) ReadJSON(keys []string) (map[string]string, error) {
	data, err := os.ReadFile(s.jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NotFound("%s", s.jsonPath)
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.jsonPath, err)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.InvalidFormat("%s is not a JSON object: %v", s.jsonPath, err)
	}

	values := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := doc[key].(string); ok {
			values[key] = v
		}
	}
	return values, nil
}

// ReadJSONFile parses any flat JSON document (e.g. a backup of
// storage.json) into the identity key/value subset.
func ReadJSONFile(path string, keys []string) (map[string]string, error) {
	return (&Store{jsonPath: path}).ReadJSON(keys)
}

// WriteMarker writes value as the entire content of the machineId marker
// file, backing up any existing marker first and creating the parent
// directory if needed.
func WriteMarker(path, value string, backups *backup.Manager) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := backups.Create(path); err != nil {
			return err
		}
	}

	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		if os.IsPermission(err) {
			return errs.Permission("%s", path)
		}
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
