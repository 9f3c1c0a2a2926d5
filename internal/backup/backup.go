// Package backup creates, lists, and restores timestamped sibling copies
// of files about to be mutated. Backups are never deleted automatically;
// cleanup is left to the user.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/halcyon-systems/idshift/internal/errs"
)

// TimestampLayout is the second-granularity stamp embedded in backup
// filenames. It is part of the on-disk contract: List parses it back.
const TimestampLayout = "20060102_150405"

// Record describes one backup on disk.
type Record struct {
	Source    string
	Path      string
	CreatedAt time.Time
}

// Manager creates backups with a fixed filename suffix. The default ".bak"
// is used for configuration files; patched application files use ".backup"
// so the two families stay distinguishable in a directory listing.
type Manager struct {
	suffix string
	now    func() time.Time
}

// New returns a Manager using the ".bak" suffix.
func New() *Manager {
	return NewWithSuffix(".bak")
}

// NewWithSuffix returns a Manager using the given suffix, e.g. ".backup".
func NewWithSuffix(suffix string) *Manager {
	return &Manager{suffix: suffix, now: time.Now}
}

// Create copies path to a sibling named <path><suffix>.<timestamp>,
// preserving mode bits. If a backup with the same timestamp already
// exists it is reused rather than overwritten.
func (m *Manager) Create(path string) (Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, errs.NotFound("cannot back up %s", path)
		}
		return Record{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	createdAt := m.now()
	backupPath := fmt.Sprintf("%s%s.%s", path, m.suffix, createdAt.Format(TimestampLayout))
	rec := Record{Source: path, Path: backupPath, CreatedAt: createdAt}

	if _, err := os.Stat(backupPath); err == nil {
		// Same-second collision: the existing backup already holds the
		// pre-mutation content for this run.
		return rec, nil
	}

	if err := copyFile(path, backupPath, info.Mode()); err != nil {
		return Record{}, fmt.Errorf("failed to create backup %s: %w", backupPath, err)
	}
	return rec, nil
}

// List returns the backups of path, newest first. Discovery is by glob on
// the sibling directory using the original filename plus the suffix
// pattern, so backups created by earlier versions of the tool are found
// as long as the naming convention held.
func (m *Manager) List(path string) ([]Record, error) {
	pattern := fmt.Sprintf("%s%s.*", path, m.suffix)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
	}

	records := make([]Record, 0, len(matches))
	for _, match := range matches {
		rec := Record{Source: path, Path: match}

		stamp := match[strings.LastIndex(match, ".")+1:]
		if t, err := time.ParseInLocation(TimestampLayout, stamp, time.Local); err == nil {
			rec.CreatedAt = t
		} else if info, err := os.Stat(match); err == nil {
			// Foreign or truncated stamp: fall back to the file's mtime so
			// the entry still sorts sensibly instead of being dropped.
			rec.CreatedAt = info.ModTime()
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Path > records[j].Path
	})
	return records, nil
}

// Restore copies a backup's content back over the live file. The live
// file, if present, is first backed up itself (with a ".restore_bak"
// suffix) so a restore never destroys the most recent pre-restore state.
// It returns the path of that pre-restore backup, or "" when the live
// file did not exist.
func (m *Manager) Restore(rec Record) (string, error) {
	backupInfo, err := os.Stat(rec.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errs.NotFound("backup %s", rec.Path)
		}
		return "", fmt.Errorf("failed to stat backup %s: %w", rec.Path, err)
	}

	preRestore := ""
	if _, err := os.Stat(rec.Source); err == nil {
		pre := NewWithSuffix(".restore_bak")
		pre.now = m.now
		preRec, err := pre.Create(rec.Source)
		if err != nil {
			return "", fmt.Errorf("failed to back up live file before restore: %w", err)
		}
		preRestore = preRec.Path
	}

	if err := copyFile(rec.Path, rec.Source, backupInfo.Mode()); err != nil {
		return "", fmt.Errorf("failed to restore %s: %w", rec.Source, err)
	}
	return preRestore, nil
}

// copyFile copies src to dst with the given mode. dst is truncated if it
// already exists.
func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, mode.Perm()); err != nil {
		return err
	}
	// WriteFile's mode only applies on creation; enforce it on overwrite.
	return os.Chmod(dst, mode.Perm())
}
