// Package patch applies ordered search/replace rules to application files
// with an atomic replace: the fully patched content is written to a temp
// file in the same directory, the original is backed up, and the temp file
// is renamed into place. The original is either fully replaced or left
// untouched.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/halcyon-systems/idshift/internal/backup"
	"github.com/halcyon-systems/idshift/internal/errs"
)

// Rule transforms file content and reports how many sites it touched.
// A rule whose pattern is absent returns the content unchanged with zero
// hits; absence is not an error, so already-patched files pass through.
type Rule interface {
	Name() string
	Apply(content string) (patched string, hits int)
}

// TextRule replaces every occurrence of an exact substring.
type TextRule struct {
	Label   string
	Find    string
	Replace string
}

func (r TextRule) Name() string { return r.Label }

func (r TextRule) Apply(content string) (string, int) {
	hits := strings.Count(content, r.Find)
	if hits == 0 {
		return content, 0
	}
	return strings.ReplaceAll(content, r.Find, r.Replace), hits
}

// RegexRule replaces every match of a compiled pattern. Used where the
// target site embeds build-specific identifiers that an exact substring
// cannot pin down.
type RegexRule struct {
	Label   string
	Pattern *regexp.Regexp
	Replace string
}

func (r RegexRule) Name() string { return r.Label }

func (r RegexRule) Apply(content string) (string, int) {
	hits := len(r.Pattern.FindAllStringIndex(content, -1))
	if hits == 0 {
		return content, 0
	}
	return r.Pattern.ReplaceAllString(content, r.Replace), hits
}

// RuleResult records how often one rule matched.
type RuleResult struct {
	Rule string
	Hits int
}

// Report summarizes one Apply call. Per-rule hit counts are exposed so a
// caller can tell a fully-missed rule set (possible upstream format
// change) apart from a partial match.
type Report struct {
	Results []RuleResult
}

// Changed reports whether any rule matched.
func (r *Report) Changed() bool {
	for _, res := range r.Results {
		if res.Hits > 0 {
			return true
		}
	}
	return false
}

// Apply runs rules over the file at path in list order. When at least one
// rule matched, the original is backed up via backups and atomically
// replaced; mode bits (and, on non-Windows, owner/group) are restored on
// the new file. When nothing matched the file is not touched at all.
func Apply(path string, rules []Rule, backups *backup.Manager) (*Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NotFound("%s", path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errs.Permission("%s", path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := string(data)
	report := &Report{Results: make([]RuleResult, 0, len(rules))}
	for _, rule := range rules {
		var hits int
		content, hits = rule.Apply(content)
		report.Results = append(report.Results, RuleResult{Rule: rule.Name(), Hits: hits})
	}

	if !report.Changed() {
		return report, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file next to %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write patched content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to flush patched content: %w", err)
	}

	if _, err := backups.Create(path); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	// Remove-then-rename rather than writing over the original: a crash
	// mid-write would otherwise leave a truncated file behind.
	if err := os.Remove(path); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to remove %s before replace: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// The original is gone but its backup exists; report the window
		// explicitly instead of a generic I/O error.
		return nil, fmt.Errorf("%w: rename %s -> %s failed (%v); restore from the backup", errs.ErrPartialWrite, tmpPath, path, err)
	}

	if err := os.Chmod(path, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to restore mode on %s: %w", path, err)
	}
	if err := restoreOwner(path, info); err != nil {
		return nil, fmt.Errorf("failed to restore ownership on %s: %w", path, err)
	}

	return report, nil
}
