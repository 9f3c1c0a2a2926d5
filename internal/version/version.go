// Package version implements the version gate deciding which patch rule
// sets are safe to apply to an installed build.
package version

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/halcyon-systems/idshift/internal/errs"
)

// parse normalizes v to three numeric components and parses it. Missing
// trailing components are padded with zero; versions in the wild are
// always three-component, the padding is defensive.
func parse(v string) (*goversion.Version, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, errs.InvalidFormat("empty version string")
	}

	parts := strings.Split(v, ".")
	if len(parts) > 3 {
		return nil, errs.InvalidFormat("version %q has more than three components", v)
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	for _, p := range parts {
		if p == "" {
			return nil, errs.InvalidFormat("version %q has an empty component", v)
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return nil, errs.InvalidFormat("version %q has a non-numeric component %q", v, p)
			}
		}
	}

	parsed, err := goversion.NewVersion(strings.Join(parts, "."))
	if err != nil {
		return nil, errs.InvalidFormat("version %q: %v", v, err)
	}
	return parsed, nil
}

// Compare returns -1, 0, or 1 depending on whether a is lower than, equal
// to, or higher than b. Comparison is numeric per component, never
// lexicographic: 0.9.0 sorts below 0.10.0.
func Compare(a, b string) (int, error) {
	va, err := parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := parse(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// InRange reports whether v is within [min, max]. Either bound may be
// empty to leave that side open.
func InRange(v, min, max string) (bool, error) {
	current, err := parse(v)
	if err != nil {
		return false, err
	}

	if min != "" {
		lo, err := parse(min)
		if err != nil {
			return false, err
		}
		if current.LessThan(lo) {
			return false, nil
		}
	}

	if max != "" {
		hi, err := parse(max)
		if err != nil {
			return false, err
		}
		if current.GreaterThan(hi) {
			return false, nil
		}
	}

	return true, nil
}

// FromPackageJSON reads the installed application version out of a
// package.json file.
func FromPackageJSON(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errs.NotFound("%s", path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", errs.InvalidFormat("%s is not valid JSON: %v", path, err)
	}

	v := strings.TrimSpace(pkg.Version)
	if v == "" {
		return "", errs.InvalidFormat("%s has no version field", path)
	}
	if _, err := parse(v); err != nil {
		return "", err
	}
	return v, nil
}
