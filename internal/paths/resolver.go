// Package paths resolves the target installation into an immutable
// descriptor. Resolution happens once per run; the rest of the program
// only ever sees the resulting Install value.
package paths

import (
	"os"
	"path/filepath"

	"github.com/halcyon-systems/idshift/internal/config"
	"github.com/halcyon-systems/idshift/internal/errs"
	"github.com/halcyon-systems/idshift/internal/platform"
)

// Install describes one resolved installation of the target application.
// All fields are absolute paths except OS.
type Install struct {
	OS            string
	BaseDir       string
	StorageJSON   string
	StateDB       string
	MachineIDFile string
	PackageJSON   string
	MainJS        string
	WorkbenchJS   string
	ProductJSON   string
}

// Resolve builds an Install for the given platform, applying user
// overrides before built-in defaults. The base directory is probed across
// the platform's candidates; when no candidate contains package.json the
// first candidate is kept so downstream existence checks produce a
// concrete path in their error.
func Resolve(ops platform.Ops, overrides config.Paths) (*Install, error) {
	base := overrides.Base
	if base == "" {
		candidates := ops.InstallCandidates()
		if len(candidates) == 0 {
			return nil, errs.NotFound("no install locations known for %s", ops.Name())
		}
		base = candidates[0]
		for _, c := range candidates {
			if _, err := os.Stat(filepath.Join(c, "package.json")); err == nil {
				base = c
				break
			}
		}
	}

	storage := overrides.Storage
	if storage == "" {
		p, err := ops.DefaultStoragePath()
		if err != nil {
			return nil, err
		}
		storage = p
	}

	db := overrides.Database
	if db == "" {
		p, err := ops.DefaultDatabasePath()
		if err != nil {
			return nil, err
		}
		db = p
	}

	machineID := overrides.MachineID
	if machineID == "" {
		p, err := ops.DefaultMachineIDPath()
		if err != nil {
			return nil, err
		}
		machineID = p
	}

	return &Install{
		OS:            ops.Name(),
		BaseDir:       base,
		StorageJSON:   storage,
		StateDB:       db,
		MachineIDFile: machineID,
		PackageJSON:   filepath.Join(base, "package.json"),
		MainJS:        filepath.Join(base, "out", "main.js"),
		WorkbenchJS:   filepath.Join(base, "out", "vs", "workbench", "workbench.desktop.main.js"),
		ProductJSON:   filepath.Join(base, "product.json"),
	}, nil
}

// CheckMutable verifies that every given path exists and is opened
// read-write. It is called before any mutation begins so a run never
// starts on files it cannot finish.
func CheckMutable(files ...string) error {
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return errs.NotFound("%s", path)
			}
			return err
		}
		if info.IsDir() {
			return errs.InvalidFormat("%s is a directory, expected a file", path)
		}

		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			if os.IsPermission(err) {
				return errs.Permission("%s", path)
			}
			return err
		}
		f.Close()
	}
	return nil
}
