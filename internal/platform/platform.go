// Package platform centralizes the per-OS knowledge of where the target
// application keeps its files. Each supported OS implements Ops; every
// other component takes an Ops value instead of branching on GOOS.
package platform

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/halcyon-systems/idshift/internal/errs"
)

// Ops describes one operating system's default installation layout.
type Ops interface {
	// Name returns the GOOS-style platform name.
	Name() string
	// InstallCandidates returns base application directories to probe, in
	// priority order. The first candidate containing package.json wins.
	InstallCandidates() []string
	// DefaultStoragePath returns the storage.json location.
	DefaultStoragePath() (string, error)
	// DefaultDatabasePath returns the state.vscdb location.
	DefaultDatabasePath() (string, error)
	// DefaultMachineIDPath returns the machineId marker file location.
	DefaultMachineIDPath() (string, error)
}

// Current returns the Ops for the running system.
func Current() (Ops, error) {
	return For(runtime.GOOS)
}

// For returns the Ops for the named GOOS value.
func For(name string) (Ops, error) {
	switch name {
	case "windows":
		return windowsOps{}, nil
	case "darwin":
		return darwinOps{}, nil
	case "linux":
		return linuxOps{}, nil
	}
	return nil, errs.NotFound("unsupported operating system %q", name)
}

// homeDir returns the invoking user's home directory. Under sudo on Linux
// the target files live under the original user's home, not root's.
func homeDir() (string, error) {
	if runtime.GOOS == "linux" {
		if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
			return filepath.Join("/home", sudoUser), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errs.NotFound("cannot determine home directory: %v", err)
	}
	return home, nil
}

type windowsOps struct{}

func (windowsOps) Name() string { return "windows" }

func (windowsOps) InstallCandidates() []string {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		return nil
	}
	return []string{filepath.Join(localAppData, "Programs", "Cursor", "resources", "app")}
}

func (windowsOps) appData() (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		return "", errs.NotFound("APPDATA environment variable not set")
	}
	return appData, nil
}

func (w windowsOps) DefaultStoragePath() (string, error) {
	appData, err := w.appData()
	if err != nil {
		return "", err
	}
	return filepath.Join(appData, "Cursor", "User", "globalStorage", "storage.json"), nil
}

func (w windowsOps) DefaultDatabasePath() (string, error) {
	appData, err := w.appData()
	if err != nil {
		return "", err
	}
	return filepath.Join(appData, "Cursor", "User", "globalStorage", "state.vscdb"), nil
}

func (w windowsOps) DefaultMachineIDPath() (string, error) {
	appData, err := w.appData()
	if err != nil {
		return "", err
	}
	return filepath.Join(appData, "Cursor", "machineId"), nil
}

type darwinOps struct{}

func (darwinOps) Name() string { return "darwin" }

func (darwinOps) InstallCandidates() []string {
	return []string{"/Applications/Cursor.app/Contents/Resources/app"}
}

func (darwinOps) DefaultStoragePath() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "Application Support", "Cursor", "User", "globalStorage", "storage.json"), nil
}

func (darwinOps) DefaultDatabasePath() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "Application Support", "Cursor", "User", "globalStorage", "state.vscdb"), nil
}

func (darwinOps) DefaultMachineIDPath() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "Application Support", "Cursor", "machineId"), nil
}

type linuxOps struct{}

func (linuxOps) Name() string { return "linux" }

func (linuxOps) InstallCandidates() []string {
	candidates := []string{
		"/opt/Cursor/resources/app",
		"/usr/share/cursor/resources/app",
		"/usr/lib/cursor/app",
	}
	if home, err := homeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".local", "share", "cursor", "resources", "app"),
			// Extracted AppImage layouts, both under $HOME and the
			// working directory the image was unpacked in.
			filepath.Join(home, "squashfs-root", "usr", "share", "cursor", "resources", "app"),
		)
	}
	candidates = append(candidates, filepath.Join("squashfs-root", "usr", "share", "cursor", "resources", "app"))
	return candidates
}

func (linuxOps) DefaultStoragePath() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cursor", "User", "globalStorage", "storage.json"), nil
}

func (linuxOps) DefaultDatabasePath() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cursor", "User", "globalStorage", "state.vscdb"), nil
}

func (linuxOps) DefaultMachineIDPath() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cursor", "machineid"), nil
}
