// Package app wires the idshift commands. Each verb lives in its own
// file; shared setup (config load, path resolution) is here and in
// common.go.
package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyon-systems/idshift/internal/config"
	"github.com/halcyon-systems/idshift/internal/paths"
	"github.com/halcyon-systems/idshift/internal/platform"
)

var (
	configPath string

	// RootCmd is the root command for idshift.
	RootCmd = &cobra.Command{
		Use:   "idshift",
		Short: "Reset and restore the machine identity of a Cursor installation",
		Long: `idshift rotates the persistent machine identifiers a Cursor
installation uses to recognize itself: the telemetry ids in storage.json,
the rows in the state.vscdb database, the machineId marker file, and the
OS-level identity stores where the platform has one. Every file is backed
up with a timestamp before it is touched, and any backup can be restored
later.

Close Cursor before running a reset or restore.

Examples:
  # Rotate the machine identity
  idshift reset

  # Rotate ids but leave the application files unpatched
  idshift reset --skip-patches

  # List backups and restore the most recent one
  idshift restore --list
  idshift restore latest

  # Show the identity currently on disk
  idshift status`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/idshift/config.yaml)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig reads the config file named by --config, or the default
// location when the flag is unset.
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, "", fmt.Errorf("failed to locate config: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// resolveInstall builds the installation descriptor for the running OS,
// honoring config overrides.
func resolveInstall() (*paths.Install, error) {
	ops, err := platform.Current()
	if err != nil {
		return nil, err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return paths.Resolve(ops, cfg.ForOS(ops.Name()))
}
