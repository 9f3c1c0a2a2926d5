package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyon-systems/idshift/internal/output"
	"github.com/halcyon-systems/idshift/internal/platform"
)

var pathsFlagSave bool

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show the resolved installation paths",
	Long: `Print every path the tool resolved for the current installation and
whether each file exists. With --save the discovered base directory is
written to the config file, pinning it for later runs.`,
	Example: `  idshift paths
  idshift paths --save`,
	RunE: runPaths,
}

func init() {
	pathsCmd.Flags().BoolVar(&pathsFlagSave, "save", false, "persist the discovered base directory to the config file")

	RootCmd.AddCommand(pathsCmd)
}

func runPaths(cmd *cobra.Command, args []string) error {
	out := output.Stdout()

	install, err := resolveInstall()
	if err != nil {
		return err
	}

	entries := []struct {
		label string
		path  string
	}{
		{"base directory", install.BaseDir},
		{"storage.json", install.StorageJSON},
		{"state database", install.StateDB},
		{"machineId marker", install.MachineIDFile},
		{"package.json", install.PackageJSON},
		{"main.js", install.MainJS},
		{"workbench js", install.WorkbenchJS},
		{"product.json", install.ProductJSON},
	}

	out.Plain("Platform: %s", install.OS)
	for _, e := range entries {
		marker := "missing"
		if _, err := os.Stat(e.path); err == nil {
			marker = "ok"
		}
		out.Plain("  %-18s [%s] %s", e.label, marker, e.path)
	}

	if !pathsFlagSave {
		return nil
	}

	ops, err := platform.Current()
	if err != nil {
		return err
	}
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.SetBase(ops.Name(), install.BaseDir)
	if err := cfg.Save(cfgPath); err != nil {
		return err
	}
	out.Success("base directory saved to %s", cfgPath)
	return nil
}
