package app

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/halcyon-systems/idshift/internal/engine"
	"github.com/halcyon-systems/idshift/internal/i18n"
	"github.com/halcyon-systems/idshift/internal/output"
)

var (
	resetFlagSkipPatches bool
	resetFlagYes         bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Generate and commit a new machine identity",
	Long: `Generate a fresh identity set and commit it to storage.json, the
state database, the machineId marker file, and the OS identity stores.
Version-gated patches are then applied to the application bundle files.

Every file is backed up next to itself with a timestamp before it is
modified. Nothing is rolled back on failure; use 'idshift restore' to go
back to any backup.`,
	Example: `  idshift reset
  idshift reset --skip-patches   # rotate ids only
  idshift reset --yes            # no confirmation prompt`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetFlagSkipPatches, "skip-patches", false, "do not modify application bundle files")
	resetCmd.Flags().BoolVar(&resetFlagYes, "yes", false, "skip confirmation prompt")

	RootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	t := i18n.Default()
	out := output.Stdout()

	install, err := resolveInstall()
	if err != nil {
		return err
	}

	out.Header(t.Get("reset.title"))
	out.Plain("Target installation: %s", install.BaseDir)

	if !resetFlagYes && !confirm("Rotate the machine identity of this installation?") {
		out.Plain("Cancelled.")
		return nil
	}

	reset := &engine.Reset{
		Install:     install,
		Out:         out,
		T:           t,
		SkipPatches: resetFlagSkipPatches,
		GuardWindow: 500 * time.Millisecond,
	}

	res, err := reset.Run()
	if err != nil {
		return err
	}

	out.Plain("")
	out.Plain("%s:", t.Get("reset.new_ids"))
	printIdentity(out, res.IDs)
	out.Plain("")
	out.Success("%s", t.Get("reset.success"))
	return nil
}
