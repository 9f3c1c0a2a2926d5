package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halcyon-systems/idshift/internal/backup"
	"github.com/halcyon-systems/idshift/internal/engine"
	"github.com/halcyon-systems/idshift/internal/i18n"
	"github.com/halcyon-systems/idshift/internal/output"
)

var (
	restoreFlagList bool
	restoreFlagYes  bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-number | latest]",
	Short: "Restore a machine identity from a backup",
	Long: `Restore the identity values recorded in a storage.json backup back
into the live installation. The live file is itself backed up before it
is overwritten, so a restore never loses the current state.

Arguments:
  backup-number  The number shown by 'idshift restore --list'
  latest         Restore the most recent backup`,
	Example: `  idshift restore --list
  idshift restore latest
  idshift restore 2
  idshift restore 2 --yes`,
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreFlagList, "list", false, "list available backups")
	restoreCmd.Flags().BoolVar(&restoreFlagYes, "yes", false, "skip confirmation prompt")

	RootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	t := i18n.Default()
	out := output.Stdout()

	install, err := resolveInstall()
	if err != nil {
		return err
	}

	restore := &engine.Restore{
		Install:     install,
		Out:         out,
		T:           t,
		GuardWindow: 500 * time.Millisecond,
	}

	records, err := restore.ListBackups()
	if err != nil {
		return err
	}

	if restoreFlagList {
		return listBackupRecords(out, t, install.StorageJSON, records)
	}

	if len(args) == 0 {
		return fmt.Errorf("backup number or 'latest' required\n\nUse 'idshift restore --list' to see available backups")
	}
	if len(records) == 0 {
		return fmt.Errorf("%s", t.Get("restore.no_backups", install.StorageJSON))
	}

	var rec backup.Record
	if strings.EqualFold(args[0], "latest") {
		rec = records[0]
	} else {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(records) {
			return fmt.Errorf("invalid backup number: %s (must be 1-%d or 'latest')", args[0], len(records))
		}
		rec = records[n-1]
	}

	out.Header(t.Get("restore.title"))
	out.Plain("Backup: %s", rec.Path)

	ids, err := restore.Extract(rec)
	if err != nil {
		return err
	}

	out.Plain("")
	out.Plain("%s:", t.Get("restore.ids_to_restore"))
	printIdentity(out, ids)
	out.Plain("")

	if !restoreFlagYes && !confirm("Restore these identity values?") {
		out.Plain("Cancelled.")
		return nil
	}

	if _, err := restore.Run(ids); err != nil {
		return err
	}

	out.Success("%s", t.Get("restore.success"))
	return nil
}

// listBackupRecords prints the numbered backup list consumed by the
// restore argument.
func listBackupRecords(out *output.Console, t *i18n.Translator, source string, records []backup.Record) error {
	if len(records) == 0 {
		out.Warn("%s", t.Get("restore.no_backups", source))
		return nil
	}

	out.Plain("%s:", t.Get("restore.available"))
	for i, rec := range records {
		size := int64(0)
		if info, err := os.Stat(rec.Path); err == nil {
			size = info.Size()
		}
		out.Plain("  %d. %s (%s, %s)", i+1, rec.Path, rec.CreatedAt.Format("2006-01-02 15:04:05"), formatSize(size))
	}
	return nil
}
