package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyon-systems/idshift/internal/backup"
	"github.com/halcyon-systems/idshift/internal/i18n"
	"github.com/halcyon-systems/idshift/internal/output"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backups of the identity files",
	Long: `List the timestamped backups found next to storage.json, the
machineId marker file, and the patched application files. Backups are
never deleted by idshift; remove old ones by hand when no longer needed.`,
	RunE: runBackups,
}

func init() {
	RootCmd.AddCommand(backupsCmd)
}

func runBackups(cmd *cobra.Command, args []string) error {
	t := i18n.Default()
	out := output.Stdout()

	install, err := resolveInstall()
	if err != nil {
		return err
	}

	groups := []struct {
		label   string
		source  string
		manager *backup.Manager
	}{
		{"storage.json", install.StorageJSON, backup.New()},
		{"storage.json (pre-restore)", install.StorageJSON, backup.NewWithSuffix(".restore_bak")},
		{"machineId marker", install.MachineIDFile, backup.NewWithSuffix(".backup")},
		{"workbench bundle", install.WorkbenchJS, backup.NewWithSuffix(".backup")},
		{"main.js bundle", install.MainJS, backup.NewWithSuffix(".backup")},
	}

	total := 0
	for _, g := range groups {
		records, err := g.manager.List(g.source)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			continue
		}

		out.Plain("%s:", g.label)
		for _, rec := range records {
			size := int64(0)
			if info, err := os.Stat(rec.Path); err == nil {
				size = info.Size()
			}
			out.Plain("  %s (%s, %s)", rec.Path, rec.CreatedAt.Format("2006-01-02 15:04:05"), formatSize(size))
		}
		total += len(records)
	}

	if total == 0 {
		out.Warn("%s", t.Get("restore.no_backups", install.StorageJSON))
	}
	return nil
}
