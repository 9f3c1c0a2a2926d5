package app

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/halcyon-systems/idshift/internal/errs"
	"github.com/halcyon-systems/idshift/internal/i18n"
	"github.com/halcyon-systems/idshift/internal/identity"
	"github.com/halcyon-systems/idshift/internal/output"
	"github.com/halcyon-systems/idshift/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the machine identity currently on disk",
	Long: `Read the identity values out of storage.json and the state database
and print them side by side. A key on which the two substrates disagree
is flagged; that usually means a reset was interrupted between the two
writes.`,
	RunE: runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	t := i18n.Default()
	out := output.Stdout()

	install, err := resolveInstall()
	if err != nil {
		return err
	}

	store := storage.New(install.StorageJSON, install.StateDB)

	jsonValues, err := store.ReadJSON(identity.Keys())
	if err != nil {
		return err
	}

	dbValues, err := store.ReadDB(identity.Keys())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			out.Warn("state database not found: %s", install.StateDB)
			dbValues = map[string]string{}
		} else {
			return err
		}
	}

	out.Header(t.Get("status.title"))
	mismatches := 0
	for _, key := range identity.Keys() {
		jv, dv := jsonValues[key], dbValues[key]
		display := jv
		if display == "" {
			display = "(not set)"
		}
		out.Plain("  %-28s %s", key, display)
		if jv != dv && dv != "" {
			out.Warn("%s", t.Get("status.mismatch", key))
			out.Plain("    database value: %s", dv)
			mismatches++
		}
	}

	if mismatches == 0 {
		out.Success("storage.json and the state database agree")
	}
	return nil
}
