package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyon-systems/idshift/internal/backup"
	"github.com/halcyon-systems/idshift/internal/errs"
	"github.com/halcyon-systems/idshift/internal/i18n"
	"github.com/halcyon-systems/idshift/internal/output"
	"github.com/halcyon-systems/idshift/internal/patch"
	"github.com/halcyon-systems/idshift/internal/paths"
	"github.com/halcyon-systems/idshift/internal/version"
)

var bypassVersionFlagTarget string

var bypassVersionCmd = &cobra.Command{
	Use:   "bypass-version",
	Short: "Raise the version recorded in product.json",
	Long: `Rewrite the version field of product.json when the installed build
reports a version below the floor. Installations at or above the floor
are left untouched. The file is backed up before the edit.`,
	Example: `  idshift bypass-version
  idshift bypass-version --target 0.50.0`,
	RunE: runBypassVersion,
}

var bypassTokenCmd = &cobra.Command{
	Use:   "bypass-token-limit",
	Short: "Apply only the token-limit patch to the workbench bundle",
	RunE:  runBypassToken,
}

func init() {
	bypassVersionCmd.Flags().StringVar(&bypassVersionFlagTarget, "target", "0.48.7", "version to write when below the floor")

	RootCmd.AddCommand(bypassVersionCmd)
	RootCmd.AddCommand(bypassTokenCmd)
}

// versionFloor is the lowest version the upstream service accepts; builds
// reporting less are rewritten to the target.
const versionFloor = "0.46.0"

func runBypassVersion(cmd *cobra.Command, args []string) error {
	t := i18n.Default()
	out := output.Stdout()

	install, err := resolveInstall()
	if err != nil {
		return err
	}

	out.Header(t.Get("bypass.version_title"))
	if err := paths.CheckMutable(install.ProductJSON); err != nil {
		return err
	}

	data, err := os.ReadFile(install.ProductJSON)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", install.ProductJSON, err)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return errs.InvalidFormat("%s is not a JSON object: %v", install.ProductJSON, err)
	}

	current, _ := doc["version"].(string)
	if current == "" {
		current = "0.0.0"
	}

	cmp, err := version.Compare(current, versionFloor)
	if err != nil {
		return err
	}
	if cmp >= 0 {
		out.Info("%s", t.Get("bypass.version_already", current, versionFloor))
		return nil
	}

	info, err := os.Stat(install.ProductJSON)
	if err != nil {
		return err
	}
	rec, err := backup.New().Create(install.ProductJSON)
	if err != nil {
		return err
	}
	out.Success("%s", t.Get("reset.backup_created", rec.Path))

	doc["version"] = bypassVersionFlagTarget
	updated, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", install.ProductJSON, err)
	}
	if err := os.WriteFile(install.ProductJSON, updated, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", install.ProductJSON, err)
	}

	out.Success("%s", t.Get("bypass.version_updated", bypassVersionFlagTarget, current))
	return nil
}

func runBypassToken(cmd *cobra.Command, args []string) error {
	t := i18n.Default()
	out := output.Stdout()

	install, err := resolveInstall()
	if err != nil {
		return err
	}

	out.Header(t.Get("bypass.token_title"))
	if err := paths.CheckMutable(install.WorkbenchJS); err != nil {
		return err
	}

	// The workbench bundle runs to tens of megabytes; show progress while
	// it is read and rewritten.
	spinner := output.NewSpinner("Patching workbench.desktop.main.js")
	spinner.Start()
	rules := patch.TokenLimitRules()
	report, err := patch.Apply(install.WorkbenchJS, rules.Rules, backup.NewWithSuffix(".backup"))
	spinner.Stop()
	if err != nil {
		return err
	}

	for _, rr := range report.Results {
		if rr.Hits > 0 {
			out.Success("%s", t.Get("reset.rule_hits", rr.Rule, rr.Hits))
		}
	}
	if !report.Changed() {
		out.Warn("%s", t.Get("reset.rules_missed", "workbench.desktop.main.js"))
	}
	return nil
}
