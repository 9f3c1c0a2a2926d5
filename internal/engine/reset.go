package engine

import (
	"os"
	"path/filepath"
	"time"

	"github.com/halcyon-systems/idshift/internal/backup"
	"github.com/halcyon-systems/idshift/internal/guard"
	"github.com/halcyon-systems/idshift/internal/i18n"
	"github.com/halcyon-systems/idshift/internal/identity"
	"github.com/halcyon-systems/idshift/internal/output"
	"github.com/halcyon-systems/idshift/internal/patch"
	"github.com/halcyon-systems/idshift/internal/paths"
	"github.com/halcyon-systems/idshift/internal/storage"
	"github.com/halcyon-systems/idshift/internal/sysid"
	"github.com/halcyon-systems/idshift/internal/version"
)

// Reset rotates the full identity set of one installation.
type Reset struct {
	Install *paths.Install
	Out     *output.Console
	T       *i18n.Translator

	// SkipPatches leaves the application bundle files alone and only
	// rotates the persisted identity values.
	SkipPatches bool

	// GuardWindow is how long to watch the data directory for a running
	// app before mutating. Zero disables the probe.
	GuardWindow time.Duration
}

// ResetResult reports what a completed reset wrote.
type ResetResult struct {
	IDs        identity.Set
	JSONBackup string
	SysID      sysid.Result
	Reports    map[string]*patch.Report
}

// Run executes the reset sequence: guard probe, path validation, identity
// generation, marker file, storage commit, system IDs (best-effort), then
// the version-gated bundle patches.
func (r *Reset) Run() (*ResetResult, error) {
	res := &ResetResult{Reports: make(map[string]*patch.Report)}

	if r.GuardWindow > 0 {
		busy, err := guard.Probe(filepath.Dir(r.Install.StorageJSON), r.GuardWindow)
		if err != nil {
			return nil, fail(StepGuard, err)
		}
		if busy {
			r.Out.Warn("%s", r.T.Get("reset.app_running"))
		}
	}

	r.Out.Info("%s", r.T.Get("reset.checking"))
	if err := paths.CheckMutable(r.Install.StorageJSON, r.Install.StateDB); err != nil {
		return nil, fail(StepValidate, err)
	}

	r.Out.Info("%s", r.T.Get("reset.generating"))
	ids, err := identity.New()
	if err != nil {
		return nil, fail(StepGenerate, err)
	}
	res.IDs = ids

	markerBackups := backup.NewWithSuffix(".backup")
	if err := storage.WriteMarker(r.Install.MachineIDFile, ids.DevDeviceID, markerBackups); err != nil {
		return nil, fail(StepMarker, err)
	}

	r.Out.Info("%s", r.T.Get("reset.saving_json"))
	store := storage.New(r.Install.StorageJSON, r.Install.StateDB)
	jsonBackup, err := store.Commit(ids.Pairs(), backup.New())
	if err != nil {
		return nil, fail(StepStorage, err)
	}
	res.JSONBackup = jsonBackup
	r.Out.Success("%s", r.T.Get("reset.backup_created", jsonBackup))
	r.Out.Success("%s", r.T.Get("reset.updating_sqlite"))

	r.Out.Info("%s", r.T.Get("reset.system_ids"))
	res.SysID = sysid.Apply(r.Install.OS, sysid.Fresh(ids))
	for _, w := range res.SysID.Warnings {
		r.Out.Warn("%s", w)
	}

	if r.SkipPatches {
		return res, nil
	}
	if err := r.applyPatches(res); err != nil {
		return nil, err
	}
	return res, nil
}

// applyPatches runs the workbench rule set unconditionally and the
// machine-id rewrite behind its version gate.
func (r *Reset) applyPatches(res *ResetResult) error {
	if _, err := os.Stat(r.Install.WorkbenchJS); err == nil {
		if err := r.patchFile(StepWorkbench, r.Install.WorkbenchJS, patch.WorkbenchRules(), res); err != nil {
			return err
		}
	} else {
		r.Out.Warn("workbench file not found, UI patches skipped: %s", r.Install.WorkbenchJS)
	}

	installed, err := version.FromPackageJSON(r.Install.PackageJSON)
	if err != nil {
		return fail(StepGate, err)
	}
	r.Out.Info("%s", r.T.Get("reset.version_found", installed))

	rules := patch.MachineIDRules()
	applies, err := rules.AppliesTo(installed)
	if err != nil {
		return fail(StepGate, err)
	}
	if !applies {
		r.Out.Info("%s", r.T.Get("reset.version_gated", installed, rules.MinVersion))
		return nil
	}

	if err := paths.CheckMutable(r.Install.MainJS); err != nil {
		return fail(StepMainJS, err)
	}
	return r.patchFile(StepMainJS, r.Install.MainJS, rules, res)
}

// patchFile applies one rule set to one file and reports per-rule hits.
func (r *Reset) patchFile(step Step, path string, rules patch.RuleSet, res *ResetResult) error {
	r.Out.Info("%s", r.T.Get("reset.patching", filepath.Base(path)))

	report, err := patch.Apply(path, rules.Rules, backup.NewWithSuffix(".backup"))
	if err != nil {
		return fail(step, err)
	}
	res.Reports[rules.Name] = report

	for _, rr := range report.Results {
		if rr.Hits > 0 {
			r.Out.Success("%s", r.T.Get("reset.rule_hits", rr.Rule, rr.Hits))
		}
	}
	if !report.Changed() {
		// Cannot tell "already patched" from "upstream format changed";
		// surface it and let the user judge.
		r.Out.Warn("%s", r.T.Get("reset.rules_missed", filepath.Base(path)))
	}
	return nil
}
