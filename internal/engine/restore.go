package engine

import (
	"path/filepath"
	"time"

	"github.com/halcyon-systems/idshift/internal/backup"
	"github.com/halcyon-systems/idshift/internal/errs"
	"github.com/halcyon-systems/idshift/internal/guard"
	"github.com/halcyon-systems/idshift/internal/i18n"
	"github.com/halcyon-systems/idshift/internal/identity"
	"github.com/halcyon-systems/idshift/internal/output"
	"github.com/halcyon-systems/idshift/internal/paths"
	"github.com/halcyon-systems/idshift/internal/storage"
	"github.com/halcyon-systems/idshift/internal/sysid"
)

// Restore puts a previously backed-up identity set back in place.
type Restore struct {
	Install *paths.Install
	Out     *output.Console
	T       *i18n.Translator

	// GuardWindow is how long to watch the data directory for a running
	// app before mutating. Zero disables the probe.
	GuardWindow time.Duration
}

// RestoreResult reports what a completed restore wrote.
type RestoreResult struct {
	IDs identity.Set
	// PreBackup is the backup taken of the live storage.json before it
	// was overwritten; restores never destroy the pre-restore state.
	PreBackup string
	SysID     sysid.Result
}

// ListBackups returns the storage.json backups, newest first.
func (r *Restore) ListBackups() ([]backup.Record, error) {
	return backup.New().List(r.Install.StorageJSON)
}

// Extract reads the identity values out of a backup file. Empty fields
// produce a warning each but do not abort: the non-empty values are still
// worth restoring. A backup with no identity values at all is rejected.
func (r *Restore) Extract(rec backup.Record) (identity.Set, error) {
	values, err := storage.ReadJSONFile(rec.Path, identity.Keys())
	if err != nil {
		return identity.Set{}, fail(StepExtract, err)
	}

	ids := identity.FromMap(values)
	empty := 0
	for _, p := range ids.Pairs() {
		if p.Value == "" {
			r.Out.Warn("%s", r.T.Get("restore.missing_id", p.Key))
			empty++
		}
	}
	if empty == len(ids.Pairs()) {
		return identity.Set{}, fail(StepExtract, errs.InvalidFormat("backup %s holds no identity values", rec.Path))
	}
	return ids, nil
}

// Run writes ids back into storage.json, the state database, the marker
// file, and the system stores. Only non-empty values are written.
func (r *Restore) Run(ids identity.Set) (*RestoreResult, error) {
	res := &RestoreResult{IDs: ids}

	if r.GuardWindow > 0 {
		busy, err := guard.Probe(filepath.Dir(r.Install.StorageJSON), r.GuardWindow)
		if err != nil {
			return nil, fail(StepGuard, err)
		}
		if busy {
			r.Out.Warn("%s", r.T.Get("reset.app_running"))
		}
	}

	pairs := make([]identity.Pair, 0, len(ids.Pairs()))
	for _, p := range ids.Pairs() {
		if p.Value != "" {
			pairs = append(pairs, p)
		}
	}

	if err := paths.CheckMutable(r.Install.StorageJSON, r.Install.StateDB); err != nil {
		return nil, fail(StepValidate, err)
	}

	// The live file's safety copy uses its own suffix so restore backups
	// never shadow the reset-time ones in a listing.
	preBackups := backup.NewWithSuffix(".restore_bak")
	store := storage.New(r.Install.StorageJSON, r.Install.StateDB)

	preBackup, err := store.MergeJSON(pairs, preBackups)
	if err != nil {
		return nil, fail(StepStorage, err)
	}
	res.PreBackup = preBackup
	r.Out.Success("%s", r.T.Get("restore.pre_backup", preBackup))
	r.Out.Success("%s", r.T.Get("restore.storage_updated"))

	if err := store.UpsertDB(pairs); err != nil {
		return nil, fail(StepStorage, err)
	}
	r.Out.Success("%s", r.T.Get("restore.sqlite_updated"))

	if ids.DevDeviceID != "" {
		if err := storage.WriteMarker(r.Install.MachineIDFile, ids.DevDeviceID, preBackups); err != nil {
			return nil, fail(StepMarker, err)
		}
	}

	res.SysID = sysid.Apply(r.Install.OS, sysid.FromSet(ids))
	for _, w := range res.SysID.Warnings {
		r.Out.Warn("%s", w)
	}

	return res, nil
}
