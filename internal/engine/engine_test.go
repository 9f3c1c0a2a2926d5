package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/halcyon-systems/idshift/internal/errs"
	"github.com/halcyon-systems/idshift/internal/i18n"
	"github.com/halcyon-systems/idshift/internal/identity"
	"github.com/halcyon-systems/idshift/internal/output"
	"github.com/halcyon-systems/idshift/internal/paths"
	"github.com/halcyon-systems/idshift/internal/storage"
)

const (
	testMainJS      = `class q{async getMachineId(){return this.a.machineId??v5(this.f)}async getMacMachineId(){return this.b.macMachineId??u7(this.g)}}`
	testWorkbenchJS = `var x=1;<div>Pro Trial</div>;async getEffectiveTokenLimit(e){const n=e.modelName;if(!n)return 2e5;`
)

// newTestInstall lays out a complete fake installation under a temp dir.
func newTestInstall(t *testing.T) *paths.Install {
	t.Helper()
	dir := t.TempDir()

	base := filepath.Join(dir, "app")
	for _, d := range []string{
		filepath.Join(base, "out", "vs", "workbench"),
		filepath.Join(dir, "globalStorage"),
	} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}

	files := map[string]string{
		filepath.Join(base, "package.json"): `{"name":"app","version":"0.45.2"}`,
		filepath.Join(base, "product.json"): `{"version":"0.45.2"}`,
		filepath.Join(base, "out", "main.js"): testMainJS,
		filepath.Join(base, "out", "vs", "workbench", "workbench.desktop.main.js"): testWorkbenchJS,
		filepath.Join(dir, "globalStorage", "storage.json"):                        `{"foo":"bar","telemetry.devDeviceId":"old-dev-id"}`,
		filepath.Join(dir, "globalStorage", "state.vscdb"):                         "",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	return &paths.Install{
		OS:            "linux",
		BaseDir:       base,
		StorageJSON:   filepath.Join(dir, "globalStorage", "storage.json"),
		StateDB:       filepath.Join(dir, "globalStorage", "state.vscdb"),
		MachineIDFile: filepath.Join(dir, "machineid"),
		PackageJSON:   filepath.Join(base, "package.json"),
		MainJS:        filepath.Join(base, "out", "main.js"),
		WorkbenchJS:   filepath.Join(base, "out", "vs", "workbench", "workbench.desktop.main.js"),
		ProductJSON:   filepath.Join(base, "product.json"),
	}
}

func newReset(install *paths.Install) (*Reset, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Reset{
		Install: install,
		Out:     output.NewConsole(&buf),
		T:       i18n.Default(),
	}, &buf
}

func TestReset_Run(t *testing.T) {
	install := newTestInstall(t)
	r, _ := newReset(install)

	res, err := r.Run()
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	if res.IDs.DevDeviceID == "" || res.IDs.MachineID == "" {
		t.Fatal("Run() produced an empty identity set")
	}

	// storage.json: new ids merged, unrelated keys preserved.
	data, err := os.ReadFile(install.StorageJSON)
	if err != nil {
		t.Fatalf("failed to read storage.json: %v", err)
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("storage.json is not valid JSON after reset: %v", err)
	}
	if doc["foo"] != "bar" {
		t.Errorf("foo = %v, want %q preserved", doc["foo"], "bar")
	}
	if doc[identity.KeyDevDeviceID] != res.IDs.DevDeviceID {
		t.Errorf("%s = %v, want %q", identity.KeyDevDeviceID, doc[identity.KeyDevDeviceID], res.IDs.DevDeviceID)
	}
	if doc[identity.KeyDevDeviceID] == "old-dev-id" {
		t.Error("devDeviceId was not rotated")
	}

	// state database rows match the generated set.
	store := storage.New(install.StorageJSON, install.StateDB)
	rows, err := store.ReadDB(identity.Keys())
	if err != nil {
		t.Fatalf("failed to read state database: %v", err)
	}
	for _, p := range res.IDs.Pairs() {
		if rows[p.Key] != p.Value {
			t.Errorf("database %s = %q, want %q", p.Key, rows[p.Key], p.Value)
		}
	}

	// Marker file carries the new device id.
	marker, err := os.ReadFile(install.MachineIDFile)
	if err != nil {
		t.Fatalf("failed to read marker: %v", err)
	}
	if string(marker) != res.IDs.DevDeviceID {
		t.Errorf("marker = %q, want %q", marker, res.IDs.DevDeviceID)
	}

	// storage.json backup exists and holds the pre-reset document.
	if res.JSONBackup == "" {
		t.Fatal("Run() returned empty JSON backup path")
	}
	orig, err := os.ReadFile(res.JSONBackup)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if !strings.Contains(string(orig), "old-dev-id") {
		t.Error("backup does not hold the pre-reset document")
	}

	// Bundle patches landed.
	mainJS, err := os.ReadFile(install.MainJS)
	if err != nil {
		t.Fatalf("failed to read main.js: %v", err)
	}
	if strings.Contains(string(mainJS), "??") {
		t.Error("main.js machine-id probes were not rewritten")
	}
	workbench, err := os.ReadFile(install.WorkbenchJS)
	if err != nil {
		t.Fatalf("failed to read workbench bundle: %v", err)
	}
	if strings.Contains(string(workbench), "<div>Pro Trial") {
		t.Error("workbench trial badge was not patched")
	}
	if rep, ok := res.Reports["machine-id"]; !ok || !rep.Changed() {
		t.Error("machine-id rule set did not report changes")
	}
	if rep, ok := res.Reports["workbench"]; !ok || !rep.Changed() {
		t.Error("workbench rule set did not report changes")
	}

	// Linux has no writable system identity stores; expect a warning, not
	// an error.
	if len(res.SysID.Warnings) == 0 {
		t.Error("expected a system-id warning on linux")
	}
}

func TestReset_SkipPatches(t *testing.T) {
	install := newTestInstall(t)
	r, _ := newReset(install)
	r.SkipPatches = true

	if _, err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	mainJS, err := os.ReadFile(install.MainJS)
	if err != nil {
		t.Fatalf("failed to read main.js: %v", err)
	}
	if string(mainJS) != testMainJS {
		t.Error("main.js was modified despite SkipPatches")
	}
}

func TestReset_VersionGateSkipsMainJS(t *testing.T) {
	install := newTestInstall(t)
	if err := os.WriteFile(install.PackageJSON, []byte(`{"version":"0.44.0"}`), 0o644); err != nil {
		t.Fatalf("failed to rewrite package.json: %v", err)
	}

	r, _ := newReset(install)
	res, err := r.Run()
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	mainJS, err := os.ReadFile(install.MainJS)
	if err != nil {
		t.Fatalf("failed to read main.js: %v", err)
	}
	if string(mainJS) != testMainJS {
		t.Error("main.js was patched below the version floor")
	}
	if _, ok := res.Reports["machine-id"]; ok {
		t.Error("machine-id report present despite the version gate")
	}
	// Workbench patches are not gated.
	if rep, ok := res.Reports["workbench"]; !ok || !rep.Changed() {
		t.Error("workbench rule set did not report changes")
	}
}

func TestReset_MissingStorage(t *testing.T) {
	install := newTestInstall(t)
	if err := os.Remove(install.StorageJSON); err != nil {
		t.Fatalf("failed to remove storage.json: %v", err)
	}

	r, _ := newReset(install)
	_, err := r.Run()
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Run() error = %v; want errs.ErrNotFound", err)
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Run() error is not a StepError: %v", err)
	}
	if stepErr.Step != StepValidate {
		t.Errorf("failed step = %q, want %q", stepErr.Step, StepValidate)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	install := newTestInstall(t)

	// A reset produces the backup the restore will read.
	r, _ := newReset(install)
	r.SkipPatches = true
	resetRes, err := r.Run()
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	var buf bytes.Buffer
	restore := &Restore{Install: install, Out: output.NewConsole(&buf), T: i18n.Default()}

	records, err := restore.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() returned error: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("ListBackups() found no backups after a reset")
	}

	ids, err := restore.Extract(records[0])
	if err != nil {
		t.Fatalf("Extract() returned error: %v", err)
	}
	if ids.DevDeviceID != "old-dev-id" {
		t.Fatalf("Extract() DevDeviceID = %q, want %q", ids.DevDeviceID, "old-dev-id")
	}

	res, err := restore.Run(ids)
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	values, err := storage.New(install.StorageJSON, install.StateDB).ReadJSON(identity.Keys())
	if err != nil {
		t.Fatalf("ReadJSON() returned error: %v", err)
	}
	if values[identity.KeyDevDeviceID] != "old-dev-id" {
		t.Errorf("%s = %q after restore, want %q", identity.KeyDevDeviceID, values[identity.KeyDevDeviceID], "old-dev-id")
	}
	if values[identity.KeyDevDeviceID] == resetRes.IDs.DevDeviceID {
		t.Error("restore left the reset-generated id in place")
	}

	// The pre-restore state was preserved under the restore suffix.
	if res.PreBackup == "" {
		t.Fatal("Run() returned empty pre-restore backup path")
	}
	if !strings.Contains(res.PreBackup, ".restore_bak.") {
		t.Errorf("pre-restore backup %q does not use the restore suffix", res.PreBackup)
	}
	pre, err := os.ReadFile(res.PreBackup)
	if err != nil {
		t.Fatalf("failed to read pre-restore backup: %v", err)
	}
	if !strings.Contains(string(pre), resetRes.IDs.DevDeviceID) {
		t.Error("pre-restore backup does not hold the reset-generated state")
	}

	marker, err := os.ReadFile(install.MachineIDFile)
	if err != nil {
		t.Fatalf("failed to read marker: %v", err)
	}
	if string(marker) != "old-dev-id" {
		t.Errorf("marker = %q after restore, want %q", marker, "old-dev-id")
	}
}

func TestRestore_Extract_PartialSetWarns(t *testing.T) {
	install := newTestInstall(t)

	// Craft a backup holding only two of the identity keys.
	backupPath := install.StorageJSON + ".bak.20250101_120000"
	content := `{"telemetry.devDeviceId":"dev-x","telemetry.machineId":"mach-x"}`
	if err := os.WriteFile(backupPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write backup: %v", err)
	}

	var buf bytes.Buffer
	restore := &Restore{Install: install, Out: output.NewConsole(&buf), T: i18n.Default()}

	records, err := restore.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ListBackups() found %d records, want 1", len(records))
	}

	ids, err := restore.Extract(records[0])
	if err != nil {
		t.Fatalf("Extract() returned error: %v", err)
	}
	if ids.DevDeviceID != "dev-x" || ids.MachineID != "mach-x" {
		t.Errorf("Extract() = %+v, want dev-x/mach-x", ids)
	}
	if ids.MacMachineID != "" {
		t.Errorf("MacMachineID = %q, want empty", ids.MacMachineID)
	}
	if !strings.Contains(buf.String(), identity.KeyMacMachineID) {
		t.Error("Extract() did not warn about the missing macMachineId")
	}
}

func TestRestore_Extract_EmptyBackupRejected(t *testing.T) {
	install := newTestInstall(t)

	backupPath := install.StorageJSON + ".bak.20250101_120000"
	if err := os.WriteFile(backupPath, []byte(`{"foo":"bar"}`), 0o644); err != nil {
		t.Fatalf("failed to write backup: %v", err)
	}

	var buf bytes.Buffer
	restore := &Restore{Install: install, Out: output.NewConsole(&buf), T: i18n.Default()}
	records, err := restore.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() returned error: %v", err)
	}

	_, err = restore.Extract(records[0])
	if !errors.Is(err, errs.ErrInvalidFormat) {
		t.Errorf("Extract() error = %v; want errs.ErrInvalidFormat", err)
	}
}
