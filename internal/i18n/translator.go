// Package i18n provides the message lookup used for all human-readable
// output. Messages are addressed by dotted keys; the built-in table is
// English. The translator only ever affects display text, never control
// flow.
package i18n

import "fmt"

// Translator resolves message keys to display strings.
type Translator struct {
	messages map[string]string
}

// Default returns a translator backed by the built-in English table.
func Default() *Translator {
	return &Translator{messages: english}
}

// Get returns the message for key, formatted with args. An unknown key
// returns the key itself so a missing entry is visible rather than silent.
func (t *Translator) Get(key string, args ...any) string {
	msg, ok := t.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

var english = map[string]string{
	"reset.title":             "Machine identity reset",
	"reset.checking":          "Checking installation files",
	"reset.backup_created":    "Backup created: %s",
	"reset.generating":        "Generating new identity values",
	"reset.saving_json":       "Updating storage.json",
	"reset.updating_sqlite":   "Updating state database",
	"reset.updating_pair":     "Updating key: %s",
	"reset.system_ids":        "Updating system-level identifiers",
	"reset.patching":          "Patching %s",
	"reset.rule_hits":         "Rule %q matched %d time(s)",
	"reset.rules_missed":      "No patch rule matched in %s; file is already patched or its format changed",
	"reset.version_found":     "Installed version: %s",
	"reset.version_gated":     "Version %s is below %s; machine-id patch skipped",
	"reset.new_ids":           "New identity values",
	"reset.success":           "Machine identity reset complete",
	"reset.app_running":       "The application appears to be running (its data directory changed during the check); close it and run again for a reliable reset",
	"restore.title":           "Machine identity restore",
	"restore.no_backups":      "No backups found for %s",
	"restore.available":       "Available backups",
	"restore.missing_id":      "Backup has no value for %s; it will not be written",
	"restore.ids_to_restore":  "Identity values to restore",
	"restore.pre_backup":      "Current file backed up to: %s",
	"restore.storage_updated": "storage.json updated",
	"restore.sqlite_updated":  "State database updated",
	"restore.success":         "Machine identity restore complete",
	"sysid.unsupported":       "System-level identifiers are not maintained on %s; nothing to update",
	"sysid.registry_updated":  "Windows registry identifiers updated",
	"sysid.plist_updated":     "macOS platform UUID updated",
	"sysid.permission":        "Could not update %s (needs elevation): %v",
	"status.title":            "Current machine identity",
	"status.mismatch":         "storage.json and the state database disagree on %s",
	"bypass.version_title":    "Version floor bypass",
	"bypass.version_already":  "Installed version %s already satisfies %s; product.json left unchanged",
	"bypass.version_updated":  "product.json version set to %s (was %s)",
	"bypass.token_title":      "Token limit bypass",
}
