// Package sysid writes identity values into the OS-native identity
// stores: the Windows registry and the macOS platform UUID plist. Linux
// has no equivalent store and is a deliberate no-op. Everything here is
// best-effort; a permission failure is reported, never fatal.
package sysid

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"

	"github.com/halcyon-systems/idshift/internal/identity"
)

// platformUUIDPlist is root-owned; writes go through a privileged plutil
// invocation rather than direct file I/O.
const platformUUIDPlist = "/var/root/Library/Preferences/SystemConfiguration/com.apple.platform.uuid.plist"

// Values are the OS-level identifiers to write. Empty fields are skipped.
type Values struct {
	// MachineGUID goes to HKLM\SOFTWARE\Microsoft\Cryptography\MachineGuid.
	MachineGUID string
	// SQMMachineID goes to HKLM\SOFTWARE\Microsoft\SQMClient\MachineId.
	SQMMachineID string
	// PlatformUUID goes to the UUID field of the macOS platform plist.
	PlatformUUID string
}

// Fresh returns values for a reset: the registry identifiers get brand
// new GUIDs rather than any value from the set, the platform UUID tracks
// the set's macMachineId.
func Fresh(set identity.Set) Values {
	return Values{
		MachineGUID:  uuid.NewString(),
		SQMMachineID: "{" + strings.ToUpper(uuid.NewString()) + "}",
		PlatformUUID: set.MacMachineID,
	}
}

// FromSet returns values for a restore, taken directly from the set.
func FromSet(set identity.Set) Values {
	return Values{
		MachineGUID:  set.DevDeviceID,
		SQMMachineID: set.SqmID,
		PlatformUUID: set.MacMachineID,
	}
}

// Result lists what was written and what was skipped or refused.
type Result struct {
	Updated  []string
	Warnings []string
}

// Apply writes v into the stores of the named platform. It never returns
// an error: failures become warnings because the rest of the identity set
// is already rotated and a registry refusal must not undo that.
func Apply(osName string, v Values) Result {
	switch osName {
	case "windows":
		return applyWindows(v)
	case "darwin":
		return applyDarwin(v)
	}
	return Result{Warnings: []string{fmt.Sprintf("no system identity store on %s", osName)}}
}

// applyDarwin rewrites the UUID field of the platform plist. A missing
// plist means the machine never materialized one; nothing to update.
func applyDarwin(v Values) Result {
	var res Result
	if v.PlatformUUID == "" {
		res.Warnings = append(res.Warnings, "no platform UUID value to write")
		return res
	}

	if _, err := os.Stat(platformUUIDPlist); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("platform UUID plist not present: %s", platformUUIDPlist))
		return res
	}

	cmd := exec.Command("sudo", "plutil", "-replace", "UUID", "-string", v.PlatformUUID, platformUUIDPlist)
	if out, err := cmd.CombinedOutput(); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("plutil failed (needs elevation?): %v: %s", err, strings.TrimSpace(string(out))))
		return res
	}
	res.Updated = append(res.Updated, "macOS platform UUID")
	return res
}
