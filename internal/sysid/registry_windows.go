//go:build windows

package sysid

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// applyWindows overwrites the two machine identifiers kept in the
// registry. Both live under HKLM and need an elevated process; a denied
// write is reported per value so one refusal does not hide the other.
func applyWindows(v Values) Result {
	var res Result

	if v.MachineGUID != "" {
		if err := setStringValue(`SOFTWARE\Microsoft\Cryptography`, "MachineGuid", v.MachineGUID, false); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("MachineGuid not updated (run elevated?): %v", err))
		} else {
			res.Updated = append(res.Updated, "Cryptography\\MachineGuid")
		}
	}

	if v.SQMMachineID != "" {
		if err := setStringValue(`SOFTWARE\Microsoft\SQMClient`, "MachineId", v.SQMMachineID, true); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("SQMClient MachineId not updated (run elevated?): %v", err))
		} else {
			res.Updated = append(res.Updated, "SQMClient\\MachineId")
		}
	}

	return res
}

// setStringValue writes one REG_SZ value under HKLM, optionally creating
// the key when it does not exist (SQMClient is absent on some installs).
func setStringValue(path, name, value string, createKey bool) error {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.SET_VALUE|registry.WOW64_64KEY)
	if err != nil {
		if !createKey {
			return err
		}
		key, _, err = registry.CreateKey(registry.LOCAL_MACHINE, path, registry.SET_VALUE|registry.WOW64_64KEY)
		if err != nil {
			return err
		}
	}
	defer key.Close()

	return key.SetStringValue(name, value)
}
