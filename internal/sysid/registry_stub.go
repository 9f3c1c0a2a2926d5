//go:build !windows

package sysid

// applyWindows on a non-Windows build can only be reached by asking for
// the "windows" platform explicitly; the registry is not addressable.
func applyWindows(v Values) Result {
	return Result{Warnings: []string{"registry updates require a Windows build"}}
}
