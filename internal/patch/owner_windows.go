//go:build windows

package patch

import "os"

// restoreOwner is a no-op on Windows; ownership does not survive the
// replace and the platform does not expect it to.
func restoreOwner(path string, original os.FileInfo) error {
	return nil
}
