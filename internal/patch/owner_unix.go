//go:build !windows

package patch

import (
	"os"
	"syscall"
)

// restoreOwner puts the original owner/group back on the replaced file.
// Failing with EPERM is tolerated: an unprivileged run cannot chown, and
// in that case the file already belongs to the invoking user.
func restoreOwner(path string, original os.FileInfo) error {
	st, ok := original.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	if err := os.Chown(path, int(st.Uid), int(st.Gid)); err != nil {
		if os.IsPermission(err) {
			return nil
		}
		return err
	}
	return nil
}
