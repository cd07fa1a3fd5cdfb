//go:build unix

package dialog

import (
	"io/fs"
	"syscall"
)

// fileIdentity returns the inode backing info, or 0 when info does not
// come from the operating system (embedded or in-memory files).
func fileIdentity(_ string, info fs.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(st.Ino)
}
