//go:build windows

package dialog

import (
	"io/fs"

	"golang.org/x/sys/windows"
)

// fileIdentity returns the NTFS file index of path, or 0 when info does not
// come from the operating system (embedded or in-memory files).
func fileIdentity(path string, info fs.FileInfo) uint64 {
	if info.Sys() == nil {
		return 0
	}
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0
	}
	h, err := windows.CreateFile(
		name,
		0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return 0
	}
	defer windows.CloseHandle(h)

	var d windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &d); err != nil {
		return 0
	}
	return uint64(d.FileIndexHigh)<<32 | uint64(d.FileIndexLow)
}
