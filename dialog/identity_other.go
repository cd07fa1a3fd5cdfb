//go:build !unix && !windows

package dialog

import "io/fs"

func fileIdentity(_ string, _ fs.FileInfo) uint64 {
	return 0
}
