//go:build !windows

package dialog

import "syscall"

var sysProcAttr *syscall.SysProcAttr
