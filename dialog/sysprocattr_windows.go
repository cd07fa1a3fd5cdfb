//go:build windows

package dialog

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// cscript is a console program; keep it from flashing a console window.
var sysProcAttr = &syscall.SysProcAttr{HideWindow: true, CreationFlags: windows.CREATE_NO_WINDOW}
