//go:build windows

package tray

import _ "embed"

//go:embed icons/idle.ico
var iconIdle []byte

//go:embed icons/busy.ico
var iconBusy []byte

func autoStartLabel() string {
	return "Start with Windows"
}
