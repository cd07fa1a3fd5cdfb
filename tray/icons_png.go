//go:build !windows

package tray

import _ "embed"

//go:embed icons/idle.png
var iconIdle []byte

//go:embed icons/busy.png
var iconBusy []byte
