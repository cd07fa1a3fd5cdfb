//go:build !windows && !darwin

package tray

import "os"

func autoStartLabel() string {
	if os.Getenv("XDG_CURRENT_DESKTOP") != "" {
		return "Start with desktop session"
	}
	return "Start on login"
}
