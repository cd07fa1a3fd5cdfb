//go:build darwin

package startup

import (
	"os"
	"path/filepath"
)

// plistPath is the per-user LaunchAgent; no admin rights needed.
func plistPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents", agentLabel+".plist")
}

// IsRegistered reports whether the LaunchAgent exists.
func IsRegistered() bool {
	return entryExists(plistPath())
}

// Register installs a LaunchAgent starting the companion at login.
func Register() error {
	exePath, err := executablePath()
	if err != nil {
		return err
	}
	return writeEntry(plistPath(), launchAgentPlist(exePath))
}

// Unregister removes the LaunchAgent.
func Unregister() error {
	return removeEntry(plistPath())
}
