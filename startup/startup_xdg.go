//go:build linux || freebsd || openbsd || netbsd || dragonfly

package startup

import (
	"os"
	"path/filepath"
)

// autostartDir follows the XDG autostart layout: $XDG_CONFIG_HOME/autostart,
// falling back to ~/.config/autostart.
func autostartDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "autostart")
}

func desktopPath() string {
	return filepath.Join(autostartDir(), desktopName)
}

// IsRegistered reports whether the autostart entry exists.
func IsRegistered() bool {
	return entryExists(desktopPath())
}

// Register writes the autostart entry for the current executable.
func Register() error {
	exePath, err := executablePath()
	if err != nil {
		return err
	}
	return writeEntry(desktopPath(), desktopEntry(exePath))
}

// Unregister removes the autostart entry.
func Unregister() error {
	return removeEntry(desktopPath())
}
