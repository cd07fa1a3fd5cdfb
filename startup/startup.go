// Package startup registers the companion to launch at login.
package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrUnsupported is returned on platforms without a login-item mechanism.
var ErrUnsupported = errors.New("auto-start is not supported on this platform")

// fs backs the file-based registrations (LaunchAgent plist, XDG desktop
// entry). Tests swap in a MemMapFs.
var fs afero.Fs = afero.NewOsFs()

// executable resolves the binary registered for auto-start.
var executable = os.Executable

func executablePath() (string, error) {
	exePath, err := executable()
	if err != nil {
		return "", fmt.Errorf("get executable path: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	return exePath, nil
}

// writeEntry writes a login entry file, creating its parent directory.
func writeEntry(path, content string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, []byte(content), 0644)
}

// removeEntry deletes a login entry file; a missing file is not an error.
func removeEntry(path string) error {
	err := fs.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func entryExists(path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// SyncWithConfig makes the login registration match autoStart.
// Called on startup to reconcile any out-of-sync state.
func SyncWithConfig(autoStart bool) error {
	registered := IsRegistered()
	switch {
	case autoStart && !registered:
		return Register()
	case !autoStart && registered:
		return Unregister()
	}
	return nil
}
