//go:build windows

package startup

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const (
	registryKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`
	valueName   = "DialogCompanion"
)

// IsRegistered checks if the auto-start registry value exists.
func IsRegistered() bool {
	k, err := registry.OpenKey(registry.CURRENT_USER, registryKey, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()
	_, _, err = k.GetStringValue(valueName)
	return err == nil
}

// Register adds HKCU\...\Run\DialogCompanion pointing to the current exe.
func Register() error {
	exePath, err := executablePath()
	if err != nil {
		return err
	}

	k, err := registry.OpenKey(registry.CURRENT_USER, registryKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open registry key: %w", err)
	}
	defer k.Close()

	// Quote the path to handle spaces
	return k.SetStringValue(valueName, fmt.Sprintf(`"%s"`, exePath))
}

// Unregister removes the auto-start registry value.
func Unregister() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, registryKey, registry.SET_VALUE)
	if err != nil {
		// Key doesn't exist = already unregistered
		return nil
	}
	defer k.Close()
	err = k.DeleteValue(valueName)
	if err == registry.ErrNotExist {
		return nil
	}
	return err
}
