//go:build darwin

package tray

func autoStartLabel() string {
	return "Start with macOS"
}
