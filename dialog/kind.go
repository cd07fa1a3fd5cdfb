package dialog

import "runtime"

// Kind selects the dialog icon and, for zenity, the dialog type.
type Kind string

const (
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// Platform is the OS family a Command is built for.
type Platform int

const (
	PlatformOther Platform = iota
	PlatformLinux
	PlatformMacOS
	PlatformWindows
)

func (p Platform) String() string {
	switch p {
	case PlatformLinux:
		return "linux"
	case PlatformMacOS:
		return "macos"
	case PlatformWindows:
		return "windows"
	default:
		return "other"
	}
}

// PlatformFor maps a GOOS value to its Platform. The BSDs ship zenity
// through their desktop packages and are treated like Linux.
func PlatformFor(goos string) Platform {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return PlatformLinux
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	default:
		return PlatformOther
	}
}

// CurrentPlatform returns the Platform of the running binary.
func CurrentPlatform() Platform {
	return PlatformFor(runtime.GOOS)
}
