//go:build !windows && !darwin && !linux && !freebsd && !openbsd && !netbsd && !dragonfly

package startup

func IsRegistered() bool { return false }

func Register() error { return ErrUnsupported }

func Unregister() error { return nil }
