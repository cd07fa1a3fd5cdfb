package dialog

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned synchronously for an empty or blank message.
	ErrInvalidInput = errors.New("dialog: empty or blank message")

	// ErrUnsupportedPlatform is returned when the host has no dialog program.
	ErrUnsupportedPlatform = errors.New("dialog: unsupported platform")
)

// ResourceError reports a failure to stat, read or stage the MsgBox helper
// script. No process is started when it is returned.
type ResourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("dialog: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// LaunchError reports that the dialog program could not be started.
type LaunchError struct {
	Program string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("dialog: launch %s: %v", e.Program, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
