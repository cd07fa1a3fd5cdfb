package dialog

import (
	"bytes"
	"errors"
	"os/exec"

	"github.com/harshvasudeva/dialog-companion/logger"
)

var errEmptyCommand = errors.New("empty command")

// Runner starts a Command and waits for it to exit.
type Runner interface {
	Run(cmd Command) (Outcome, error)
}

// ExecRunner runs commands on the local host.
type ExecRunner struct{}

// Run blocks until the program exits. Failing to start it yields a
// *LaunchError; any exit status, zero or not, yields an Outcome.
func (ExecRunner) Run(cmd Command) (Outcome, error) {
	if len(cmd) == 0 {
		return Outcome{}, &LaunchError{Err: errEmptyCommand}
	}

	c := exec.Command(cmd.Program(), cmd.Args()...)
	c.SysProcAttr = sysProcAttr
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Start(); err != nil {
		return Outcome{}, &LaunchError{Program: cmd.Program(), Err: err}
	}

	err := c.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// The process ran; only output collection failed.
		logger.Warn("dialog: %s: %v", cmd.Program(), err)
	}

	return Outcome{
		ExitCode: c.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
