package dialog

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerMissingProgram(t *testing.T) {
	out, err := ExecRunner{}.Run(Command{"dialog-companion-no-such-program", "--info"})

	var le *LaunchError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "dialog-companion-no-such-program", le.Program)
	assert.Equal(t, Outcome{}, out)
}

func TestExecRunnerEmptyCommand(t *testing.T) {
	_, err := ExecRunner{}.Run(nil)
	var le *LaunchError
	assert.ErrorAs(t, err, &le)
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	out, err := ExecRunner{}.Run(Command{"sh", "-c", "echo out; echo err >&2; exit 3"})
	require.NoError(t, err, "a non-zero exit is not an error")
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "out\n", out.Stdout)
	assert.Equal(t, "err\n", out.Stderr)
}

func TestExecRunnerZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	out, err := ExecRunner{}.Run(Command{"sh", "-c", "printf ok"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, "ok", out.Stdout)
}
