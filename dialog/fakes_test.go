package dialog

import (
	"errors"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// recordingRunner records every command and returns a canned result.
type recordingRunner struct {
	mu      sync.Mutex
	calls   []Command
	outcome Outcome
	err     error
	onRun   func(Command)
}

func (r *recordingRunner) Run(cmd Command) (Outcome, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	onRun := r.onRun
	r.mu.Unlock()
	if onRun != nil {
		onRun(cmd)
	}
	return r.outcome, r.err
}

func (r *recordingRunner) Calls() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.calls...)
}

// noRemoveFs refuses every removal.
type noRemoveFs struct {
	afero.Fs
}

func (noRemoveFs) Remove(string) error {
	return errors.New("remove denied")
}

// noMkdirFs refuses to create directories.
type noMkdirFs struct {
	afero.Fs
}

func (noMkdirFs) Mkdir(string, os.FileMode) error {
	return errors.New("mkdir denied")
}

// noCreateFs refuses to create files.
type noCreateFs struct {
	afero.Fs
}

func (f noCreateFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 {
		return nil, errors.New("create denied")
	}
	return f.Fs.OpenFile(name, flag, perm)
}
