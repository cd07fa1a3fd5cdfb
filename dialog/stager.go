package dialog

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/harshvasudeva/dialog-companion/logger"
)

// ScriptSource locates the canonical MsgBox helper script.
type ScriptSource struct {
	Fs   afero.Fs
	Path string
}

// EmbeddedScript is the helper compiled into the binary. cscript cannot
// read it in place, so it is always staged.
func EmbeddedScript() ScriptSource {
	return ScriptSource{Fs: afero.FromIOFS{FS: assets}, Path: scriptName}
}

// FileScript is a helper installed on disk at path.
func FileScript(path string) ScriptSource {
	return ScriptSource{Fs: afero.NewOsFs(), Path: path}
}

// Stager hands out a path to the helper script that cscript can open,
// copying it to a temporary directory when the canonical copy is not a
// real file.
type Stager struct {
	Source ScriptSource
	TempFs afero.Fs
	// TempDir is the parent of staging directories; "" means os.TempDir().
	TempDir string
}

// Script is a helper path valid until Release.
type Script struct {
	Path   string
	Staged bool

	fs  afero.Fs
	dir string
}

// Acquire resolves the helper script, staging a copy if needed.
func (s *Stager) Acquire() (*Script, error) {
	info, err := s.Source.Fs.Stat(s.Source.Path)
	if err != nil {
		logger.Error("dialog: helper script %s: %v", s.Source.Path, err)
		return nil, &ResourceError{Op: "stat", Path: s.Source.Path, Err: err}
	}
	if fileIdentity(s.Source.Path, info) != 0 {
		return &Script{Path: s.Source.Path}, nil
	}
	return s.stage()
}

func (s *Stager) stage() (*Script, error) {
	dir, err := afero.TempDir(s.TempFs, s.TempDir, "dialog-")
	if err != nil {
		logger.Error("dialog: create staging dir: %v", err)
		return nil, &ResourceError{Op: "mkdtemp", Path: s.TempDir, Err: err}
	}
	script := &Script{
		Path:   filepath.Join(dir, filepath.Base(s.Source.Path)),
		Staged: true,
		fs:     s.TempFs,
		dir:    dir,
	}

	data, err := afero.ReadFile(s.Source.Fs, s.Source.Path)
	if err != nil {
		logger.Error("dialog: read helper script: %v", err)
		script.Release()
		return nil, &ResourceError{Op: "read", Path: s.Source.Path, Err: err}
	}
	if err := afero.WriteFile(s.TempFs, script.Path, data, 0o600); err != nil {
		logger.Error("dialog: stage helper script: %v", err)
		script.Release()
		return nil, &ResourceError{Op: "write", Path: script.Path, Err: err}
	}

	logger.Debug("dialog: staged helper script at %s", script.Path)
	return script, nil
}

// Release removes a staged copy, file first and then its directory.
// Failures are logged: by now the dialog has been shown.
func (s *Script) Release() {
	if s == nil || !s.Staged {
		return
	}
	if err := s.fs.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		logger.Warn("dialog: remove staged script: %v", err)
	}
	if err := s.fs.Remove(s.dir); err != nil {
		logger.Warn("dialog: remove staging dir: %v", err)
	}
}
