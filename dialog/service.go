// Package dialog shows native message dialogs by running the platform's
// dialog program: zenity on Linux and the BSDs, osascript on macOS and a
// VBScript MsgBox through cscript on Windows.
package dialog

import (
	"runtime"
	"strings"

	"github.com/spf13/afero"

	"github.com/harshvasudeva/dialog-companion/logger"
)

// Request describes one dialog.
type Request struct {
	Kind    Kind
	Message string
	Title   string
}

// Validate rejects requests whose message is empty after trimming.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrInvalidInput
	}
	return nil
}

// Continuation receives the result of ShowAsync exactly once.
type Continuation func(Outcome, error)

// Options configures a Service. Zero values select the defaults.
type Options struct {
	GOOS         string   // defaults to runtime.GOOS
	Runner       Runner   // defaults to ExecRunner
	Script       ScriptSource
	TempFs       afero.Fs // defaults to the OS filesystem
	TempDir      string
	Wrap         Wrap
	DefaultTitle string
}

// Service shows dialogs. It holds no per-request state and is safe for
// concurrent use; each call runs its own process.
type Service struct {
	platform Platform
	builder  Builder
	stager   *Stager
	runner   Runner
	title    string
}

// New returns a Service for opts.
func New(opts Options) *Service {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	script := opts.Script
	if script.Fs == nil {
		script = EmbeddedScript()
	}
	tempFs := opts.TempFs
	if tempFs == nil {
		tempFs = afero.NewOsFs()
	}
	title := strings.TrimSpace(opts.DefaultTitle)
	if title == "" {
		title = DefaultTitle
	}

	return &Service{
		platform: PlatformFor(goos),
		builder:  Builder{Wrap: opts.Wrap},
		stager:   &Stager{Source: script, TempFs: tempFs, TempDir: opts.TempDir},
		runner:   runner,
		title:    title,
	}
}

// Platform returns the platform the Service builds commands for.
func (s *Service) Platform() Platform {
	return s.platform
}

// Error shows an error dialog. An empty title selects the default.
func (s *Service) Error(message, title string) (Outcome, error) {
	return s.Show(Request{Kind: KindError, Message: message, Title: title})
}

// Info shows an information dialog.
func (s *Service) Info(message, title string) (Outcome, error) {
	return s.Show(Request{Kind: KindInfo, Message: message, Title: title})
}

// Warning shows a warning dialog.
func (s *Service) Warning(message, title string) (Outcome, error) {
	return s.Show(Request{Kind: KindWarning, Message: message, Title: title})
}

// Show displays req and blocks until the dialog is closed. There is no
// timeout: an unanswered dialog blocks its caller.
func (s *Service) Show(req Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		logger.Error("dialog: %v", err)
		return Outcome{}, err
	}
	return s.show(s.withDefaults(req))
}

// ShowAsync validates req, then shows it on its own goroutine and passes
// the result to done. Invalid input is returned directly and done is never
// called for it.
func (s *Service) ShowAsync(req Request, done Continuation) error {
	if err := req.Validate(); err != nil {
		logger.Error("dialog: %v", err)
		return err
	}
	req = s.withDefaults(req)
	go func() {
		out, err := s.show(req)
		if done != nil {
			done(out, err)
		}
	}()
	return nil
}

func (s *Service) withDefaults(req Request) Request {
	if req.Title == "" {
		req.Title = s.title
	}
	return req
}

func (s *Service) show(req Request) (Outcome, error) {
	var scriptPath string
	if s.platform == PlatformWindows {
		script, err := s.stager.Acquire()
		if err != nil {
			return Outcome{}, err
		}
		// Runs before the caller sees the outcome.
		defer script.Release()
		scriptPath = script.Path
	}

	cmd, err := s.builder.Build(s.platform, req, scriptPath)
	if err != nil {
		logger.Warn("dialog: %v (%s)", err, s.platform)
		return Outcome{}, err
	}

	logger.Debug("dialog: %s %s dialog %q", cmd.Program(), req.Kind, req.Title)
	out, err := s.runner.Run(cmd)
	if err != nil {
		logger.Error("dialog: %v", err)
		return Outcome{}, err
	}
	out.Platform = s.platform
	return out, nil
}
