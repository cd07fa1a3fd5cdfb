package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	maxLogSize = 10 * 1024 * 1024 // 10 MB

	// FileName is the log file created inside the data folder.
	FileName = "dialog-companion.log"

	// EnvLogLevel overrides the configured level at Init.
	EnvLogLevel = "DIALOG_COMPANION_LOG_LEVEL"
)

var (
	mu      sync.Mutex
	logFile *os.File
	logPath string
	level   = zerolog.InfoLevel
	std     = newLogger(console(os.Stderr))
)

func console(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// Init opens (or creates) dataFolder/dialog-companion.log. Entries are
// written as JSON lines to the file and pretty-printed to stdout.
func Init(dataFolder string, lvl string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(dataFolder, 0755); err != nil {
		return err
	}

	path := filepath.Join(dataFolder, FileName)

	// Rotate if too large
	if info, err := os.Stat(path); err == nil && info.Size() >= maxLogSize {
		bak := path + ".bak"
		_ = os.Remove(bak)
		_ = os.Rename(path, bak)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	logPath = path

	std = newLogger(zerolog.MultiLevelWriter(f, console(os.Stdout)))

	if env := os.Getenv(EnvLogLevel); env != "" {
		lvl = env
	}
	level = ParseLevel(lvl)
	return nil
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(lvl string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetLevel changes the log level at runtime.
func SetLevel(lvl string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(lvl)
}

// Level returns the active level name.
func Level() string {
	mu.Lock()
	defer mu.Unlock()
	return level.String()
}

// LogPath returns the current log file path.
func LogPath() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Close closes the log file and sends later entries to stderr.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	std = newLogger(console(os.Stderr))
}

func output(lvl zerolog.Level, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if lvl < level {
		return
	}
	std.WithLevel(lvl).Msgf(format, args...)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	output(zerolog.DebugLevel, format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	output(zerolog.InfoLevel, format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	output(zerolog.WarnLevel, format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	output(zerolog.ErrorLevel, format, args...)
}
