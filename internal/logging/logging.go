// Package logging wraps zerolog behind a process-wide diagnostics logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
)

// Init opens the diagnostics log in dir and wires the package logger to
// it. Safe to skip; the helpers become no-ops when Init never ran.
func Init(dir string) error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, "sttmgr.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	diagFile = f

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", os.Getpid()).Logger()
	logReady = true
	return nil
}

// InitConsole wires the package logger to stderr, used by the daemon.
func InitConsole() {
	logMu.Lock()
	defer logMu.Unlock()

	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Logger()
	logReady = true
}

// Close flushes and detaches the log file.
func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

// DefaultDir returns the log directory next to the settings file.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		xdg = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(xdg, "sttmgr", "logs")
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

// RemoteFailure records a settings persist call that errored. The
// operation keeps its optimistic local value; this log line is the only
// trace of the failed write.
func RemoteFailure(op, providerID string, err error) {
	if !logReady {
		return
	}
	diagLog.Error().
		Str("op", op).
		Str("provider", providerID).
		Err(err).
		Msg("settings persist failed")
}
