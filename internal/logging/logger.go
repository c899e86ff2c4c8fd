// Package logging provides structured logging for dashprep. Records go to
// stderr until Init points them at the run log file, so terminal output
// stays reserved for the reporter.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level aliases for slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
)

var global = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Init directs the package-level functions at w, dropping records below
// level. Called once during CLI startup, before any pipeline goroutines.
func Init(level slog.Level, w io.Writer) {
	global = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	global.Debug(msg, args...)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	global.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	global.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	global.Error(msg, args...)
}
