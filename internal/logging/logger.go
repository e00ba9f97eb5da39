// Package logging provides unified logging infrastructure for appcheck-gen
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

var (
	level = new(slog.LevelVar)

	mu            sync.Mutex
	defaultLogger = newLogger(os.Stderr, false)
)

// Initialize points logging at w. Colors are used only when w is a terminal.
func Initialize(w io.Writer, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	if debug {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
	defaultLogger = newLogger(w, isTerminal(w))
}

// SetDebug toggles debug output
func SetDebug(debug bool) {
	if debug {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelInfo)
}

// Logger returns the structured logger behind the package-level helpers.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

func newLogger(w io.Writer, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    !color,
	}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Printf logs a formatted message
func Printf(format string, v ...interface{}) {
	Logger().Info(fmt.Sprintf(format, v...))
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	Logger().Error(fmt.Sprintf(format, v...))
}

// Warning logs a warning message
func Warning(format string, v ...interface{}) {
	Logger().Warn(fmt.Sprintf(format, v...))
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	Logger().Info(fmt.Sprintf(format, v...))
}

// Debug logs a debug message (only with --verbose or DEBUG=true)
func Debug(format string, v ...interface{}) {
	Logger().Debug(fmt.Sprintf(format, v...))
}
