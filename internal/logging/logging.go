// Package logging is the process-wide logger.
//
// Output always goes to stderr by default: when serving over stdio, stdout
// carries the MCP protocol and must not see a single stray byte.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

var (
	disabled atomic.Bool
	level    = new(slog.LevelVar)
	current  atomic.Pointer[slog.Logger]
)

func init() {
	Setup(os.Stderr, slog.LevelInfo, false)
}

// Setup replaces the process logger. When w is a terminal the output is
// colourised; noColor forces plain output.
func Setup(w io.Writer, lvl slog.Level, noColor bool) {
	level.Set(lvl)
	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor || !isTerminal(w),
	})
	current.Store(slog.New(h))
}

// SetLevel changes the minimum level without rebuilding the handler.
func SetLevel(lvl slog.Level) {
	level.Set(lvl)
}

// L returns the underlying structured logger.
func L() *slog.Logger {
	return current.Load()
}

// With returns a structured logger carrying a component attribute.
func With(component string) *slog.Logger {
	return L().With("component", component)
}

// Disable turns off all logging
func Disable() {
	disabled.Store(true)
}

// Enable turns logging back on
func Enable() {
	disabled.Store(false)
}

func logf(lvl slog.Level, format string, v ...any) {
	if disabled.Load() {
		return
	}
	L().Log(context.Background(), lvl, fmt.Sprintf(format, v...))
}

// Infof logs a formatted info message
func Infof(format string, v ...any) { logf(slog.LevelInfo, format, v...) }

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) { logf(slog.LevelWarn, format, v...) }

// Errorf logs a formatted error message
func Errorf(format string, v ...any) { logf(slog.LevelError, format, v...) }

// Debugf logs a formatted debug message
func Debugf(format string, v ...any) { logf(slog.LevelDebug, format, v...) }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
