// Package observability provides logging initialization.
package observability

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewLogger builds the process logger. When stderr is a terminal it uses a
// human-readable text format; otherwise it emits JSON for log collectors.
func NewLogger(level slog.Level, debug bool) *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level, debug)
}

func newLogger(w io.Writer, text bool, level slog.Level, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: debug,
		Level:     level,
	}
	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}
