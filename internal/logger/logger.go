package logger

import (
	"io"
	"log/slog"
	"os"
)

// Init installs a text logger on stdout as the slog default.
func Init(debug bool) *slog.Logger {
	return InitTo(os.Stdout, debug)
}

// InitTo is Init with an explicit writer.
func InitTo(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	l := slog.New(slog.NewTextHandler(w, opts)).With("service", "newsbrief")
	slog.SetDefault(l)
	return l
}
