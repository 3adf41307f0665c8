package app

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances. A non-empty
// file sends output to a rotated log file instead of outW.
func newLogger(levelStr, formatStr, file string, outW io.Writer) (*slog.Logger, io.Closer) {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var closer io.Closer = nopCloser{}
	if file != "" {
		lj := &lumberjack.Logger{Filename: file, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		outW, closer = lj, lj
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
